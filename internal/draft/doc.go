// Package draft models the recipe form.
//
// The photo has two input modes, upload and URL, plus a deletion flag and a
// one-shot preview fetch for a photo already stored on the backend. Submit
// collapses all of that into exactly one recipe.PhotoIntent. Preview URLs are
// minted in a photo.Objects registry and released when superseded or when the
// draft is closed.
package draft
