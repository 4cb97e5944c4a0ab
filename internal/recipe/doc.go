// Package recipe defines galley's canonical recipe view model and the
// normalizer that produces it from backend payloads.
//
// # Schema drift
//
// The backend has renamed fields over time and different deployments answer
// with different shapes. Normalize is the only place that knows about this:
//
//   - author: authorName, then author, then "Unknown"
//   - prep time: prepTimeMinutes, then preparationTime, then prepTime; the
//     first defined alias wins and non-positive values mean absent
//   - tags: an array of values, or one comma-joined string
//   - photo: photoUrl, then photo
//   - ingredients/instructions arrays from older deployments become markdown
//     lists when ingredientMd/processMd are missing
//
// DecodeList likewise hides the difference between a bare array response and a
// paginated {"content": [...]} envelope.
//
// No other package branches on wire shapes. Views consume Recipe only.
//
// # Photos
//
// Normalize stores the raw photo reference in PhotoRef and leaves PhotoURL
// empty. Turning a reference into something displayable may need a network
// fetch, which belongs to package photo and is cancelled with the owning view.
package recipe
