package recipe

import (
	"encoding/json"
	"strings"
)

// Recipe is the canonical view model every view renders. Values are replaced,
// never mutated in place.
type Recipe struct {
	ID              string
	Title           string
	AuthorName      string
	AuthorEmail     string
	Description     string
	IngredientMd    string
	ProcessMd       string
	PhotoRef        string   // raw backend reference (filename, path or URL)
	PhotoURL        string   // displayable URL after resolution; empty means no photo
	PrepTimeMinutes int      // 0 means absent
	Tags            []string // nil means absent; empty means present but empty
}

// User identifies the signed-in author.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HasPhoto reports whether the recipe has a resolved, displayable photo.
func (r Recipe) HasPhoto() bool {
	return r.PhotoURL != ""
}

// WithPhotoURL returns a copy of r carrying the resolved photo URL.
func (r Recipe) WithPhotoURL(url string) Recipe {
	r.PhotoURL = url
	return r
}

// OwnedBy reports whether u authored r. The author email decides when the
// backend supplied one; otherwise the author name is compared.
func (r Recipe) OwnedBy(u *User) bool {
	if u == nil {
		return false
	}
	if r.AuthorEmail != "" {
		return strings.EqualFold(r.AuthorEmail, u.Email)
	}
	return r.AuthorName != "" && r.AuthorName == u.Name
}

// Backend returns the wire form of r using the canonical field names.
// Normalize(r.Backend()) reproduces r (minus PhotoURL, which is not a wire field).
func (r Recipe) Backend() Backend {
	b := Backend{}
	set := func(key string, v any) {
		raw, err := json.Marshal(v)
		if err == nil {
			b[key] = raw
		}
	}
	if r.ID != "" {
		set("id", r.ID)
	}
	set("title", r.Title)
	set("authorName", r.AuthorName)
	if r.AuthorEmail != "" {
		set("authorEmail", r.AuthorEmail)
	}
	if r.Description != "" {
		set("description", r.Description)
	}
	if r.IngredientMd != "" {
		set("ingredientMd", r.IngredientMd)
	}
	if r.ProcessMd != "" {
		set("processMd", r.ProcessMd)
	}
	if r.PhotoRef != "" {
		set("photoUrl", r.PhotoRef)
	}
	if r.PrepTimeMinutes > 0 {
		set("prepTimeMinutes", r.PrepTimeMinutes)
	}
	if r.Tags != nil {
		set("tags", r.Tags)
	}
	return b
}

// TagLabel renders a tag constant for display ("MAIN_COURSE" -> "MAIN COURSE").
func TagLabel(tag string) string {
	return strings.ReplaceAll(tag, "_", " ")
}

// Filter returns the recipes whose title, tags or author name contain term,
// case-insensitively. An empty term returns recipes unchanged.
func Filter(recipes []Recipe, term string) []Recipe {
	q := strings.ToLower(strings.TrimSpace(term))
	if q == "" {
		return recipes
	}
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r Recipe, q string) bool {
	if strings.Contains(strings.ToLower(r.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(r.AuthorName), q) {
		return true
	}
	for _, t := range r.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// Without returns recipes minus the one with the given id.
func Without(recipes []Recipe, id string) []Recipe {
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}
