package draft

import (
	"errors"
	"strconv"
	"strings"

	"github.com/five82/galley/internal/photo"
	"github.com/five82/galley/internal/recipe"
)

// Mode selects how the photo is supplied.
type Mode int

const (
	ModeUpload Mode = iota
	ModeURL
)

func (m Mode) String() string {
	if m == ModeURL {
		return "url"
	}
	return "upload"
}

// Validation errors returned by Submit.
var (
	ErrTitleRequired = errors.New("title is required")
	ErrPrepTime      = errors.New("prep time must be a whole number of minutes")
)

// AvailableTags is the fixed tag vocabulary offered by the form.
var AvailableTags = []string{
	"VEGETARIAN",
	"VEGAN",
	"GLUTEN_FREE",
	"DAIRY_FREE",
	"NUT_FREE",
	"QUICK",
	"DESSERT",
	"MAIN_COURSE",
	"APPETIZER",
	"BREAKFAST",
	"LUNCH",
	"DINNER",
}

type hydration int

const (
	hydrationIdle hydration = iota
	hydrationPending
	hydrationDone
)

// Draft is the mutable state behind the recipe form. Text fields are plain
// exported strings; the photo is only changed through the methods so that the
// four submit outcomes stay mutually exclusive.
type Draft struct {
	Title        string
	Description  string
	IngredientMd string
	ProcessMd    string
	PrepTime     string

	tags []string

	objects       *photo.Objects
	originalPhoto string
	mode          Mode
	file          *File
	urlInput      string
	preview       string
	cleared       bool
	hydration     hydration
}

// New starts a draft. orig is nil when creating a recipe.
func New(orig *recipe.Recipe, objects *photo.Objects) *Draft {
	d := &Draft{objects: objects, hydration: hydrationDone}
	if orig == nil {
		return d
	}
	d.Title = orig.Title
	d.Description = orig.Description
	d.IngredientMd = orig.IngredientMd
	d.ProcessMd = orig.ProcessMd
	if orig.PrepTimeMinutes > 0 {
		d.PrepTime = strconv.Itoa(orig.PrepTimeMinutes)
	}
	d.tags = append([]string(nil), orig.Tags...)
	d.originalPhoto = strings.TrimSpace(orig.PhotoRef)

	switch {
	case d.originalPhoto == "":
	case photo.IsExternalURL(d.originalPhoto):
		d.mode = ModeURL
		d.urlInput = d.originalPhoto
	default:
		d.hydration = hydrationIdle
	}
	return d
}

// Mode returns the active photo mode.
func (d *Draft) Mode() Mode { return d.mode }

// URL returns the external URL input.
func (d *Draft) URL() string { return d.urlInput }

// File returns the selected file, if any.
func (d *Draft) File() *File { return d.file }

// Preview returns the object URL of the photo preview, or "".
func (d *Draft) Preview() string { return d.preview }

// Cleared reports whether the user asked to delete the stored photo.
func (d *Draft) Cleared() bool { return d.cleared }

// OriginalPhoto returns the stored photo reference being edited.
func (d *Draft) OriginalPhoto() string { return d.originalPhoto }

// HydrationRef returns the stored photo name to fetch for the initial preview.
// It reports true at most once per draft.
func (d *Draft) HydrationRef() (string, bool) {
	if d.hydration != hydrationIdle || d.mode != ModeUpload {
		return "", false
	}
	d.hydration = hydrationPending
	return strings.TrimPrefix(d.originalPhoto, "/uploads/"), true
}

// ApplyHydration installs the fetched preview. A result arriving after the
// user switched mode, removed the image or picked a file is released instead.
func (d *Draft) ApplyHydration(url string) bool {
	if d.hydration != hydrationPending || url == "" {
		d.release(url)
		return false
	}
	d.hydration = hydrationDone
	d.setPreview(url)
	return true
}

// SwitchMode changes the photo mode. Switching to URL drops any file and
// preview; switching to upload drops the URL input and a pending deletion.
func (d *Draft) SwitchMode(m Mode) {
	if d.mode == m {
		return
	}
	d.mode = m
	d.urlInput = ""
	if m == ModeURL {
		d.setPreview("")
		d.file = nil
		d.hydration = hydrationDone
		return
	}
	d.cleared = false
}

// ToggleMode flips between upload and URL mode.
func (d *Draft) ToggleMode() {
	if d.mode == ModeURL {
		d.SwitchMode(ModeUpload)
		return
	}
	d.SwitchMode(ModeURL)
}

// SelectFile picks a new photo file and previews it.
func (d *Draft) SelectFile(f File) {
	d.mode = ModeUpload
	d.urlInput = ""
	d.file = &f
	d.cleared = false
	d.hydration = hydrationDone
	d.setPreview(d.objects.Create(photo.Blob{ContentType: f.ContentType, Data: f.Data}))
}

// SetURL sets the external URL input.
func (d *Draft) SetURL(s string) {
	d.urlInput = s
}

// RemoveImage clears every photo source and marks the stored photo for
// deletion.
func (d *Draft) RemoveImage() {
	d.setPreview("")
	d.file = nil
	d.urlInput = ""
	d.cleared = true
	d.hydration = hydrationDone
}

// Tags returns the selected tags in selection order.
func (d *Draft) Tags() []string {
	return append([]string(nil), d.tags...)
}

// HasTag reports whether tag is selected.
func (d *Draft) HasTag(tag string) bool {
	for _, t := range d.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ToggleTag selects or deselects tag.
func (d *Draft) ToggleTag(tag string) {
	for i, t := range d.tags {
		if t == tag {
			d.tags = append(d.tags[:i:i], d.tags[i+1:]...)
			return
		}
	}
	d.tags = append(d.tags, tag)
}

// Submit validates the draft and builds the submission with exactly one
// photo intent.
func (d *Draft) Submit() (recipe.Submission, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return recipe.Submission{}, ErrTitleRequired
	}
	prep, err := parsePrep(d.PrepTime)
	if err != nil {
		return recipe.Submission{}, err
	}
	var tags []string
	for _, t := range d.tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return recipe.Submission{
		Title:           title,
		Description:     d.Description,
		IngredientMd:    d.IngredientMd,
		ProcessMd:       d.ProcessMd,
		PrepTimeMinutes: prep,
		Tags:            tags,
		Photo:           d.intent(),
	}, nil
}

func (d *Draft) intent() recipe.PhotoIntent {
	if d.mode == ModeURL {
		if u := strings.TrimSpace(d.urlInput); u != "" {
			return recipe.LinkPhoto{URL: u}
		}
		if d.cleared || d.originalPhoto != "" {
			return recipe.ClearPhoto{}
		}
		return recipe.KeepPhoto{}
	}
	switch {
	case d.file != nil:
		return recipe.UploadPhoto{Name: d.file.Name, ContentType: d.file.ContentType, Data: d.file.Data}
	case d.cleared:
		return recipe.ClearPhoto{}
	default:
		return recipe.KeepPhoto{}
	}
}

// Close releases the preview. The draft must not be used afterwards.
func (d *Draft) Close() {
	d.setPreview("")
	d.hydration = hydrationDone
}

func (d *Draft) setPreview(url string) {
	if d.preview != "" && d.preview != url {
		d.release(d.preview)
	}
	d.preview = url
}

func (d *Draft) release(url string) {
	if photo.IsObjectURL(url) {
		d.objects.Revoke(url)
	}
}

func parsePrep(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, ErrPrepTime
	}
	return n, nil
}
