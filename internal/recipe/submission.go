package recipe

// Submission is what a create or update sends to the backend.
type Submission struct {
	Title           string
	Description     string
	IngredientMd    string
	ProcessMd       string
	PrepTimeMinutes int // 0 leaves the field out
	Tags            []string
	Photo           PhotoIntent
}

// PhotoIntent says what should happen to the stored photo. It is a closed set
// of four cases; exactly one is chosen per submission.
type PhotoIntent interface {
	photoIntent()
}

// KeepPhoto leaves the stored photo unchanged.
type KeepPhoto struct{}

// UploadPhoto replaces the stored photo with new binary content.
type UploadPhoto struct {
	Name        string
	ContentType string
	Data        []byte
}

// LinkPhoto replaces the stored photo with an external URL.
type LinkPhoto struct {
	URL string
}

// ClearPhoto deletes the stored photo.
type ClearPhoto struct{}

func (KeepPhoto) photoIntent()   {}
func (UploadPhoto) photoIntent() {}
func (LinkPhoto) photoIntent()   {}
func (ClearPhoto) photoIntent()  {}

// IntentName names an intent for logs.
func IntentName(p PhotoIntent) string {
	switch p.(type) {
	case UploadPhoto:
		return "upload"
	case LinkPhoto:
		return "link"
	case ClearPhoto:
		return "clear"
	default:
		return "keep"
	}
}
