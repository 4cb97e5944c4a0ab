package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/five82/galley/internal/recipe"
)

// encodeSubmission renders s as the multipart form the recipes endpoints
// accept. Empty text fields are omitted so the backend keeps its defaults.
func encodeSubmission(s recipe.Submission) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"title", strings.TrimSpace(s.Title)},
		{"description", s.Description},
		{"ingredientMd", s.IngredientMd},
		{"processMd", s.ProcessMd},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("encode %s: %w", f.name, err)
		}
	}
	if s.PrepTimeMinutes > 0 {
		if err := w.WriteField("prepTimeMinutes", strconv.Itoa(s.PrepTimeMinutes)); err != nil {
			return nil, "", fmt.Errorf("encode prepTimeMinutes: %w", err)
		}
	}
	if len(s.Tags) > 0 {
		tags, err := json.Marshal(s.Tags)
		if err != nil {
			return nil, "", fmt.Errorf("encode tags: %w", err)
		}
		if err := w.WriteField("tags", string(tags)); err != nil {
			return nil, "", fmt.Errorf("encode tags: %w", err)
		}
	}

	switch p := s.Photo.(type) {
	case recipe.UploadPhoto:
		if err := writeFile(w, p); err != nil {
			return nil, "", err
		}
	case recipe.LinkPhoto:
		if err := w.WriteField("photoUrl", p.URL); err != nil {
			return nil, "", fmt.Errorf("encode photoUrl: %w", err)
		}
	case recipe.ClearPhoto:
		if err := w.WriteField("photoUrl", ""); err != nil {
			return nil, "", fmt.Errorf("encode photoUrl: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, p recipe.UploadPhoto) error {
	name := p.Name
	if name == "" {
		name = "photo"
	}
	contentType := p.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("encode photo: %w", err)
	}
	if _, err := part.Write(p.Data); err != nil {
		return fmt.Errorf("encode photo: %w", err)
	}
	return nil
}
