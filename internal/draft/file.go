package draft

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize bounds photo uploads read from disk.
const MaxFileSize = 10 << 20

// File is a photo picked from the local filesystem.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReadFile loads the photo at path. The content type comes from the
// extension, falling back to sniffing the bytes.
func ReadFile(path string) (File, error) {
	path = expandHome(strings.TrimSpace(path))
	if path == "" {
		return File{}, fmt.Errorf("read photo: empty path")
	}
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("read photo: %w", err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("read photo: %s is a directory", path)
	}
	if info.Size() > MaxFileSize {
		return File{}, fmt.Errorf("read photo: %s exceeds %d MiB", filepath.Base(path), MaxFileSize>>20)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read photo: %w", err)
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return File{}, fmt.Errorf("read photo: %s is not an image (%s)", filepath.Base(path), contentType)
	}
	return File{Name: filepath.Base(path), ContentType: contentType, Data: data}, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
