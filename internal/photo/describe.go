package photo

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Info summarises a blob for display in a terminal.
type Info struct {
	ContentType string
	Size        int
	Width       int
	Height      int
	Format      string
}

// Describe decodes just enough of b to report its dimensions. Undecodable
// data still reports type and size.
func Describe(b Blob) Info {
	info := Info{ContentType: b.ContentType, Size: len(b.Data)}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(b.Data))
	if err == nil {
		info.Width, info.Height, info.Format = cfg.Width, cfg.Height, format
	}
	return info
}

// String renders info as "image/png 640x480 12.0 KiB".
func (i Info) String() string {
	size := formatSize(i.Size)
	if i.Width > 0 && i.Height > 0 {
		return fmt.Sprintf("%s %dx%d %s", i.ContentType, i.Width, i.Height, size)
	}
	return fmt.Sprintf("%s %s", i.ContentType, size)
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
