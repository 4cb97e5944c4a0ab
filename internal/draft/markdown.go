package draft

import "strings"

// Wrap surrounds text with before and after, as the bold, italic and code
// toolbar actions do. Blank text gets a placeholder.
func Wrap(text, before, after string) string {
	if strings.TrimSpace(text) == "" {
		text = "text"
	}
	return before + text + after
}

// PrefixLines starts every line of text with prefix unless it already does.
// Blank text gets a placeholder line.
func PrefixLines(text, prefix string) string {
	if text == "" {
		text = "item"
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if !strings.HasPrefix(l, prefix) {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
