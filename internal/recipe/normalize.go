package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Backend is a recipe as the backend sent it. Keeping the raw JSON per field
// lets Normalize accept every historical variant of the schema (alternate
// field names, tags as a string or an array, numbers as strings) without a
// decode failure taking the whole record down.
type Backend map[string]json.RawMessage

// UnknownAuthor is shown when the backend names no author.
const UnknownAuthor = "Unknown"

var (
	authorKeys = []string{"authorName", "author"}
	prepKeys   = []string{"prepTimeMinutes", "preparationTime", "prepTime"}
	photoKeys  = []string{"photoUrl", "photo"}
)

// Normalize collapses a backend payload into the canonical Recipe. It never
// fails: a malformed field degrades to "absent" for that field only.
func Normalize(b Backend) Recipe {
	r := Recipe{
		ID:          b.id(),
		Title:       b.text("title"),
		AuthorName:  b.firstText(authorKeys...),
		AuthorEmail: b.text("authorEmail"),
		Description: b.text("description"),
		PhotoRef:    strings.TrimSpace(b.firstText(photoKeys...)),
		Tags:        b.tags(),
	}
	if r.AuthorName == "" {
		r.AuthorName = UnknownAuthor
	}
	r.IngredientMd = b.text("ingredientMd")
	if r.IngredientMd == "" {
		r.IngredientMd = b.markdownList("ingredients", bulletItem)
	}
	r.ProcessMd = b.text("processMd")
	if r.ProcessMd == "" {
		r.ProcessMd = b.markdownList("instructions", numberedItem)
	}
	r.PrepTimeMinutes = b.prepTime()
	return r
}

// NormalizeAll normalizes each backend record in order.
func NormalizeAll(items []Backend) []Recipe {
	out := make([]Recipe, 0, len(items))
	for _, b := range items {
		out = append(out, Normalize(b))
	}
	return out
}

// DecodeList accepts GET /recipes bodies: a bare array, or an object with a
// "content" array (a paginated envelope). Any other JSON value is an empty
// list. Elements that are not objects are skipped. Only invalid JSON errors.
func DecodeList(data []byte) ([]Backend, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode recipe list: %w", err)
	}
	items, ok := asArray(raw)
	if !ok {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return []Backend{}, nil
		}
		if items, ok = asArray(envelope["content"]); !ok {
			return []Backend{}, nil
		}
	}
	out := make([]Backend, 0, len(items))
	for _, item := range items {
		var b Backend
		if err := json.Unmarshal(item, &b); err != nil || b == nil {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// DecodeOne decodes a single recipe object.
func DecodeOne(data []byte) (Backend, error) {
	var b Backend
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode recipe: %w", err)
	}
	if b == nil {
		return nil, fmt.Errorf("decode recipe: empty payload")
	}
	return b, nil
}

func asArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, false
	}
	return items, true
}

// present reports whether key is set to something other than JSON null.
func (b Backend) present(key string) (json.RawMessage, bool) {
	raw, ok := b[key]
	if !ok {
		return nil, false
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false
	}
	return trimmed, true
}

// text returns key as a string; numbers and booleans are rendered, other
// shapes read as empty.
func (b Backend) text(key string) string {
	raw, ok := b.present(key)
	if !ok {
		return ""
	}
	s, _ := scalarString(raw)
	return s
}

func (b Backend) firstText(keys ...string) string {
	for _, k := range keys {
		if s := b.text(k); s != "" {
			return s
		}
	}
	return ""
}

func (b Backend) id() string {
	raw, ok := b.present("id")
	if !ok {
		return ""
	}
	s, _ := scalarString(raw)
	return strings.TrimSpace(s)
}

// prepTime resolves the first defined alias. A defined alias stops the
// search even when its value is unusable, so {prepTimeMinutes: 0, prepTime: 30}
// is absent rather than 30.
func (b Backend) prepTime() int {
	for _, k := range prepKeys {
		raw, ok := b.present(k)
		if !ok {
			continue
		}
		return positiveInt(raw)
	}
	return 0
}

func positiveInt(raw json.RawMessage) int {
	var f float64
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	n := math.Trunc(f)
	if n < 1 || n > math.MaxInt32 {
		return 0
	}
	return int(n)
}

func (b Backend) tags() []string {
	raw, ok := b.present("tags")
	if !ok {
		return nil
	}
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, truthy := scalarString(item); truthy && s != "" {
				out = append(out, s)
			}
		}
		return out
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		return splitTags(s)
	default:
		return nil
	}
}

func splitTags(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type itemFormat func(i int, item string) string

func bulletItem(_ int, item string) string  { return "- " + item }
func numberedItem(i int, item string) string { return strconv.Itoa(i+1) + ". " + item }

// markdownList reads key as markdown: a string is used as is, an array of
// strings becomes a list.
func (b Backend) markdownList(key string, format itemFormat) string {
	raw, ok := b.present(key)
	if !ok {
		return ""
	}
	if raw[0] != '[' {
		s, _ := scalarString(raw)
		return s
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		s, truthy := scalarString(item)
		if s = strings.TrimSpace(s); !truthy || s == "" {
			continue
		}
		lines = append(lines, format(len(lines), s))
	}
	return strings.Join(lines, "\n")
}

// scalarString stringifies a JSON value and reports whether it is truthy.
// null, false, 0 and "" are falsy. Objects and arrays are rendered compactly.
func scalarString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false
	}
	switch trimmed[0] {
	case 'n':
		return "", false
	case 't':
		return "true", true
	case 'f':
		return "false", false
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return s, s != ""
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return "", false
		}
		return buf.String(), true
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return "", false
		}
		f, err := n.Float64()
		if err != nil {
			return n.String(), true
		}
		if f == math.Trunc(f) && math.Abs(f) < 1e15 {
			return strconv.FormatInt(int64(f), 10), f != 0
		}
		return strconv.FormatFloat(f, 'f', -1, 64), f != 0
	}
}
