package photo

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ObjectURLPrefix marks URLs minted by Objects.
const ObjectURLPrefix = "blob:"

const urlNamespace = ObjectURLPrefix + "galley/"

// Blob is binary photo content held in memory.
type Blob struct {
	ContentType string
	Data        []byte
}

// Objects is an in-memory registry of blobs addressed by object URLs. Each
// URL it mints stays valid until it is revoked.
type Objects struct {
	mu    sync.Mutex
	blobs map[string]Blob
}

// NewObjects returns an empty registry.
func NewObjects() *Objects {
	return &Objects{blobs: make(map[string]Blob)}
}

// Create stores b and returns a fresh object URL for it.
func (o *Objects) Create(b Blob) string {
	url := urlNamespace + uuid.NewString()
	o.mu.Lock()
	defer o.mu.Unlock()
	o.blobs[url] = b
	return url
}

// Revoke releases url. It reports false if url was not live.
func (o *Objects) Revoke(url string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.blobs[url]; !ok {
		return false
	}
	delete(o.blobs, url)
	return true
}

// Get returns the blob behind a live object URL.
func (o *Objects) Get(url string) (Blob, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	b, ok := o.blobs[url]
	return b, ok
}

// Len returns the number of live object URLs.
func (o *Objects) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.blobs)
}

// IsObjectURL reports whether ref is a local object URL.
func IsObjectURL(ref string) bool {
	return len(ref) >= len(ObjectURLPrefix) && strings.EqualFold(ref[:len(ObjectURLPrefix)], ObjectURLPrefix)
}

// IsExternalURL reports whether ref is an absolute http(s) URL.
func IsExternalURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
