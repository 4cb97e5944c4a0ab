package photo

import "sync"

// Releaser frees minted URLs.
type Releaser interface {
	Release(url string) bool
}

// Slots tracks the photo URL shown in each logical slot of a view (one per
// displayed image) so that every minted URL is released exactly once: when a
// newer resolution supersedes it or when the view goes away.
type Slots struct {
	mu       sync.Mutex
	releaser Releaser
	urls     map[string]string
}

// NewSlots returns an empty slot set releasing through r.
func NewSlots(r Releaser) *Slots {
	return &Slots{releaser: r, urls: make(map[string]string)}
}

// Set records url for slot, releasing whatever the slot held before.
func (s *Slots) Set(slot, url string) {
	s.mu.Lock()
	prev, had := s.urls[slot]
	if url == "" {
		delete(s.urls, slot)
	} else {
		s.urls[slot] = url
	}
	s.mu.Unlock()
	if had && prev != url {
		s.releaser.Release(prev)
	}
}

// Get returns the URL held for slot.
func (s *Slots) Get(slot string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.urls[slot]
}

// Release frees the URL held for slot.
func (s *Slots) Release(slot string) {
	s.Set(slot, "")
}

// ReleaseAll frees every held URL.
func (s *Slots) ReleaseAll() {
	s.mu.Lock()
	urls := s.urls
	s.urls = make(map[string]string)
	s.mu.Unlock()
	for _, url := range urls {
		s.releaser.Release(url)
	}
}

// Len returns the number of occupied slots.
func (s *Slots) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls)
}
