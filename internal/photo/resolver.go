package photo

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultContentType is used when the photo response declares none.
const DefaultContentType = "image/jpeg"

const batchLimit = 4

// Fetcher retrieves stored photo bytes from the backend.
type Fetcher interface {
	FetchPhoto(ctx context.Context, name string) (data []byte, contentType string, err error)
}

// Resolver turns photo references into displayable URLs.
type Resolver struct {
	fetcher Fetcher
	objects *Objects
	logger  *slog.Logger
}

// NewResolver builds a Resolver. A nil logger discards output.
func NewResolver(fetcher Fetcher, objects *Objects, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{fetcher: fetcher, objects: objects, logger: logger}
}

// Objects returns the registry minted URLs live in.
func (r *Resolver) Objects() *Objects {
	return r.objects
}

// Resolve returns a displayable URL for ref, or "" when there is nothing to
// show. Object URLs and http(s) URLs are returned unchanged without a fetch.
// Anything else is fetched from the backend and minted as a new object URL
// that the caller must Release. Fetch failures are logged, not returned.
func (r *Resolver) Resolve(ctx context.Context, ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return ""
	case IsObjectURL(ref), IsExternalURL(ref):
		return ref
	}
	data, contentType, err := r.fetcher.FetchPhoto(ctx, ref)
	if err != nil {
		r.logger.Debug("photo resolution failed", "ref", ref, "error", err)
		return ""
	}
	if ctx.Err() != nil {
		return ""
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = DefaultContentType
	}
	return r.objects.Create(Blob{ContentType: contentType, Data: data})
}

// ResolveAll resolves refs concurrently and returns URLs in the same order.
// If ctx ends before the batch completes every URL minted so far is
// released and nil is returned.
func (r *Resolver) ResolveAll(ctx context.Context, refs []string) []string {
	out := make([]string, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchLimit)
	var mu sync.Mutex
	for i, ref := range refs {
		if strings.TrimSpace(ref) == "" {
			continue
		}
		i, ref := i, ref
		g.Go(func() error {
			url := r.Resolve(gctx, ref)
			mu.Lock()
			out[i] = url
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	if ctx.Err() != nil {
		for i, url := range out {
			if url != strings.TrimSpace(refs[i]) {
				r.Release(url)
			}
		}
		return nil
	}
	return out
}

// Release frees url if this resolver minted it. Other URLs are ignored.
func (r *Resolver) Release(url string) bool {
	if !IsObjectURL(url) {
		return false
	}
	return r.objects.Revoke(url)
}

// Blob returns the content behind a minted URL.
func (r *Resolver) Blob(url string) (Blob, bool) {
	if !IsObjectURL(url) {
		return Blob{}, false
	}
	return r.objects.Get(url)
}
