package assets

import (
	"context"
	"io"
)

// Store is the boundary to the hosted image service. Upload returns
// the public URL to persist on the user record; Delete is best-effort
// from the caller's point of view (callers log failures and move on,
// or hand them to the cleanup worker).
type Store interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}
