package storage

import "context"

// ImageStore durably persists an uploaded image and returns a stable
// reference that can be resolved later (a URL path for the local
// backend, an absolute URL for S3).
//
// Save must generate a fresh key on every call, even for identical
// payloads; callers rely on references never colliding.
type ImageStore interface {
	Save(ctx context.Context, data []byte, originalName string) (string, error)
}
