package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// localStore implements ImageStore on the local file system. Files are
// written into a single directory and served statically by the router
// under the configured URL prefix.
type localStore struct {
	dir       string
	urlPrefix string
	logger    zerolog.Logger
}

// NewLocalStore creates a file-system image store rooted at dir. The
// directory is created if it does not exist.
func NewLocalStore(dir, urlPrefix string, logger zerolog.Logger) (ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory %s: %w", dir, err)
	}

	return &localStore{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		logger:    logger.With().Str("component", "local-image-store").Logger(),
	}, nil
}

// Save writes the image under a fresh unique key and returns the URL
// path it will be served from.
func (s *localStore) Save(ctx context.Context, data []byte, originalName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Re-create the directory on every save; it may have been removed
	// out from under a long-running process. MkdirAll is a no-op when
	// the directory already exists.
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory %s: %w", s.dir, err)
	}

	name := uniqueKey(originalName)
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("failed to write image file")
		return "", fmt.Errorf("failed to write image file %s: %w", path, err)
	}

	s.logger.Debug().
		Str("path", path).
		Int("size", len(data)).
		Msg("image stored")

	return s.urlPrefix + "/" + name, nil
}

// uniqueKey builds a collision-resistant storage key. The original
// file name is kept as a human-readable hint, stripped of any path
// components the client may have sent.
func uniqueKey(originalName string) string {
	hint := filepath.Base(strings.TrimSpace(originalName))
	if hint == "." || hint == string(filepath.Separator) || hint == "" {
		hint = "image"
	}
	return uuid.New().String() + "-" + hint
}
