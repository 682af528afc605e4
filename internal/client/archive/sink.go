// Package archive stores downloaded reports outside the backend, either in a
// local directory or in an S3-compatible bucket.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/tradeguard/internal/filex"
)

// ErrEmptyName is returned when a sink is asked to store an unnamed object.
var ErrEmptyName = errors.New("archive: empty object name")

// Sink persists a named blob and returns where it ended up.
type Sink interface {
	Store(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// FileSink writes reports into a directory.
type FileSink struct {
	Dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

// Store writes data to Dir/name atomically and returns the absolute path.
// Directory components in name are dropped.
func (s *FileSink) Store(ctx context.Context, name, _ string, data []byte) (string, error) {
	name = cleanName(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir, err := filex.EnsureDir(s.Dir)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := filex.WriteFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("archive %s: %w", name, err)
	}
	return path, nil
}

func cleanName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(os.PathSeparator) {
		return ""
	}
	return name
}
