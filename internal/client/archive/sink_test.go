package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSink_Store(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	s := NewFileSink(dir)

	path, err := s.Store(context.Background(), "report-1.md", "text/markdown", []byte("# Report"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report-1.md"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Report", string(b))
}

func TestFileSink_Overwrite(t *testing.T) {
	s := NewFileSink(t.TempDir())
	ctx := context.Background()

	_, err := s.Store(ctx, "r.md", "", []byte("old"))
	require.NoError(t, err)
	path, err := s.Store(ctx, "r.md", "", []byte("new"))
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(b))
}

func TestFileSink_StripsDirectories(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSink(dir)

	path, err := s.Store(context.Background(), "../../etc/passwd", "", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "passwd"), path)
}

func TestFileSink_Errors(t *testing.T) {
	s := NewFileSink(t.TempDir())

	_, err := s.Store(context.Background(), "  ", "", nil)
	assert.ErrorIs(t, err, ErrEmptyName)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Store(ctx, "r.md", "", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
