package media

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveResolveRemove(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	url, err := s.Save("p1", "Front.PNG", strings.NewReader("img"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/media/products/p1/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"))

	full, err := s.Resolve(strings.TrimPrefix(url, URLPrefix))
	require.NoError(t, err)
	b, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "img", string(b))

	require.NoError(t, s.RemoveProduct("p1"))
	_, err = os.Stat(filepath.Dir(full))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, s.RemoveProduct("p1"), "removing twice is fine")
}

func TestSaveRejects(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save("p1", "shell.sh", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = s.Save("../p1", "a.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrBadPath)
}

func TestResolveBlocksTraversal(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"../etc/passwd", "products/../../x", "%2e%2e/x", "a\x00b", "", "/etc/passwd"} {
		_, err := s.Resolve(p)
		assert.ErrorIs(t, err, ErrBadPath, "path %q", p)
	}
}
