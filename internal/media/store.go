package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrBadPath      = errors.New("media path rejected")
	ErrUnsupported  = errors.New("unsupported image type")
	allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}
)

// URLPrefix is where the HTTP layer mounts Store.Resolve.
const URLPrefix = "/media/"

// Store keeps uploaded product images on local disk under Root.
type Store struct{ Root string }

func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("media dir: %w", err)
	}
	return &Store{Root: abs}, nil
}

// Save writes r under products/<productID>/ with a fresh name and returns
// the public URL. Only image extensions are accepted.
func (s *Store) Save(productID, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExt[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	if productID == "" || strings.ContainsAny(productID, `/\.`) {
		return "", ErrBadPath
	}
	rel := path.Join("products", productID, uuid.NewString()+ext)
	full := filepath.Join(s.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", err
	}
	return URLPrefix + rel, nil
}

// Resolve maps a request path below URLPrefix to a file inside Root,
// rejecting traversal, encoded dots and NUL bytes.
func (s *Store) Resolve(p string) (string, error) {
	lower := strings.ToLower(p)
	if strings.Contains(lower, "..") || strings.Contains(lower, "%2e") || strings.Contains(lower, "\x00") {
		return "", ErrBadPath
	}
	clean := filepath.Clean(filepath.FromSlash(p))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", ErrBadPath
	}
	full := filepath.Join(s.Root, clean)
	if !strings.HasPrefix(full, s.Root+string(filepath.Separator)) {
		return "", ErrBadPath
	}
	return full, nil
}

// RemoveProduct deletes every stored image of a product. Missing dirs are fine.
func (s *Store) RemoveProduct(productID string) error {
	if productID == "" || strings.ContainsAny(productID, `/\.`) {
		return ErrBadPath
	}
	return os.RemoveAll(filepath.Join(s.Root, "products", productID))
}
