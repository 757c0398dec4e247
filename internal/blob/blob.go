package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded image files outside the database. Save returns
// the public URL recorded in product_images; Remove takes that same URL.
type Store interface {
	Save(originalFilename string, r io.Reader) (publicURL string, err error)
	Remove(publicURL string) error
}

// DiskStore keeps blobs on the local filesystem under dir and serves them
// at publicPrefix.
type DiskStore struct {
	dir          string
	publicPrefix string
}

func NewDiskStore(dir, publicPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &DiskStore{
		dir:          dir,
		publicPrefix: strings.TrimSuffix(publicPrefix, "/"),
	}, nil
}

func (s *DiskStore) Save(originalFilename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	filename := uuid.New().String() + ext
	path := filepath.Join(s.dir, filename)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return s.publicPrefix + "/" + filename, nil
}

func (s *DiskStore) Remove(publicURL string) error {
	filename := strings.TrimPrefix(publicURL, s.publicPrefix+"/")
	if filename == publicURL || strings.Contains(filename, "/") {
		return fmt.Errorf("url %q is not under %q", publicURL, s.publicPrefix)
	}
	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil {
		return fmt.Errorf("failed to remove blob %s: %w", filename, err)
	}
	return nil
}
