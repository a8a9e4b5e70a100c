// Package media stores uploaded post images on the local filesystem.
//
// Clients send images inline as base64 data URIs. DecodeDataURI turns one
// into bytes plus a file extension; LocalStorage writes them under the
// media root with a random name and hands back the root-relative path that
// is persisted in posts.image.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize caps a decoded upload.
const MaxImageSize = 5 << 20

var (
	ErrNotDataURI  = errors.New("media: not a base64 data URI")
	ErrNotImage    = errors.New("media: content is not an image")
	ErrTooLarge    = errors.New("media: image exceeds the size limit")
	ErrInvalidPath = errors.New("media: invalid path")
)

// extensions maps sniffed content types to the file extension used on disk.
var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// DecodeDataURI parses "data:<type>;base64,<payload>". The declared type is
// not trusted; the content type is sniffed from the decoded bytes.
func DecodeDataURI(uri string) (*Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return nil, ErrNotDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrNotDataURI
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize+3 {
		return nil, ErrTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDataURI, err)
	}
	if len(data) > MaxImageSize {
		return nil, ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		return nil, ErrNotImage
	}
	return &Image{Data: data, ContentType: contentType, Ext: ext}, nil
}

// LocalStorage keeps files under Root and serves them below BaseURL.
type LocalStorage struct {
	root    string
	baseURL string
}

// NewLocalStorage creates the root directory if it does not exist. baseURL
// is the public prefix files are served from, e.g.
// "http://localhost:8080/media/".
func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("media: creating root %s: %w", root, err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStorage{root: root, baseURL: baseURL}, nil
}

// Root is the directory files are written to.
func (s *LocalStorage) Root() string { return s.root }

// Save writes img under dir with a fresh UUID name and returns the
// slash-separated path relative to the root, e.g. "posts/<uuid>.png".
func (s *LocalStorage) Save(dir string, img *Image) (string, error) {
	rel := path.Join(dir, uuid.NewString()+img.Ext)
	full, err := s.resolve(rel)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("media: creating %s: %w", filepath.Dir(full), err)
	}
	if err := os.WriteFile(full, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("media: writing %s: %w", rel, err)
	}
	return rel, nil
}

// Delete removes the file at rel. A file that is already gone is not an
// error.
func (s *LocalStorage) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("media: deleting %s: %w", rel, err)
	}
	return nil
}

// URL returns the public URL of rel.
func (s *LocalStorage) URL(rel string) string {
	return s.baseURL + (&url.URL{Path: rel}).EscapedPath()
}

// resolve maps rel onto the filesystem, refusing anything that escapes the
// root.
func (s *LocalStorage) resolve(rel string) (string, error) {
	clean := path.Clean("/" + rel)
	if clean == "/" {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
