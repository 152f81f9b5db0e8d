// Package media stores uploaded profile pictures as square JPEG thumbnails.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// ErrInvalidImage is returned when the upload cannot be decoded as an image
var ErrInvalidImage = errors.New("file is not a supported image")

var whitespace = regexp.MustCompile(`\s+`)

// Store writes thumbnails into Dir and serves them under URLPrefix
type Store struct {
	Dir       string
	URLPrefix string
	Size      int // width and height in pixels
	Quality   int // JPEG quality
	now       func() time.Time
}

// NewStore creates a store for 200x200 thumbnails served from /uploads
func NewStore(dir string) *Store {
	return &Store{Dir: dir, URLPrefix: "/uploads", Size: 200, Quality: 80, now: time.Now}
}

// FileName builds the stored name: <unix-ms>-<original name with whitespace replaced by dashes>
func (s *Store) FileName(originalName string) string {
	base := filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	return fmt.Sprintf("%d-%s", s.now().UnixMilli(), whitespace.ReplaceAllString(base, "-"))
}

// SaveProfilePicture decodes r, crops it to a centered square and writes it as JPEG.
// It returns the public path of the file.
func (s *Store) SaveProfilePicture(r io.Reader, originalName string) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	thumb := imaging.Fill(img, s.Size, s.Size, imaging.Center, imaging.Lanczos)

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	name := s.FileName(originalName)
	f, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	if err := imaging.Encode(f, thumb, imaging.JPEG, imaging.JPEGQuality(s.Quality)); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path.Join(s.URLPrefix, name), nil
}
