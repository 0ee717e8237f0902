// Package imagestore persists uploaded cover images to a flat directory and
// hands back the relative reference path that gets stored on the book record.
// It never stores raw bytes in the database.
package imagestore

import (
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hondanabooks/hondana/pkg/errcodes"
	"github.com/pkg/errors"
)

// URLPrefix is the path under which stored images are served and referenced.
const URLPrefix = "/images"

// allowedExtensions maps accepted file extensions to the declared MIME type
// they must agree with. Only the declared type and the filename extension are
// checked; file contents are never sniffed.
var allowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

type Store struct {
	dir      string
	maxBytes int64

	mkdirOnce sync.Once
	mkdirErr  error
}

func New(dir string, maxBytes int64) *Store {
	return &Store{dir: dir, maxBytes: maxBytes}
}

// Dir returns the backing directory, for static file serving.
func (s *Store) Dir() string {
	return s.dir
}

// Save validates and writes an uploaded file, returning the reference path
// (e.g. "/images/1718031600000-123456789.png") to store on the book. The
// extension and declared MIME type must both be an accepted image format and
// must agree with each other; payloads over the size limit are rejected
// before any bytes are written.
func (s *Store) Save(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	want, ok := allowedExtensions[ext]
	if !ok {
		return "", errcodes.UnsupportedImageType()
	}

	declared := file.Header.Get("Content-Type")
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	// The declared type must agree with the extension. Known aliases (e.g.
	// image/x-png) are resolved through the MIME registry rather than a
	// hand-rolled table; contents are never inspected.
	if mtype := mimetype.Lookup(declared); mtype != nil {
		if !mtype.Is(want) {
			return "", errcodes.UnsupportedImageType()
		}
	} else if declared != want {
		return "", errcodes.UnsupportedImageType()
	}

	if file.Size > s.maxBytes {
		return "", errcodes.ImageTooLarge(s.maxBytes)
	}

	if err := s.ensureDir(); err != nil {
		return "", err
	}

	name := generateFilename(ext)
	dst := filepath.Join(s.dir, name)

	src, err := file.Open()
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer src.Close()

	// O_EXCL: files are only ever created, never overwritten.
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", errors.WithStack(err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", errors.WithStack(err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", errors.WithStack(err)
	}

	return path.Join(URLPrefix, name), nil
}

// Delete removes the file behind a reference path. It is idempotent: a
// reference whose file is already gone is not an error. References outside
// the image prefix never touch the filesystem.
func (s *Store) Delete(ref string) error {
	if !strings.HasPrefix(ref, URLPrefix+"/") {
		return nil
	}
	// Base strips any path traversal a stored reference could carry.
	name := filepath.Base(ref)

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return errors.WithStack(err)
	}
	return nil
}

// ensureDir creates the backing directory on first use rather than per call.
func (s *Store) ensureDir() error {
	s.mkdirOnce.Do(func() {
		s.mkdirErr = errors.WithStack(os.MkdirAll(s.dir, 0755))
	})
	return s.mkdirErr
}

// generateFilename builds a collision-resistant name so concurrent uploads
// never need to coordinate: millisecond epoch plus a random 9-digit suffix,
// keeping the original extension.
func generateFilename(ext string) string {
	return fmt.Sprintf("%d-%09d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
}
