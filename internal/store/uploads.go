package store

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// AllowedImageExts are the upload extensions accepted from browsers. Whatever
// the source format, the file is stored as <id>.png.
var AllowedImageExts = []string{".png", ".jpg", ".jpeg"}

func IsAllowedImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedImageExts {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Uploads holds at most one image per post id.
type Uploads struct {
	dir string
}

func NewUploads(dir string) *Uploads {
	return &Uploads{dir: dir}
}

func (u *Uploads) Path(id string) string {
	return filepath.Join(u.dir, id+".png")
}

func (u *Uploads) Exists(id string) bool {
	if checkID(id) != nil {
		return false
	}
	info, err := os.Stat(u.Path(id))
	return err == nil && !info.IsDir()
}

// Save stores r as the image for id, replacing any previous one.
func (u *Uploads) Save(id string, r io.Reader) error {
	if err := checkID(id); err != nil {
		return err
	}
	return writeFile(u.Path(id), func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return err
	})
}

// Open returns the image for id; fs.ErrNotExist when there is none.
func (u *Uploads) Open(id string) (*os.File, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	f, err := os.Open(u.Path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fs.ErrNotExist
		}
		return nil, err
	}
	return f, nil
}

func (u *Uploads) Delete(id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return removeIfExists(u.Path(id))
}
