package resume

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// Document is a client-held reference to the selected resume file.
type Document struct {
	fs   afero.Fs
	path string
}

// Open checks that path names a regular file on fs and returns a reference to it.
// The content is read only when the document is submitted.
func Open(fs afero.Fs, path string) (Document, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return Document{}, fmt.Errorf("resume file %q: %w", path, err)
	}

	if info.IsDir() {
		return Document{}, fmt.Errorf("resume file %q is a directory", path)
	}

	return Document{fs: fs, path: path}, nil
}

// OpenLocal opens a document on the operating system filesystem.
func OpenLocal(path string) (Document, error) {
	return Open(afero.NewOsFs(), path)
}

func (d Document) Name() string {
	return filepath.Base(d.path)
}

func (d Document) Path() string {
	return d.path
}

func (d Document) reader() (io.ReadCloser, error) {
	if d.fs == nil {
		return nil, fmt.Errorf("resume document is not opened")
	}
	return d.fs.Open(d.path)
}
