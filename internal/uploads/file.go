package uploads

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// File is an uploaded file: a client-supplied name plus readable content.
type File interface {
	Filename() string
	Open() (io.ReadCloser, error)
}

type multipartFile struct {
	header *multipart.FileHeader
}

// FromMultipart adapts a multipart form file.
func FromMultipart(header *multipart.FileHeader) File {
	return multipartFile{header: header}
}

func (f multipartFile) Filename() string {
	return f.header.Filename
}

func (f multipartFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}

type localFile struct {
	path string
	name string
}

// FromPath adapts a file on the local filesystem. The upload keeps the
// file's base name.
func FromPath(path string) File {
	return localFile{path: path, name: filepath.Base(path)}
}

// FromPathAs adapts a local file uploaded under a different name.
func FromPathAs(path, name string) File {
	return localFile{path: path, name: name}
}

func (f localFile) Filename() string {
	return f.name
}

func (f localFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}
