package uploads

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"

	"chatdeck/internal/logging"
)

// ErrInvalidFilename is returned when an upload name does not reduce to a
// usable file name.
var ErrInvalidFilename = errors.New("invalid upload filename")

// Option configures a Saver.
type Option func(*Saver)

// WithFs overrides the filesystem (tests use afero.NewMemMapFs).
func WithFs(fs afero.Fs) Option {
	return func(s *Saver) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Saver) {
		s.logger = logging.NewComponentLogger(logger, "uploads")
	}
}

// Saver writes uploads into a single directory.
type Saver struct {
	dir    string
	fs     afero.Fs
	logger *slog.Logger
}

// NewSaver constructs a Saver rooted at dir.
func NewSaver(dir string, opts ...Option) *Saver {
	s := &Saver{
		dir:    dir,
		fs:     afero.NewOsFs(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the uploads directory.
func (s *Saver) Dir() string {
	return s.dir
}

// Save copies the upload to <dir>/<name> and returns that path. An existing
// file with the same name is replaced.
func (s *Saver) Save(file File) (string, error) {
	if file == nil {
		return "", errors.New("upload file required")
	}
	name, err := CleanFilename(file.Filename())
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads directory: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	target := filepath.Join(s.dir, name)
	out, err := s.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", target, err)
	}
	written, err := io.Copy(out, src)
	if err != nil {
		_ = out.Close()
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", target, err)
	}

	s.logger.Info("upload saved",
		logging.String(logging.FieldPath, target),
		logging.Int64("bytes", written),
	)
	return target, nil
}

// CleanFilename reduces a client-supplied name to a single NFC-normalized
// path element. Both slash styles count as separators.
func CleanFilename(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = norm.NFC.String(strings.TrimSpace(name))
	switch name {
	case "", ".", "..":
		return "", ErrInvalidFilename
	}
	if strings.ContainsRune(name, 0) {
		return "", ErrInvalidFilename
	}
	return name, nil
}
