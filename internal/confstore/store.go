package confstore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"chatdeck/internal/logging"
)

// Names of the files managed by a Store.
const (
	GlobalName = "config.cfg"
	AIName     = "ai.bak.cfg"
	ChatName   = "chat.bak.cfg"
	OtherName  = "other.bak.cfg"
)

// partialNames is the merge priority order: later files win on key collision.
var partialNames = []string{AIName, ChatName, OtherName}

// PartialNames returns the partial file names in merge priority order.
func PartialNames() []string {
	return slices.Clone(partialNames)
}

// IsRecognized reports whether name is one of the partial names or the global name.
func IsRecognized(name string) bool {
	return name == GlobalName || slices.Contains(partialNames, name)
}

// Option configures a Store.
type Option func(*Store)

// WithFs swaps the filesystem the store reads and writes (primarily for tests).
func WithFs(fsys afero.Fs) Option {
	return func(s *Store) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logging.NewComponentLogger(logger, "confstore")
	}
}

// Store reads and writes configuration documents inside one directory.
type Store struct {
	dir    string
	fs     afero.Fs
	logger *slog.Logger
}

// New constructs a Store rooted at dir. The directory is not created.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:    dir,
		fs:     afero.NewOsFs(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the configuration directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path joins the configuration directory and name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Read loads the named document. A missing file yields an empty document; a
// file that cannot be parsed yields a *ParseError.
func (s *Store) Read(name string) (Document, error) {
	path := s.Path(name)
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Save normalizes doc and writes it to the named file, replacing any previous
// contents. When regenerate is true the global file is rebuilt afterwards.
//
// Names other than the partial names and the global name are skipped
// silently: nothing is written, nothing is regenerated, and the would-be path
// is still returned. The path is returned in every case.
func (s *Store) Save(name string, doc Document, regenerate bool) (string, error) {
	path := s.Path(name)
	if !IsRecognized(name) {
		s.logger.Debug("skipping unrecognized config name", logging.String("name", name))
		return path, nil
	}

	data, err := toml.Marshal(Normalize(doc))
	if err != nil {
		return path, &EncodeError{Name: name, Err: err}
	}
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return path, fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Debug("config saved", logging.String(logging.FieldPath, path), logging.Int("bytes", len(data)))

	if regenerate {
		if _, err := s.RegenerateGlobal(); err != nil {
			return path, err
		}
	}
	return path, nil
}

// RegenerateGlobal rebuilds the global file from the current contents of the
// partial files, read in priority order. Missing partial files contribute
// nothing. It returns the global file path.
func (s *Store) RegenerateGlobal() (string, error) {
	docs := make([]Document, 0, len(partialNames))
	for _, name := range partialNames {
		doc, err := s.Read(name)
		if err != nil {
			return s.Path(GlobalName), fmt.Errorf("regenerate %s: %w", GlobalName, err)
		}
		docs = append(docs, doc)
	}

	path, err := s.Save(GlobalName, Merge(docs...), false)
	if err != nil {
		return path, fmt.Errorf("regenerate %s: %w", GlobalName, err)
	}
	s.logger.Info("global config regenerated", logging.String(logging.FieldPath, path))
	return path, nil
}
