package confstore_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatdeck/internal/confstore"
)

const memDir = "/srv/chatdeck/config"

func newMemStore(t *testing.T) (*confstore.Store, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll(memDir, 0o755))
	return confstore.New(memDir, confstore.WithFs(fsys)), fsys
}

func TestSaveRegeneratesGlobalWithPriorityOrder(t *testing.T) {
	store, _ := newMemStore(t)

	_, err := store.Save(confstore.ChatName, confstore.Document{"model": "claude"}, false)
	require.NoError(t, err)

	path, err := store.Save(confstore.AIName, confstore.Document{"model": "gpt", "temperature": 0}, true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(memDir, confstore.AIName), path)

	ai, err := store.Read(confstore.AIName)
	require.NoError(t, err)
	assert.Equal(t, confstore.Document{"model": "gpt"}, ai)

	global, err := store.Read(confstore.GlobalName)
	require.NoError(t, err)
	assert.Equal(t, confstore.Document{"model": "claude"}, global)
}

func TestGlobalEqualsUnionOfPartials(t *testing.T) {
	store, _ := newMemStore(t)

	_, err := store.Save(confstore.OtherName, confstore.Document{"theme": "dark", "model": "local"}, true)
	require.NoError(t, err)
	_, err = store.Save(confstore.AIName, confstore.Document{"model": "gpt", "llm": map[string]any{"top_p": 0.9}}, true)
	require.NoError(t, err)
	_, err = store.Save(confstore.ChatName, confstore.Document{"history": int64(20), "llm": map[string]any{"stream": true}}, true)
	require.NoError(t, err)

	var partials []confstore.Document
	for _, name := range confstore.PartialNames() {
		doc, err := store.Read(name)
		require.NoError(t, err)
		partials = append(partials, doc)
	}
	global, err := store.Read(confstore.GlobalName)
	require.NoError(t, err)

	assert.Equal(t, confstore.Merge(partials...), global)
	assert.Equal(t, confstore.Document{
		"model":   "local",
		"theme":   "dark",
		"history": int64(20),
		"llm":     map[string]any{"stream": true},
	}, global)
}

func TestSaveRoundTripsNormalizedDocument(t *testing.T) {
	store, _ := newMemStore(t)

	input := confstore.Document{
		"a": "",
		"b": "  x  ",
		"c": false,
		"d": map[string]any{"e": "", "f": 1},
		"g": []any{map[string]any{"h": ""}, "keep"},
	}
	_, err := store.Save(confstore.OtherName, input, false)
	require.NoError(t, err)

	got, err := store.Read(confstore.OtherName)
	require.NoError(t, err)
	assert.Equal(t, confstore.Document{
		"b": "  x  ",
		"c": false,
		"d": map[string]any{"f": int64(1)},
		"g": []any{map[string]any{}, "keep"},
	}, got)
	assert.Equal(t, "", input["a"], "caller's document must not be modified")
}

func TestRegenerateWithoutPartialsWritesEmptyGlobal(t *testing.T) {
	store, fsys := newMemStore(t)

	path, err := store.RegenerateGlobal()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(memDir, confstore.GlobalName), path)

	exists, err := afero.Exists(fsys, path)
	require.NoError(t, err)
	assert.True(t, exists)

	global, err := store.Read(confstore.GlobalName)
	require.NoError(t, err)
	assert.Empty(t, global)
}

func TestSaveUnrecognizedNameIsSkipped(t *testing.T) {
	store, fsys := newMemStore(t)

	path, err := store.Save("secret.cfg", confstore.Document{"token": "abc"}, true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(memDir, "secret.cfg"), path)

	for _, name := range []string{"secret.cfg", confstore.GlobalName} {
		exists, err := afero.Exists(fsys, filepath.Join(memDir, name))
		require.NoError(t, err)
		assert.False(t, exists, "%s must not be written", name)
	}
}

func TestSaveUnrecognizedNameLeavesExistingFileUntouched(t *testing.T) {
	dir := t.TempDir()
	store := confstore.New(dir)
	target := filepath.Join(dir, "notes.cfg")
	require.NoError(t, os.WriteFile(target, []byte("keep = true\n"), 0o644))
	before, err := os.Stat(target)
	require.NoError(t, err)

	path, err := store.Save("notes.cfg", confstore.Document{"keep": false}, true)
	require.NoError(t, err)
	assert.Equal(t, target, path)

	after, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "keep = true\n", string(data))
}

func TestSaveGlobalWithRegenerateIsReplacedByUnion(t *testing.T) {
	store, _ := newMemStore(t)
	_, err := store.Save(confstore.AIName, confstore.Document{"model": "gpt"}, false)
	require.NoError(t, err)

	_, err = store.Save(confstore.GlobalName, confstore.Document{"manual": "edit"}, true)
	require.NoError(t, err)

	global, err := store.Read(confstore.GlobalName)
	require.NoError(t, err)
	assert.Equal(t, confstore.Document{"model": "gpt"}, global)
}

func TestReadMissingFileReturnsEmptyDocument(t *testing.T) {
	store, _ := newMemStore(t)
	doc, err := store.Read(confstore.ChatName)
	require.NoError(t, err)
	assert.NotNil(t, doc)
	assert.Empty(t, doc)
}

func TestReadMalformedFileReturnsParseError(t *testing.T) {
	store, fsys := newMemStore(t)
	require.NoError(t, afero.WriteFile(fsys, store.Path(confstore.ChatName), []byte("model = \n[broken"), 0o644))

	_, err := store.Read(confstore.ChatName)
	var parseErr *confstore.ParseError
	require.True(t, errors.As(err, &parseErr), "expected ParseError, got %v", err)
	assert.Equal(t, store.Path(confstore.ChatName), parseErr.Path)
}

func TestRegenerateStopsOnParseErrorWithoutWriting(t *testing.T) {
	store, fsys := newMemStore(t)
	globalPath := store.Path(confstore.GlobalName)
	require.NoError(t, afero.WriteFile(fsys, globalPath, []byte("model = \"old\"\n"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, store.Path(confstore.OtherName), []byte("=oops"), 0o644))

	_, err := store.Save(confstore.AIName, confstore.Document{"model": "gpt"}, true)
	var parseErr *confstore.ParseError
	require.ErrorAs(t, err, &parseErr)

	data, err := afero.ReadFile(fsys, globalPath)
	require.NoError(t, err)
	assert.Equal(t, "model = \"old\"\n", string(data))
}

func TestSavePropagatesWriteFailure(t *testing.T) {
	store := confstore.New(filepath.Join(t.TempDir(), "missing"))
	_, err := store.Save(confstore.AIName, confstore.Document{"model": "gpt"}, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPartialNamesOrderAndRecognition(t *testing.T) {
	names := confstore.PartialNames()
	assert.Equal(t, []string{"ai.bak.cfg", "chat.bak.cfg", "other.bak.cfg"}, names)
	names[0] = "mutated"
	assert.Equal(t, "ai.bak.cfg", confstore.PartialNames()[0])

	assert.True(t, confstore.IsRecognized("config.cfg"))
	assert.True(t, confstore.IsRecognized("chat.bak.cfg"))
	assert.False(t, confstore.IsRecognized("secret.cfg"))
	assert.False(t, confstore.IsRecognized("../ai.bak.cfg"))
}

func TestSaveReportsUnencodableDocument(t *testing.T) {
	store, fsys := newMemStore(t)
	path := filepath.Join(memDir, confstore.AIName)
	require.NoError(t, afero.WriteFile(fsys, path, []byte("model = \"old\"\n"), 0o644))

	_, err := store.Save(confstore.AIName, confstore.Document{"g": []any{nil}}, true)
	var encodeErr *confstore.EncodeError
	require.ErrorAs(t, err, &encodeErr)
	assert.Equal(t, confstore.AIName, encodeErr.Name)

	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	assert.Equal(t, "model = \"old\"\n", string(data))
}
