package history

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timvw/pane-send/internal/model"
)

func TestMemoryStore_MostRecentFirstAndDeduplicated(t *testing.T) {
	s := NewMemoryStore()
	a := model.Target{Session: "a"}
	b := model.Target{Session: "b", Window: "1"}

	require.NoError(t, s.Add(a))
	require.NoError(t, s.Add(b))
	require.NoError(t, s.Add(a))

	assert.Equal(t, []model.Target{a, b}, s.Recent())

	last, ok := Last(s)
	require.True(t, ok)
	assert.Equal(t, a, last)

	require.NoError(t, s.Clear())
	_, ok = Last(s)
	assert.False(t, ok)
}

func TestPushCapsEntries(t *testing.T) {
	var list []model.Target
	for i := 0; i < MaxEntries+5; i++ {
		list = push(list, model.Target{Session: fmt.Sprintf("s%d", i)})
	}
	require.Len(t, list, MaxEntries)
	assert.Equal(t, "s14", list[0].Session)
	assert.Equal(t, "s5", list[MaxEntries-1].Session)
}

func TestPushDistinguishesComponents(t *testing.T) {
	list := push(nil, model.Target{Session: "a", Window: "1"})
	list = push(list, model.Target{Session: "a", Window: "1", Pane: "0"})
	assert.Len(t, list, 2)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "recent.yaml")
	target := model.Target{Session: "dev", Window: "1", Pane: "2"}

	require.NoError(t, NewFileStore(path).Add(target))
	require.NoError(t, NewFileStore(path).Add(model.Target{Session: "prod"}))

	got := NewFileStore(path).Recent()
	assert.Equal(t, []model.Target{{Session: "prod"}, target}, got)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Empty(t, s.Recent())
}

func TestFileStore_CorruptFileIsReplaced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recent: [:::"), 0o600))

	s := NewFileStore(path)
	assert.Empty(t, s.Recent())
	require.NoError(t, s.Add(model.Target{Session: "dev"}))
	assert.Equal(t, []model.Target{{Session: "dev"}}, s.Recent())
}

func TestFileStore_SkipsInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recent.yaml")
	data := "recent:\n  - session: dev\n    window: \"1\"\n  - window: \"2\"\n  - session: \"a:b\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	assert.Equal(t, []model.Target{{Session: "dev", Window: "1"}}, NewFileStore(path).Recent())
}

func TestFileStore_RejectsInvalidTarget(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "recent.yaml"))
	assert.Error(t, s.Add(model.Target{}))
}

func TestFileStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recent.yaml")
	s := NewFileStore(path)
	require.NoError(t, s.Add(model.Target{Session: "dev"}))
	require.NoError(t, s.Clear())
	assert.Empty(t, s.Recent())
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg-state/pane-send/recent.yaml", p)
}
