package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	s, err := NewStore(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	return s
}

func TestStore_AppendAndGet(t *testing.T) {
	s := newTestStore(t)
	base := "https://example.com"

	require.NoError(t, s.Append(base, "https://example.com/a"))
	require.NoError(t, s.Append(base, "https://example.com/b"))

	assert.Equal(t, []string{"https://example.com/b", "https://example.com/a"}, s.Get(base))
	assert.Empty(t, s.Get("https://other.com"))
}

func TestStore_CapsAtFiveEntries(t *testing.T) {
	s := newTestStore(t)
	base := "https://example.com"

	urls := []string{"/1", "/2", "/3", "/4", "/5", "/6", "/7"}
	for _, u := range urls {
		require.NoError(t, s.Append(base, base+u))
	}

	got := s.Get(base)
	require.Len(t, got, 5)
	assert.Equal(t, base+"/7", got[0])
	assert.Equal(t, base+"/3", got[4])
}

func TestStore_DedupRelocatesToFront(t *testing.T) {
	s := newTestStore(t)
	base := "https://example.com"

	require.NoError(t, s.Append(base, base+"/a"))
	require.NoError(t, s.Append(base, base+"/b"))
	require.NoError(t, s.Append(base, base+"/c"))
	require.NoError(t, s.Append(base, base+"/a"))

	assert.Equal(t, []string{base + "/a", base + "/c", base + "/b"}, s.Get(base))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	logger := zaptest.NewLogger(t)

	s, err := NewStore(path, logger)
	require.NoError(t, err)
	require.NoError(t, s.Append("https://example.com", "https://example.com/x"))

	reopened, err := NewStore(path, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/x"}, reopened.Get("https://example.com"))
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append("https://example.com", "https://example.com/x"))

	got := s.Get("https://example.com")
	got[0] = "mutated"
	assert.Equal(t, []string{"https://example.com/x"}, s.Get("https://example.com"))
}

func TestStore_CorruptFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStore(path, zaptest.NewLogger(t))
	require.Error(t, err)
}

func TestBaseURL(t *testing.T) {
	got, err := BaseURL("https://example.com:8443/signup?step=2#top")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com:8443", got)

	_, err = BaseURL("not a url at all\x00")
	require.Error(t, err)

	_, err = BaseURL("/relative/path")
	require.Error(t, err)
}
