package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_PutGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s, err := OpenFileStore(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, ok := s.Get("abc")
	assert.False(t, ok)

	s.Put("abc", "A greeting helper.")

	desc, ok := s.Get("abc")
	assert.True(t, ok)
	assert.Equal(t, "A greeting helper.", desc)
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	s, err := OpenFileStore(path)
	require.NoError(t, err)
	s.Put("fp1", "first")
	s.Put("fp2", "second")
	require.NoError(t, s.Close())

	s2, err := OpenFileStore(path)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	desc, ok := s2.Get("fp1")
	assert.True(t, ok)
	assert.Equal(t, "first", desc)

	desc, ok = s2.Get("fp2")
	assert.True(t, ok)
	assert.Equal(t, "second", desc)
}

func TestFileStore_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "cache.json")
	_ = os.MkdirAll(filepath.Dir(path), 0755)

	s, err := OpenFileStore(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.Equal(t, 0, s.Stats().Entries)
}

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s, err := OpenFileStore(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	assert.Equal(t, 0, s.Stats().Entries)

	// The store still works after recovering
	s.Put("fp", "desc")
	desc, ok := s.Get("fp")
	assert.True(t, ok)
	assert.Equal(t, "desc", desc)
}

func TestFileStore_Stats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s, err := OpenFileStore(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	s.Put("a", "1")
	s.Put("b", "2")

	s.Get("a")    // hit
	s.Get("a")    // hit
	s.Get("miss") // miss

	stats := s.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestFileStore_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s, err := OpenFileStore(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	s.Put("a", "1")
	require.NoError(t, s.Flush())
	require.NoError(t, s.Clear())

	_, ok := s.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Stats().Entries)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_PeriodicFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s, err := OpenFileStore(path, WithFlushEvery(2))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	s.Put("a", "1")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no flush before threshold")

	s.Put("b", "2")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries map[string]Entry
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Len(t, entries, 2)
}

func TestFileStore_ConcurrentPuts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s, err := OpenFileStore(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("fp-%d", i)
			s.Put(key, "desc")
			s.Get(key)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n, s.Stats().Entries)
}

func TestFileStore_OverwriteIsLastWriteWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s, err := OpenFileStore(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	s.Put("fp", "first")
	s.Put("fp", "second")

	desc, ok := s.Get("fp")
	assert.True(t, ok)
	assert.Equal(t, "second", desc)
	assert.Equal(t, 1, s.Stats().Entries)
}
