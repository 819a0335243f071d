package cli_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/energyprophet/internal/narrative/cache"
)

func TestCacheClear(t *testing.T) {
	home := setupCLITest(t)
	dir := filepath.Join(home, "cache")

	store, err := cache.NewFileStore(dir, true, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Set(cache.Key("a"), "gemini-2.0-flash", "first"))
	require.NoError(t, store.Set(cache.Key("b"), "gemini-2.0-flash", "second"))

	out, err := executeCmd(t, "", "cache", "clear", "--expired")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 cached narrative(s)")

	out, err = executeCmd(t, "", "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2 cached narrative(s) from "+dir)

	n, err := store.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}
