package database

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsSourceURLRelativePath(t *testing.T) {
	url, err := migrationsSourceURL("db/migrations")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "file://"))
	path := strings.TrimPrefix(url, "file://")
	assert.True(t, filepath.IsAbs(filepath.FromSlash(path)))
	assert.True(t, strings.HasSuffix(path, "db/migrations"))
}

func TestMigrationsSourceURLAbsolutePath(t *testing.T) {
	abs := t.TempDir()
	url, err := migrationsSourceURL(abs)
	require.NoError(t, err)
	assert.Equal(t, "file://"+filepath.ToSlash(abs), url)
}
