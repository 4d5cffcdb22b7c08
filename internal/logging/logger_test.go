package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledByDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Initialize(dir))
	t.Cleanup(CloseAll)

	Boot("should not be written")

	_, err := os.Stat(filepath.Join(dir, "logs"))
	assert.True(t, os.IsNotExist(err), "logs dir must not exist in production mode")
}

func TestDebugModeWritesCategoryFile(t *testing.T) {
	dir := t.TempDir()
	SetOptions(dir, Options{DebugMode: true})
	t.Cleanup(func() {
		CloseAll()
		SetOptions(dir, Options{})
	})

	Gateway("hello %s", "world")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "gateway")

	data, err := os.ReadFile(filepath.Join(dir, "logs", entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello world")
}

func TestCategoryFilter(t *testing.T) {
	dir := t.TempDir()
	SetOptions(dir, Options{
		DebugMode:  true,
		Categories: map[string]bool{"audio": false},
	})
	t.Cleanup(func() {
		CloseAll()
		SetOptions(dir, Options{})
	})

	Audio("muted")
	Timeline("kept")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "timeline")
}

func TestInitializeReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := `{"logging":{"debug_mode":true}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(cfg), 0o644))

	require.NoError(t, Initialize(dir))
	t.Cleanup(func() {
		CloseAll()
		SetOptions(dir, Options{})
	})

	_, err := os.Stat(filepath.Join(dir, "logs"))
	assert.NoError(t, err, "logs dir should exist in debug mode")
}
