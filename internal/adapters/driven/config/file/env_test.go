package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_ReadsConfigDirFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, EnvFileName), []byte("STUDYHALL_TEST_ENV_MODEL=llama3.2\n"), 0600)
	require.NoError(t, err)
	t.Setenv("STUDYHALL_TEST_ENV_MODEL", "")
	require.NoError(t, os.Unsetenv("STUDYHALL_TEST_ENV_MODEL"))

	loaded, err := LoadEnv(dir)

	require.NoError(t, err)
	assert.Contains(t, loaded, filepath.Join(dir, EnvFileName))
	assert.Equal(t, "llama3.2", os.Getenv("STUDYHALL_TEST_ENV_MODEL"))
}

func TestLoadEnv_DoesNotOverrideExisting(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, EnvFileName), []byte("STUDYHALL_TEST_ENV_PROVIDER=openai\n"), 0600)
	require.NoError(t, err)
	t.Setenv("STUDYHALL_TEST_ENV_PROVIDER", "anthropic")

	_, err = LoadEnv(dir)

	require.NoError(t, err)
	assert.Equal(t, "anthropic", os.Getenv("STUDYHALL_TEST_ENV_PROVIDER"))
}

func TestLoadEnv_MissingFilesAreIgnored(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "absent")

	loaded, err := LoadEnv(dir)

	require.NoError(t, err)
	assert.NotContains(t, loaded, filepath.Join(dir, EnvFileName))
}

func TestLoadEnv_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be makes the read fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, EnvFileName), 0700))

	_, err := LoadEnv(dir)

	assert.Error(t, err)
}
