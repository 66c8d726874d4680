package internal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oasdoc "github.com/reoring/oasdoc"
	"github.com/reoring/oasdoc/oas"
)

const routes = `
/**
 * @route GET /pets/{id}
 * @group pets - Pet store
 * @param {integer} path.id
 * @returns {Pet} 200
 */

/**
 * @route DELETE /pets/{id}
 * @param {string} cookie.session
 */
`

func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pets.js"), []byte(routes), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models.yaml"), []byte("Pet:\n  name: STRING\n"), 0o644))
	return dir
}

func run(t *testing.T, env map[string]string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), args, &stdout, &stderr, env)
	return stdout.String(), stderr.String(), err
}

func TestGenerate_ToStdout(t *testing.T) {
	dir := project(t)
	out, logs, err := run(t, map[string]string{},
		"generate", "--title", "Pets", "--api-version", "1.0.0",
		"--base-dir", dir, "--files", "*.js", "--models", "models.yaml", "-f", "json")
	require.NoError(t, err)

	doc, err := oas.Decode(bytes.NewBufferString(out))
	require.NoError(t, err)
	assert.Equal(t, "Pets", doc.Info.Title)
	_, ok := doc.Paths.Get("/pets/{id}", "get")
	assert.True(t, ok)
	assert.Contains(t, doc.Components.Schemas, "Pet")

	assert.Contains(t, logs, "oasdoc: skipped pets.js#1 (delete /pets/{id})")
	assert.NotContains(t, logs, "processed", "verbose logs are off by default")
}

func TestGenerate_EnvironmentAndOutputFile(t *testing.T) {
	dir := project(t)
	target := filepath.Join(dir, "out", "openapi.yaml")
	env := map[string]string{
		"OASDOC_TITLE":    "From env",
		"OASDOC_VERSION":  "2.0.0",
		"OASDOC_BASE_DIR": dir,
		"OASDOC_FILES":    "*.js",
		"OASDOC_MODELS":   "models.yaml",
	}
	_, logs, err := run(t, env, "generate", "-v", "-o", target, "--title", "From flag")
	require.NoError(t, err)
	assert.Contains(t, logs, "processed pets.js")
	assert.Contains(t, logs, "wrote "+target+" (yaml)")

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	doc, err := oas.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, "From flag", doc.Info.Title, "flags override the environment")
	assert.Equal(t, "2.0.0", doc.Info.Version)
}

func TestGenerate_StrictFailsOnSkippedStreams(t *testing.T) {
	dir := project(t)
	_, _, err := run(t, map[string]string{},
		"generate", "--strict", "--title", "Pets", "--api-version", "1",
		"--base-dir", dir, "--files", "*.js", "--models", "models.yaml")
	ds, ok := oasdoc.AsDiagnostics(err)
	require.True(t, ok, "got %v", err)
	require.Len(t, ds, 1)
	assert.ErrorIs(t, ds[0], oasdoc.ErrInvalidLocation)
}

func TestGenerate_MissingConfiguration(t *testing.T) {
	_, _, err := run(t, map[string]string{}, "generate")
	require.ErrorIs(t, err, oasdoc.ErrMissingConfiguration)
}

func TestCheck(t *testing.T) {
	dir := project(t)
	cfg := filepath.Join(dir, "oasdoc.yaml")
	body := "info: {title: Pets, version: '1'}\nbaseDir: " + dir + "\nfiles: ['*.js']\nmodels: [models.yaml]\n"
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o644))

	_, logs, err := run(t, map[string]string{}, "check", "-c", cfg)
	require.Error(t, err)
	assert.Contains(t, logs, "invalid_location")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "pets.js"), []byte("/** @route GET /ok */"), 0o644))
	out, _, err := run(t, map[string]string{}, "check", "-c", cfg)
	require.NoError(t, err)
	assert.Equal(t, "1 files, 1 paths: ok\n", out)
}
