package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/corpeningc/reconcile/internal/git/gittest"
	"github.com/corpeningc/reconcile/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestLoader(dir string) *Loader {
	return &Loader{WorkDir: dir}
}

func TestLoad_Formats(t *testing.T) {
	want := plan.Rules{
		DeleteFileGlobs:      []string{"build/**", "*.orig"},
		OurFiles:             []string{"path/*"},
		AcceptTheirDeletions: []string{"vendor/**"},
	}

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: ".reconcile.yaml",
			content: `deleteFileGlobs: ["build/**", "*.orig"]
conflicts:
  ourFiles: ["path/*"]
  acceptTheirDeletions: ["vendor/**"]
`,
		},
		{
			name: "toml",
			file: ".reconcile.toml",
			content: `deleteFileGlobs = ["build/**", "*.orig"]

[conflicts]
ourFiles = ["path/*"]
acceptTheirDeletions = ["vendor/**"]
`,
		},
		{
			name: "json",
			file: ".reconcile.json",
			content: `{"deleteFileGlobs": ["build/**", "*.orig"],
 "conflicts": {"ourFiles": ["path/*"], "acceptTheirDeletions": ["vendor/**"]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, tt.file, tt.content)

			cfg, err := newTestLoader(dir).Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, want, cfg.Rules())
			assert.Equal(t, "git", cfg.GitBinary)
			assert.Equal(t, path, cfg.Source)
		})
	}
}

func TestLoad_LookupOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".reconcile.json", `{"deleteFileGlobs": ["from-json"], "conflicts": {"ourFiles": [], "acceptTheirDeletions": []}}`)
	yamlPath := writeFile(t, dir, ".reconcile.yaml", "deleteFileGlobs: [from-yaml]\nconflicts: {ourFiles: [], acceptTheirDeletions: []}\n")

	cfg, err := newTestLoader(dir).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, yamlPath, cfg.Source)
	assert.Equal(t, []string{"from-yaml"}, cfg.DeleteFileGlobs)
}

func TestLoad_Fallback(t *testing.T) {
	dir := t.TempDir()
	global := writeFile(t, t.TempDir(), "config.yaml", "deleteFileGlobs: []\nconflicts: {ourFiles: [a], acceptTheirDeletions: []}\n")

	l := newTestLoader(dir)
	l.Fallbacks = []string{global}
	cfg, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, cfg.Conflicts.OurFiles)
}

func TestLoad_ExplicitPath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.yml", "deleteFileGlobs: [x]\nconflicts: {ourFiles: [], acceptTheirDeletions: []}\n")

	l := newTestLoader(t.TempDir())
	l.Path = path
	cfg, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, cfg.DeleteFileGlobs)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	l := newTestLoader(t.TempDir())
	l.Path = filepath.Join(t.TempDir(), "nope.yaml")

	_, err := l.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_NoConfig(t *testing.T) {
	_, err := newTestLoader(t.TempDir()).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoConfig)
}

func TestLoad_MissingKeys(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
	}{
		{"no delete globs", "conflicts: {ourFiles: [], acceptTheirDeletions: []}\n", "deleteFileGlobs"},
		{"no conflicts", "deleteFileGlobs: []\n", "conflicts.ourFiles"},
		{"no accept list", "deleteFileGlobs: []\nconflicts: {ourFiles: []}\n", "conflicts.acceptTheirDeletions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, ".reconcile.yaml", tt.content)

			_, err := newTestLoader(dir).Load(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingKey)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_InvalidGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".reconcile.yaml", "deleteFileGlobs: []\nconflicts: {ourFiles: [\"[a-\"], acceptTheirDeletions: []}\n")

	_, err := newTestLoader(dir).Load(context.Background())
	assert.ErrorIs(t, err, ErrInvalidGlob)
}

func TestLoad_EnvOverridesGitBinary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".reconcile.yaml", "deleteFileGlobs: []\nconflicts: {ourFiles: [], acceptTheirDeletions: []}\n")
	t.Setenv("RECONCILE_GIT_BINARY", "/opt/git/bin/git")
	t.Setenv("RECONCILE_UNRELATED", "ignored")

	cfg, err := newTestLoader(dir).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/opt/git/bin/git", cfg.GitBinary)
}

func TestLoad_Nix(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reconcile.nix", "{ }")
	abs, err := filepath.Abs(path)
	require.NoError(t, err)

	runner := gittest.NewFakeRunner().WithOutput(
		[]string{"nix", "eval", "--json", "--file", abs},
		`{"deleteFileGlobs":["result"],"conflicts":{"ourFiles":["flake.lock"],"acceptTheirDeletions":[]}}`,
	)
	l := newTestLoader(dir)
	l.Runner = runner

	cfg, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"result"}, cfg.DeleteFileGlobs)
	assert.Equal(t, []string{"flake.lock"}, cfg.Conflicts.OurFiles)
	assert.Len(t, runner.Calls, 1)
}

func TestLoad_NixEvalFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "reconcile.nix", "{ broken")
	abs, err := filepath.Abs(path)
	require.NoError(t, err)

	l := newTestLoader(dir)
	l.Runner = gittest.NewFakeRunner().WithExitCode([]string{"nix", "eval", "--json", "--file", abs}, 1, "error: syntax error")

	_, err = l.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evaluate")
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.ini", "x=1")
	l := newTestLoader(t.TempDir())
	l.Path = path

	_, err := l.Load(context.Background())
	assert.ErrorContains(t, err, "unsupported file type")
}
