package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults without a file", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, ".", cfg.Project.Root)
		assert.Contains(t, cfg.Scan.Include, "**/*.go")
		assert.True(t, cfg.Scan.UseGitignore)
	})

	t.Run("yaml over defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "typegraph.yml")
		require.NoError(t, os.WriteFile(path, []byte(`
project:
  root: ./src
  package: example.com/app
scan:
  include: ["pkg/**/*.go"]
snapshot:
  path: out.db
`), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "./src", cfg.Project.Root)
		assert.Equal(t, "example.com/app", cfg.Project.Package)
		assert.Equal(t, []string{"pkg/**/*.go"}, cfg.Scan.Include)
		assert.Equal(t, "out.db", cfg.Snapshot.Path)
		assert.NotEmpty(t, cfg.Scan.Exclude, "unset sections keep their defaults")
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("TYPEGRAPH_ROOT", "/elsewhere")
		t.Setenv("TYPEGRAPH_SNAPSHOT", "env.db")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "/elsewhere", cfg.Project.Root)
		assert.Equal(t, "env.db", cfg.Snapshot.Path)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
		assert.Error(t, err)
	})
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	write("a.go", "package a")
	write("a_test.go", "package a")
	write("sub/b.go", "package sub")
	write("sub/notes.md", "n/a")
	write("gen/c.go", "package gen")
	write(".gitignore", "gen/\n")

	cfg := Default()
	cfg.Project.Root = root

	files, err := cfg.ScanFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go", filepath.Join("sub", "b.go")}, files)

	t.Run("gitignore can be disabled", func(t *testing.T) {
		cfg := Default()
		cfg.Project.Root = root
		cfg.Scan.UseGitignore = false
		files, err := cfg.ScanFiles()
		require.NoError(t, err)
		assert.Contains(t, files, filepath.Join("gen", "c.go"))
	})

	t.Run("grouping by directory", func(t *testing.T) {
		groups := GroupByDir(files)
		assert.Equal(t, []string{"a.go"}, groups["."])
		assert.Equal(t, []string{filepath.Join("sub", "b.go")}, groups["sub"])
	})
}
