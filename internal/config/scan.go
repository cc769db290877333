package config

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// ScanFiles walks the project root and returns the relative paths of source
// files that pass the include/exclude patterns and, when enabled, the root's
// .gitignore. Patterns are doublestar globs matched against slash-separated
// paths relative to the root.
func (c *Config) ScanFiles() ([]string, error) {
	root := c.Project.Root
	if root == "" {
		root = "."
	}

	var gi *ignore.GitIgnore
	if c.Scan.UseGitignore {
		if compiled, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			gi = compiled
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		slashRel := filepath.ToSlash(rel)

		if d.IsDir() {
			name := d.Name()
			if name == ".git" || name[0] == '_' {
				return filepath.SkipDir
			}
			if gi != nil && gi.MatchesPath(slashRel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if gi != nil && gi.MatchesPath(slashRel) {
			return nil
		}
		keep, err := matchAny(c.Scan.Include, slashRel)
		if err != nil {
			return err
		}
		if !keep {
			return nil
		}
		drop, err := matchAny(c.Scan.Exclude, slashRel)
		if err != nil {
			return err
		}
		if drop {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	slog.Debug("scan complete", "root", root, "files", len(files))
	return files, nil
}

func matchAny(patterns []string, path string) (bool, error) {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, path)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// GroupByDir buckets scanned files by their directory, preserving the sorted
// file order inside each bucket. Loaders consume one directory as one package.
func GroupByDir(files []string) map[string][]string {
	out := make(map[string][]string)
	for _, f := range files {
		dir := filepath.Dir(f)
		out[dir] = append(out[dir], f)
	}
	return out
}
