package config

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern keeps the source text next to the compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

func isPattern(entry string) bool {
	return strings.ContainsAny(entry, "*?[{")
}

func compilePattern(pattern string) (compiledPattern, error) {
	g, err := glob.Compile(filepath.ToSlash(pattern), '/')
	if err != nil {
		return compiledPattern{}, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return compiledPattern{pattern: pattern, glob: g}, nil
}

// match reports whether relPath matches. A leading "**/" also matches files
// in the root directory itself.
func (cp compiledPattern) match(relPath string) bool {
	if cp.glob.Match(relPath) {
		return true
	}
	if !strings.Contains(relPath, "/") && strings.HasPrefix(cp.pattern, "**/") {
		if g, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/'); err == nil {
			return g.Match(relPath)
		}
	}
	return false
}

// expandFiles replaces each pattern entry with the files under dir it
// matches, keeping plain entries as written. Order follows the entries;
// matches of one pattern are in lexical order and a file is listed once.
func expandFiles(dir string, entries, exclude []string) ([]string, error) {
	var excludes []compiledPattern
	for _, p := range exclude {
		cp, err := compilePattern(p)
		if err != nil {
			return nil, err
		}
		excludes = append(excludes, cp)
	}

	var files []string
	seen := make(map[string]bool)
	for _, entry := range entries {
		if !isPattern(entry) {
			if !seen[entry] {
				seen[entry] = true
				files = append(files, entry)
			}
			continue
		}

		cp, err := compilePattern(entry)
		if err != nil {
			return nil, err
		}
		matches, err := walkMatches(dir, cp, excludes)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

func walkMatches(dir string, cp compiledPattern, excludes []compiledPattern) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		for _, ex := range excludes {
			if ex.match(rel) {
				return nil
			}
		}
		if cp.match(rel) {
			matches = append(matches, filepath.FromSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("expanding %q: %w", cp.pattern, err)
	}
	return matches, nil
}
