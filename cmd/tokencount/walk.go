package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
)

// isInGitWorkTree shells out to git exactly as the reference implementation
// does, rather than reimplementing its repository-discovery rules.
func isInGitWorkTree(dir string) bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = dir
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}

// loadGitignore compiles dir/.gitignore if present. A missing file just
// means nothing is ignored by it; that's not an error.
func loadGitignore(dir string) *gitignore.GitIgnore {
	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	m, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return m
}

// expandDir walks dir recursively, skipping .git, anything .gitignore'd
// (when useGitignore and dir is a git work tree), and binary files.
func expandDir(dir string, useGitignore bool) []string {
	var ignore *gitignore.GitIgnore
	if useGitignore && isInGitWorkTree(dir) {
		ignore = loadGitignore(dir)
	}

	var files []string
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr == nil && ignore != nil && ignore.MatchesPath(rel) {
			return nil
		}
		if isBinary(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files
}

// matchesIgnore reports whether file (relative to baseDir) matches one of
// the --ignore glob patterns, via doublestar so "**" behaves the way a
// reference glob_match implementation intends.
func matchesIgnore(file, baseDir string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(baseDir, file)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(file)

	for _, pat := range patterns {
		target := base
		if strings.Contains(pat, "/") {
			target = rel
		}
		if ok, _ := doublestar.Match(pat, target); ok {
			return true
		}
		if !strings.Contains(pat, "*") && (rel == pat || strings.HasPrefix(rel, pat+"/")) {
			return true
		}
	}
	return false
}

// expandPaths turns the CLI's positional arguments into a flat list of
// readable, non-binary file paths, honoring -r, gitignore and --ignore.
func expandPaths(paths []string, recursive, useGitignore bool, ignorePatterns []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, &cliError{msg: p + ": No such file or directory"}
		}
		if info.IsDir() {
			if !recursive {
				return nil, &cliError{msg: p + ": Is a directory (use -r to recurse)"}
			}
			for _, f := range expandDir(p, useGitignore) {
				if !matchesIgnore(f, p, ignorePatterns) {
					files = append(files, f)
				}
			}
			continue
		}
		if isBinary(p) {
			continue
		}
		files = append(files, p)
	}
	return files, nil
}

// cliError is a plain user-facing error: the CLI prints its message and
// exits non-zero, with no Go-specific wrapping noise.
type cliError struct{ msg string }

func (e *cliError) Error() string { return e.msg }
