package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

type ignoreCacheEntry struct {
	patterns []string
	modTime  time.Time
}

var (
	ignoreCache = make(map[string]*ignoreCacheEntry)
	cacheMutex  sync.RWMutex
)

// GetIgnorePatterns reads the patterns from the .docgen-ignore file in cwd.
// A missing file yields an empty pattern list. Parsed patterns are cached by
// file modification time.
func GetIgnorePatterns(cwd string) ([]string, error) {
	ignorePath := filepath.Join(cwd, ".docgen-ignore")

	fileInfo, err := os.Stat(ignorePath)
	if os.IsNotExist(err) {
		return []string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error checking .docgen-ignore: %w", err)
	}

	cacheMutex.RLock()
	if cached, exists := ignoreCache[ignorePath]; exists {
		if fileInfo.ModTime().Equal(cached.modTime) {
			cacheMutex.RUnlock()
			return cached.patterns, nil
		}
	}
	cacheMutex.RUnlock()

	patterns, err := readIgnoreFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .docgen-ignore: %w", err)
	}

	cacheMutex.Lock()
	ignoreCache[ignorePath] = &ignoreCacheEntry{patterns: patterns, modTime: fileInfo.ModTime()}
	cacheMutex.Unlock()

	return patterns, nil
}

func readIgnoreFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var patterns []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, nil
}

// defaultIgnoredParts lists path components and suffixes that are never
// documentable source.
var defaultIgnoredParts = []string{
	".git",
	".svn",
	".hg",
	".idea",
	".vscode",
	".cache",
	"node_modules",
	"vendor",
	"dist",
	"build",
	"target",
	"bin",
	"obj",
	"__pycache__",
	".venv",
	"*.min.js",
	"*.lock",
	"*.sum",
	"*.exe",
	"*.dll",
	"*.so",
	"*.log",
	"*.png",
	"*.jpg",
	"*.jpeg",
	"*.gif",
	"*.pdf",
	"*.zip",
}

// IsDefaultIgnored reports whether any component of path matches the built-in
// ignore list.
func IsDefaultIgnored(path string) bool {
	parts := strings.Split(path, string(filepath.Separator))
	for _, part := range parts {
		part = strings.ToLower(part)
		for _, pattern := range defaultIgnoredParts {
			if strings.HasPrefix(pattern, "*") {
				if strings.HasSuffix(part, strings.TrimPrefix(pattern, "*")) {
					return true
				}
			} else if part == pattern {
				return true
			}
		}
	}
	return false
}

// IsIgnored checks path against user-supplied ignore patterns. Patterns use
// doublestar globs, so "**" crosses directory separators; patterns ending in
// "/" ignore whole directory subtrees.
func IsIgnored(path string, patterns []string) bool {
	path = filepath.ToSlash(path)
	for _, pattern := range patterns {
		if match, _ := doublestar.Match(pattern, path); match {
			return true
		}
		if match, _ := doublestar.Match(pattern, filepath.Base(path)); match {
			return true
		}
		if strings.HasSuffix(pattern, "/") && strings.HasPrefix(path, pattern) {
			return true
		}
	}
	return false
}
