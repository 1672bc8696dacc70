package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/scopegen/internal/errors"
)

// DirectoryScanner expands package patterns into directories holding Go files
type DirectoryScanner struct {
	root string
}

// NewDirectoryScanner creates a scanner resolving relative patterns against root
func NewDirectoryScanner(root string) *DirectoryScanner {
	return &DirectoryScanner{root: root}
}

// ScanDirectories returns the directories matched by the patterns, sorted.
// Supports Go-style patterns like "./..." for recursive scanning.
func (s *DirectoryScanner) ScanDirectories(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...") || pattern == "..."
		baseDir := strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
		if baseDir == "" {
			baseDir = "."
		}
		if !filepath.IsAbs(baseDir) && s.root != "" {
			baseDir = filepath.Join(s.root, baseDir)
		}

		cleanPath, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, errors.WrapWithOperation("process", fmt.Sprintf("path resolution %s", baseDir), err)
		}

		if !recursive {
			if hasGoFiles(cleanPath) {
				add(cleanPath)
			}
			continue
		}

		err = filepath.WalkDir(cleanPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// unreadable directories are skipped
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if path != cleanPath && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			if hasGoFiles(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.WrapFileSystemError("scan", cleanPath, err)
		}
	}

	sort.Strings(dirs)
	return dirs, nil
}

// skipDir matches the directories the go command ignores for ./...
func skipDir(name string) bool {
	return name == "vendor" || name == "testdata" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func hasGoFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".go") {
			return true
		}
	}
	return false
}
