package cli

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/generator"
	"github.com/toyz/scopegen/internal/utils"
)

// Cleaner removes generated files
type Cleaner struct {
	scanner     *DirectoryScanner
	diagnostics *utils.DiagnosticSystem
}

// NewCleaner creates a cleaner resolving patterns against root
func NewCleaner(root string, diagnostics *utils.DiagnosticSystem) *Cleaner {
	if diagnostics == nil {
		diagnostics = utils.NewQuietDiagnostics()
	}
	return &Cleaner{
		scanner:     NewDirectoryScanner(root),
		diagnostics: diagnostics,
	}
}

// CleanGeneratedFiles removes the generated file from every matched directory.
// Files without the generated header are left alone. With dryRun nothing is
// removed. The returned paths are the files that were (or would be) removed.
func (c *Cleaner) CleanGeneratedFiles(patterns []string, dryRun bool) ([]string, error) {
	dirs, err := c.scanner.ScanDirectories(patterns)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, dir := range dirs {
		file := filepath.Join(dir, generator.FileName)
		ok, err := isGenerated(file)
		if err != nil {
			return removed, errors.WrapFileSystemError("read", file, err)
		}
		if !ok {
			continue
		}

		if !dryRun {
			if err := os.Remove(file); err != nil {
				return removed, errors.WrapFileSystemError("remove", file, err)
			}
		}
		c.diagnostics.Verbose("removed %s", file)
		removed = append(removed, file)
	}
	return removed, nil
}

// isGenerated reports whether file exists and starts with the generated header
func isGenerated(file string) (bool, error) {
	f, err := os.Open(file)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return false, scanner.Err()
	}
	return strings.TrimSpace(scanner.Text()) == generator.Header, nil
}
