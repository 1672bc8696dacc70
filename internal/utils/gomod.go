package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// Module describes the go.mod enclosing a directory
type Module struct {
	Path      string // module path
	Root      string // directory holding go.mod
	GoVersion string // go directive, empty when absent
}

// ErrNoModule is returned when no go.mod encloses the start directory
var ErrNoModule = errors.New("go.mod file not found")

// FindModule walks up from dir to the nearest go.mod and parses it
func FindModule(dir string) (*Module, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	for {
		file := filepath.Join(current, "go.mod")
		content, err := os.ReadFile(file)
		switch {
		case err == nil:
			return parseModule(file, content)
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return nil, ErrNoModule
		}
		current = parent
	}
}

func parseModule(file string, content []byte) (*Module, error) {
	mf, err := modfile.ParseLax(file, content, nil)
	if err != nil {
		return nil, err
	}
	if mf.Module == nil {
		return nil, fmt.Errorf("%s has no module directive", file)
	}
	m := &Module{Path: mf.Module.Mod.Path, Root: filepath.Dir(file)}
	if mf.Go != nil {
		m.GoVersion = mf.Go.Version
	}
	return m, nil
}
