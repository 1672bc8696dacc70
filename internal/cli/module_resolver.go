package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/utils"
)

// ModuleInfo identifies the main module of a run
type ModuleInfo = utils.Module

// ModuleResolver handles resolving Go module information
type ModuleResolver struct{}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{}
}

// Resolve finds the module containing dir, the working directory when dir is empty
func (r *ModuleResolver) Resolve(dir string) (*ModuleInfo, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = wd
	}

	module, err := utils.FindModule(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ConfigurationErrorCode, "failed to determine module", err).
			WithContext("dir", dir).
			WithSuggestions(
				"Run scopegen inside a Go module",
				"Create one with 'go mod init'",
			)
	}
	return module, nil
}

// BuildPackagePath builds the import path of a package directory inside the module
func (r *ModuleResolver) BuildPackagePath(module *ModuleInfo, packageDir string) (string, error) {
	absPackageDir, err := filepath.Abs(packageDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve package directory: %w", err)
	}
	root, err := filepath.Abs(module.Root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve module root: %w", err)
	}

	relPath, err := filepath.Rel(root, absPackageDir)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}
	importPath := filepath.ToSlash(relPath)
	if importPath == ".." || strings.HasPrefix(importPath, "../") {
		return "", fmt.Errorf("%s is outside module %s", packageDir, module.Path)
	}

	if importPath == "." {
		return module.Path, nil
	}
	return module.Path + "/" + importPath, nil
}
