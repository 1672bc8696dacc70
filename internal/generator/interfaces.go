package generator

import "github.com/toyz/scopegen/internal/models"

// CodeGenerator renders artifact plans into generated source files
type CodeGenerator interface {
	Generate(plans []*models.GeneratedArtifactPlan, dirOf func(pkgPath string) (string, bool)) ([]*models.GeneratedFile, error)
	GenerateFile(pkgPath, pkgName, dir string, plans []*models.GeneratedArtifactPlan) (*models.GeneratedFile, error)
}

var _ CodeGenerator = (*Generator)(nil)
