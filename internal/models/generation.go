package models

// GeneratedFile represents one rendered source file
type GeneratedFile struct {
	PackageName string   // name of the package
	PackagePath string   // import path of the package
	FilePath    string   // path where the file should be written
	Content     string   // generated Go code content
	Owners      []string // identities of the owner types rendered in the file
}
