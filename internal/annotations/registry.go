package annotations

import (
	"fmt"
	"sync"

	"github.com/toyz/scopegen/internal/utils"
)

// AnnotationRegistry defines the interface for managing directive schemas
type AnnotationRegistry interface {
	// Register a new directive keyword with its schema
	Register(schema AnnotationSchema) error

	// GetSchema retrieves the schema for a keyword
	GetSchema(keyword string) (AnnotationSchema, error)

	// ListKeywords returns all registered keywords in sorted order
	ListKeywords() []string

	// IsRegistered checks if a keyword is registered
	IsRegistered(keyword string) bool
}

// registry is the concrete implementation of AnnotationRegistry
type registry struct {
	schemas *utils.BaseRegistry[string, AnnotationSchema]
}

// NewRegistry creates an empty directive registry
func NewRegistry() AnnotationRegistry {
	schemas := utils.NewBaseRegistry[string, AnnotationSchema]("directive", "directive keyword")
	schemas.SetValidator(utils.ChainValidators[string, AnnotationSchema](
		utils.NotEmptyKeyValidator[AnnotationSchema]("directive keyword"),
		utils.NoDuplicateValidator[string, AnnotationSchema]("directive keyword"),
		validateSchema,
	))
	return &registry{schemas: schemas}
}

var (
	defaultRegistry     AnnotationRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the registry holding the built-in schemas
func DefaultRegistry() AnnotationRegistry {
	defaultRegistryOnce.Do(func() {
		r := NewRegistry()
		for _, schema := range BuiltinSchemas {
			if err := r.Register(schema); err != nil {
				panic(fmt.Sprintf("failed to register built-in directive %s: %v", schema.Keyword, err))
			}
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Register adds a directive schema to the registry
func (r *registry) Register(schema AnnotationSchema) error {
	return r.schemas.Register(schema.Keyword, schema)
}

// GetSchema retrieves the schema for a keyword
func (r *registry) GetSchema(keyword string) (AnnotationSchema, error) {
	return r.schemas.GetOrError(keyword)
}

// ListKeywords returns all registered keywords in sorted order
func (r *registry) ListKeywords() []string {
	return utils.SortedKeys(r.schemas)
}

// IsRegistered checks if a keyword is registered
func (r *registry) IsRegistered(keyword string) bool {
	return r.schemas.Has(keyword)
}

// validateSchema performs basic validation on a schema
func validateSchema(keyword string, schema AnnotationSchema, _ map[string]AnnotationSchema) error {
	if len(schema.Targets) == 0 {
		return fmt.Errorf("directive %s declares no targets", keyword)
	}
	if schema.Positional.Max >= 0 && schema.Positional.Max < schema.Positional.Min {
		return fmt.Errorf("directive %s allows at most %d positional arguments but requires %d",
			keyword, schema.Positional.Max, schema.Positional.Min)
	}
	for paramName, paramSpec := range schema.Parameters {
		if paramName == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}
		if paramSpec.Type < StringType || paramSpec.Type > IntType {
			return fmt.Errorf("invalid parameter type for %s: %d", paramName, paramSpec.Type)
		}
	}
	return nil
}
