package errors

import "fmt"

// WrapWithOperation wraps a failure of operation on item without a specific code
func WrapWithOperation(operation, item string, cause error) *BaseError {
	return Wrap(UnknownErrorCode, fmt.Sprintf("failed to %s %s", operation, item), cause)
}

// WrapFileSystemError wraps an I/O failure on path
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	return Wrap(FileSystemErrorCode, fmt.Sprintf("cannot %s %s", operation, path), cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapGenerateError wraps a render failure for the package item
func WrapGenerateError(item string, cause error) *BaseError {
	return Wrap(GenerationErrorCode, "failed to generate "+item, cause).
		WithContext("target", item)
}

// WrapConfigurationError wraps a failure to operation the option source
func WrapConfigurationError(source, operation string, cause error) *BaseError {
	return Wrap(ConfigurationErrorCode, fmt.Sprintf("cannot %s options from %s", operation, source), cause).
		WithContext("source", source).
		WithContext("operation", operation)
}

// WrapLoadError wraps a failure of the package loader
func WrapLoadError(patterns []string, cause error) *BaseError {
	return Wrap(LoadErrorCode, "failed to load packages", cause).
		WithContext("patterns", patterns).
		WithSuggestion("Run 'go build' on the patterns to see the underlying compiler errors")
}
