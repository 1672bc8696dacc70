package models

import (
	"strings"

	"github.com/toyz/scopegen/internal/errors"
)

// Annotation is a marker attached to a declaration
type Annotation struct {
	Identity string                // fully-qualified annotation identity
	Value    string                // positional value, e.g. the name of a Named qualifier
	Params   map[string]string     // named parameters
	Location errors.SourceLocation // where the directive was written
}

// Param returns a named parameter with an optional default
func (a Annotation) Param(name string, defaultValue ...string) string {
	if v, ok := a.Params[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// Values splits a comma separated positional value
func (a Annotation) Values() []string {
	if a.Value == "" {
		return nil
	}
	parts := strings.Split(a.Value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Annotations is the ordered multiset of annotations on a declaration
type Annotations []Annotation

// Has reports whether an annotation with the identity is present
func (as Annotations) Has(identity string) bool {
	_, ok := as.Find(identity)
	return ok
}

// Find returns the first annotation with the identity
func (as Annotations) Find(identity string) (Annotation, bool) {
	for _, a := range as {
		if a.Identity == identity {
			return a, true
		}
	}
	return Annotation{}, false
}

// All returns every annotation with the identity
func (as Annotations) All(identity string) []Annotation {
	var out []Annotation
	for _, a := range as {
		if a.Identity == identity {
			out = append(out, a)
		}
	}
	return out
}
