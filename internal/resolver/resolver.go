// Package resolver decides how injectable types are constructed, populated
// and scoped, and turns those decisions into artifact plans.
package resolver

import (
	"fmt"

	"github.com/toyz/scopegen/internal/config"
	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/models"
	"github.com/toyz/scopegen/internal/symbols"
)

// Resolver holds the read-only inputs shared by every resolution step.
// Its methods report problems to the sink and keep going; they never
// abort on a single declaration.
type Resolver struct {
	source symbols.Source
	opts   *config.Options
	sink   errors.Sink
}

// New creates a resolver. A nil opts uses the defaults.
func New(source symbols.Source, opts *config.Options, sink errors.Sink) *Resolver {
	if opts == nil {
		opts = config.Default()
	}
	return &Resolver{source: source, opts: opts, sink: sink}
}

// Options returns the options the resolver runs with
func (r *Resolver) Options() *config.Options {
	return r.opts
}

// roleOf classifies an annotation, promoting configured identities to scopes
func (r *Resolver) roleOf(identity string) symbols.Role {
	role := r.source.Role(identity)
	if role == symbols.RoleOther && r.opts.IsAdditionalScope(identity) {
		return symbols.RoleScope
	}
	return role
}

// hasRole reports whether any annotation on the element has the role
func (r *Resolver) hasRole(e *models.Element, role symbols.Role) bool {
	for _, a := range e.Annotations {
		if r.roleOf(a.Identity) == role {
			return true
		}
	}
	return false
}

func (r *Resolver) fail(code errors.ErrorCode, e *models.Element, format string, args ...interface{}) *errors.Diagnostic {
	return r.report(errors.SeverityError, code, e, format, args...)
}

func (r *Resolver) warn(code errors.ErrorCode, e *models.Element, format string, args ...interface{}) *errors.Diagnostic {
	return r.report(errors.SeverityWarning, code, e, format, args...)
}

func (r *Resolver) note(code errors.ErrorCode, e *models.Element, format string, args ...interface{}) *errors.Diagnostic {
	return r.report(errors.SeverityNote, code, e, format, args...)
}

// policy reports a policy-gated violation as an error when crash is set
func (r *Resolver) policy(crash bool, code errors.ErrorCode, e *models.Element, format string, args ...interface{}) *errors.Diagnostic {
	if crash {
		return r.fail(code, e, format, args...)
	}
	return r.warn(code, e, format, args...)
}

func (r *Resolver) report(severity errors.Severity, code errors.ErrorCode, e *models.Element, format string, args ...interface{}) *errors.Diagnostic {
	d := &errors.Diagnostic{
		Code:     code,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
		Element:  e.Describe(),
		Loc:      e.Location,
	}
	if r.sink != nil {
		r.sink.Report(d)
	}
	return d
}
