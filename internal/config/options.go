// Package config holds the options that steer a resolution pass.
package config

import (
	"bytes"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/utils"
)

// DefaultFileName is the config file looked up in the working directory
const DefaultFileName = "scopegen.yaml"

// DefaultExcludes cover the standard library roots and the golang.org/x tree
var DefaultExcludes = []string{
	`^(archive|bufio|bytes|cmp|compress|container|context|crypto|database|debug|embed|encoding|errors|expvar|flag|fmt|go|hash|html|image|index|io|iter|log|maps|math|mime|net|os|path|plugin|reflect|regexp|runtime|slices|sort|strconv|strings|sync|syscall|testing|text|time|unicode|unique|unsafe)[./]`,
	`^golang\.org/x/`,
}

// Options are the recognised settings of a resolution pass
type Options struct {
	Excludes                                   []string `yaml:"excludes"`
	CrashWhenNoFactoryCanBeCreated             bool     `yaml:"crashWhenNoFactoryCanBeCreated"`
	CrashWhenInjectedMethodIsNotPackageVisible bool     `yaml:"crashWhenInjectedMethodIsNotPackageVisible"`
	AdditionalScopeAnnotations                 []string `yaml:"additionalScopeAnnotations"`
	DebugLogOriginatingElements                bool     `yaml:"debugLogOriginatingElements"`
	Parallelism                                int      `yaml:"parallelism"`

	excludes         []*regexp.Regexp
	additionalScopes map[string]bool
}

// Default returns options with the default excludes
func Default() *Options {
	return &Options{
		Excludes:    append([]string(nil), DefaultExcludes...),
		Parallelism: 1,
	}
}

// Load reads a YAML config file on top of the defaults.
// A missing file at the default location is not an error.
func Load(path string) (*Options, error) {
	opts := Default()
	if path == "" {
		path = DefaultFileName
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return opts, opts.Compile()
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapConfigurationError(path, "read", err)
	}
	if err := opts.decode(data); err != nil {
		return nil, errors.WrapConfigurationError(path, "parse", err)
	}
	if err := opts.Compile(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Parse decodes YAML config content on top of the defaults
func Parse(data []byte) (*Options, error) {
	opts := Default()
	if err := opts.decode(data); err != nil {
		return nil, errors.WrapConfigurationError("inline", "parse", err)
	}
	if err := opts.Compile(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *Options) decode(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(o)
}

// Merge overlays explicitly set values from other.
// Excludes and additional scope annotations are appended.
func (o *Options) Merge(other *Options) {
	if other == nil {
		return
	}
	o.Excludes = appendUnique(o.Excludes, other.Excludes...)
	o.AdditionalScopeAnnotations = appendUnique(o.AdditionalScopeAnnotations, other.AdditionalScopeAnnotations...)
	o.CrashWhenNoFactoryCanBeCreated = o.CrashWhenNoFactoryCanBeCreated || other.CrashWhenNoFactoryCanBeCreated
	o.CrashWhenInjectedMethodIsNotPackageVisible = o.CrashWhenInjectedMethodIsNotPackageVisible || other.CrashWhenInjectedMethodIsNotPackageVisible
	o.DebugLogOriginatingElements = o.DebugLogOriginatingElements || other.DebugLogOriginatingElements
	if other.Parallelism > 0 {
		o.Parallelism = other.Parallelism
	}
	o.excludes = nil
	o.additionalScopes = nil
}

// Compile validates the options and precompiles the exclude patterns
func (o *Options) Compile() error {
	if err := utils.ValidateEach("excludes", utils.All(
		utils.NotEmpty("excludes"),
		utils.IsRegex("excludes"),
	))(o.Excludes); err != nil {
		return errors.WrapConfigurationError("excludes", "validate", err)
	}
	if err := utils.ValidateEach("additionalScopeAnnotations",
		utils.IsQualifiedName("additionalScopeAnnotations"))(o.AdditionalScopeAnnotations); err != nil {
		return errors.WrapConfigurationError("additionalScopeAnnotations", "validate", err)
	}
	if err := utils.NotNegative("parallelism")(o.Parallelism); err != nil {
		return errors.WrapConfigurationError("parallelism", "validate", err)
	}

	o.excludes = make([]*regexp.Regexp, 0, len(o.Excludes))
	for _, pattern := range o.Excludes {
		o.excludes = append(o.excludes, regexp.MustCompile(pattern))
	}
	o.additionalScopes = make(map[string]bool, len(o.AdditionalScopeAnnotations))
	for _, identity := range o.AdditionalScopeAnnotations {
		o.additionalScopes[identity] = true
	}
	return nil
}

// IsExcluded reports whether a fully-qualified type name matches an exclude pattern
func (o *Options) IsExcluded(identity string) bool {
	if o.excludes == nil {
		if err := o.Compile(); err != nil {
			return false
		}
	}
	for _, re := range o.excludes {
		if re.MatchString(identity) {
			return true
		}
	}
	return false
}

// IsAdditionalScope reports whether an annotation identity is configured as scope-defining
func (o *Options) IsAdditionalScope(identity string) bool {
	if o.additionalScopes == nil {
		if err := o.Compile(); err != nil {
			return false
		}
	}
	return o.additionalScopes[identity]
}

// Workers returns the effective number of resolution workers
func (o *Options) Workers() int {
	if o.Parallelism < 1 {
		return 1
	}
	return o.Parallelism
}

func appendUnique(dst []string, values ...string) []string {
	seen := make(map[string]bool, len(dst))
	for _, v := range dst {
		seen[v] = true
	}
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			dst = append(dst, v)
		}
	}
	return dst
}
