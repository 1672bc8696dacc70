package symbols

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/scopegen/internal/errors"
	"github.com/toyz/scopegen/internal/models"
)

// A manifest describes declarations without Go sources:
//
//	package: example.com/app
//	annotations:
//	  - name: RequestScope
//	    scope: true
//	types:
//	  - name: Widget
//	    annotations: [singleton]
//	    constructors:
//	      - annotations: [inject]
//	        params:
//	          - {name: s, type: "Lazy[string]"}
//
// Unqualified names resolve against the manifest package. Built-in annotations
// may be written with their directive keyword.
type manifestDoc struct {
	Package     string          `yaml:"package"`
	Annotations []annotationDef `yaml:"annotations"`
	Types       []typeDoc       `yaml:"types"`
}

type annotationDef struct {
	Name      string `yaml:"name"`
	Scope     bool   `yaml:"scope"`
	Qualifier bool   `yaml:"qualifier"`
	Retention string `yaml:"retention"`
	Line      int    `yaml:"-"`
}

type annotationDoc struct {
	Name   string            `yaml:"name"`
	Value  string            `yaml:"value"`
	Params map[string]string `yaml:"params"`
	Line   int               `yaml:"-"`
}

type typeDoc struct {
	Name         string           `yaml:"name"`
	Kind         string           `yaml:"kind"`
	Visibility   string           `yaml:"visibility"`
	Abstract     bool             `yaml:"abstract"`
	Static       *bool            `yaml:"static"`
	Enclosing    string           `yaml:"enclosing"`
	Super        string           `yaml:"super"`
	Annotations  []annotationDoc  `yaml:"annotations"`
	Constructors []constructorDoc `yaml:"constructors"`
	Fields       []fieldDoc       `yaml:"fields"`
	Methods      []methodDoc      `yaml:"methods"`
	Line         int              `yaml:"-"`
}

type constructorDoc struct {
	Name        string          `yaml:"name"`
	Visibility  string          `yaml:"visibility"`
	Throws      bool            `yaml:"throws"`
	Annotations []annotationDoc `yaml:"annotations"`
	Params      []paramDoc      `yaml:"params"`
	Line        int             `yaml:"-"`
}

type fieldDoc struct {
	Name        string          `yaml:"name"`
	Type        string          `yaml:"type"`
	Visibility  string          `yaml:"visibility"`
	Final       bool            `yaml:"final"`
	Static      bool            `yaml:"static"`
	Annotations []annotationDoc `yaml:"annotations"`
	Line        int             `yaml:"-"`
}

type methodDoc struct {
	Name        string          `yaml:"name"`
	Visibility  string          `yaml:"visibility"`
	Static      bool            `yaml:"static"`
	Throws      bool            `yaml:"throws"`
	Annotations []annotationDoc `yaml:"annotations"`
	Params      []paramDoc      `yaml:"params"`
	Line        int             `yaml:"-"`
}

type paramDoc struct {
	Name        string          `yaml:"name"`
	Type        string          `yaml:"type"`
	Annotations []annotationDoc `yaml:"annotations"`
	Line        int             `yaml:"-"`
}

// UnmarshalYAML accepts either a bare identity or a mapping
func (a *annotationDoc) UnmarshalYAML(node *yaml.Node) error {
	a.Line = node.Line
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&a.Name)
	}
	type plain annotationDoc
	return node.Decode((*plain)(a))
}

func (a *annotationDef) UnmarshalYAML(node *yaml.Node) error {
	type plain annotationDef
	a.Line = node.Line
	return node.Decode((*plain)(a))
}

func (t *typeDoc) UnmarshalYAML(node *yaml.Node) error {
	type plain typeDoc
	t.Line = node.Line
	return node.Decode((*plain)(t))
}

func (c *constructorDoc) UnmarshalYAML(node *yaml.Node) error {
	type plain constructorDoc
	c.Line = node.Line
	return node.Decode((*plain)(c))
}

func (f *fieldDoc) UnmarshalYAML(node *yaml.Node) error {
	type plain fieldDoc
	f.Line = node.Line
	return node.Decode((*plain)(f))
}

func (m *methodDoc) UnmarshalYAML(node *yaml.Node) error {
	type plain methodDoc
	m.Line = node.Line
	return node.Decode((*plain)(m))
}

func (p *paramDoc) UnmarshalYAML(node *yaml.Node) error {
	type plain paramDoc
	p.Line = node.Line
	return node.Decode((*plain)(p))
}

// LoadManifest reads one or more YAML manifests into a sealed arena
func LoadManifest(paths ...string) (*Arena, error) {
	arena := NewArena()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapFileSystemError("read", path, err)
		}
		if err := decodeManifest(arena, path, data); err != nil {
			return nil, err
		}
	}
	return arena.Seal(), nil
}

// ParseManifest decodes manifest content into a sealed arena.
// Multiple YAML documents in one stream are merged.
func ParseManifest(name string, data []byte) (*Arena, error) {
	arena := NewArena()
	if err := decodeManifest(arena, name, data); err != nil {
		return nil, err
	}
	return arena.Seal(), nil
}

func decodeManifest(arena *Arena, file string, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	for {
		var doc manifestDoc
		err := dec.Decode(&doc)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.WrapSyntaxError(file, err)
		}
		b := &manifestBuilder{file: file, pkg: doc.Package}
		if err := b.build(arena, &doc); err != nil {
			return err
		}
	}
}

type manifestBuilder struct {
	file string
	pkg  string
}

func (b *manifestBuilder) build(arena *Arena, doc *manifestDoc) error {
	for _, def := range doc.Annotations {
		t, err := b.annotationType(def)
		if err != nil {
			return err
		}
		if err := arena.Add(t); err != nil {
			return errors.NewSyntaxError(err.Error()).WithLocation(b.loc(def.Line))
		}
	}
	for _, td := range doc.Types {
		t, err := b.typeDecl(td)
		if err != nil {
			return err
		}
		if err := arena.Add(t); err != nil {
			return errors.NewSyntaxError(err.Error()).WithLocation(b.loc(td.Line))
		}
	}
	return nil
}

func (b *manifestBuilder) loc(line int) errors.SourceLocation {
	return errors.SourceLocation{File: b.file, Line: line}
}

func (b *manifestBuilder) qualify(name string) string {
	if strings.Contains(name, ".") || b.pkg == "" {
		return name
	}
	return b.pkg + "." + name
}

func (b *manifestBuilder) packageOf(identity string) (string, string) {
	idx := strings.LastIndex(identity, ".")
	if idx < 0 {
		return "", identity
	}
	return identity[:idx], identity[idx+1:]
}

func (b *manifestBuilder) annotationType(def annotationDef) (*models.Type, error) {
	if def.Name == "" {
		return nil, errors.NewSyntaxError("annotation type without a name").WithLocation(b.loc(def.Line))
	}
	retention, ok := models.ParseRetention(def.Retention)
	if !ok {
		return nil, errors.NewSyntaxError(fmt.Sprintf("unknown retention %q", def.Retention)).
			WithToken(def.Retention).
			WithLocation(b.loc(def.Line)).
			WithSuggestion("Use one of: runtime, class, source")
	}

	identity := b.qualify(def.Name)
	pkg, simple := b.packageOf(identity)
	t := &models.Type{
		Element: models.Element{
			Name:       simple,
			Kind:       models.ElementType,
			Owner:      identity,
			Visibility: models.VisibilityPublic,
			Static:     true,
			Location:   b.loc(def.Line),
		},
		Identity:    identity,
		Package:     pkg,
		PackageName: lastPathElement(pkg),
		Category:    models.CategoryAnnotation,
		Retention:   retention,
	}
	if def.Scope {
		t.Annotations = append(t.Annotations, models.Annotation{Identity: models.ScopeMarkerIdentity, Location: t.Location})
	}
	if def.Qualifier {
		t.Annotations = append(t.Annotations, models.Annotation{Identity: models.QualifierMarkerIdentity, Location: t.Location})
	}
	return t, nil
}

func (b *manifestBuilder) typeDecl(td typeDoc) (*models.Type, error) {
	if td.Name == "" {
		return nil, errors.NewSyntaxError("type without a name").WithLocation(b.loc(td.Line))
	}
	identity := b.qualify(td.Name)
	pkg, simple := b.packageOf(identity)

	static := true
	if td.Static != nil {
		static = *td.Static
	}
	category := models.ParseCategory(td.Kind)
	t := &models.Type{
		Element: models.Element{
			Name:        simple,
			Kind:        models.ElementType,
			Owner:       identity,
			Visibility:  b.visibility(td.Visibility),
			Static:      static,
			Annotations: b.annotations(td.Annotations),
			Location:    b.loc(td.Line),
		},
		Identity:    identity,
		Package:     pkg,
		PackageName: lastPathElement(pkg),
		Category:    category,
		Abstract:    td.Abstract || category == models.CategoryInterface,
	}
	if td.Enclosing != "" {
		t.Enclosing = b.qualify(td.Enclosing)
	}
	if td.Super != "" {
		t.Super = b.qualify(td.Super)
		_, field := b.packageOf(t.Super)
		t.SuperPath = []models.EmbedStep{{Field: field}}
	}

	for _, cd := range td.Constructors {
		params, err := b.params(identity, cd.Params)
		if err != nil {
			return nil, err
		}
		name := cd.Name
		if name == "" {
			name = "New" + simple
		}
		t.Constructors = append(t.Constructors, &models.Constructor{
			Element: models.Element{
				Name:        name,
				Kind:        models.ElementConstructor,
				Owner:       identity,
				Visibility:  b.visibility(cd.Visibility),
				Static:      true,
				Annotations: b.annotations(cd.Annotations),
				Location:    b.loc(cd.Line),
			},
			Parameters:     params,
			ThrowsChecked:  cd.Throws,
			ReturnsPointer: true,
		})
	}
	if len(td.Constructors) == 0 && category == models.CategoryClass && !t.Abstract {
		t.Constructors = append(t.Constructors, &models.Constructor{
			Element: models.Element{
				Name:       simple,
				Kind:       models.ElementConstructor,
				Owner:      identity,
				Visibility: models.VisibilityPublic,
				Static:     true,
				Location:   t.Location,
			},
			Implicit:       true,
			ReturnsPointer: true,
		})
	}

	for _, fd := range td.Fields {
		typ, err := b.descriptor(fd.Type, fd.Line)
		if err != nil {
			return nil, err
		}
		t.Fields = append(t.Fields, &models.Field{
			Element: models.Element{
				Name:        fd.Name,
				Kind:        models.ElementField,
				Owner:       identity,
				Visibility:  b.visibility(fd.Visibility),
				Static:      fd.Static,
				Annotations: b.annotations(fd.Annotations),
				Location:    b.loc(fd.Line),
			},
			Type:  typ,
			Final: fd.Final,
		})
	}

	for _, md := range td.Methods {
		params, err := b.params(identity, md.Params)
		if err != nil {
			return nil, err
		}
		t.Methods = append(t.Methods, &models.Method{
			Element: models.Element{
				Name:        md.Name,
				Kind:        models.ElementMethod,
				Owner:       identity,
				Visibility:  b.visibility(md.Visibility),
				Static:      md.Static,
				Annotations: b.annotations(md.Annotations),
				Location:    b.loc(md.Line),
			},
			Parameters:    params,
			ThrowsChecked: md.Throws,
		})
	}
	return t, nil
}

func (b *manifestBuilder) params(owner string, docs []paramDoc) ([]*models.Parameter, error) {
	params := make([]*models.Parameter, 0, len(docs))
	for i, pd := range docs {
		typ, err := b.descriptor(pd.Type, pd.Line)
		if err != nil {
			return nil, err
		}
		name := pd.Name
		if name == "" {
			name = fmt.Sprintf("p%d", i)
		}
		params = append(params, &models.Parameter{
			Element: models.Element{
				Name:        name,
				Kind:        models.ElementParameter,
				Owner:       owner,
				Visibility:  models.VisibilityPackage,
				Annotations: b.annotations(pd.Annotations),
				Location:    b.loc(pd.Line),
			},
			Type: typ,
		})
	}
	return params, nil
}

// visibility defaults to public in manifests
func (b *manifestBuilder) visibility(s string) models.Visibility {
	if s == "" {
		return models.VisibilityPublic
	}
	return models.ParseVisibility(s)
}

func (b *manifestBuilder) annotations(docs []annotationDoc) models.Annotations {
	out := make(models.Annotations, 0, len(docs))
	for _, d := range docs {
		identity, ok := models.BuiltinKeywords[d.Name]
		if !ok {
			identity = b.qualify(strings.TrimPrefix(d.Name, "@"))
		}
		out = append(out, models.Annotation{
			Identity: identity,
			Value:    d.Value,
			Params:   d.Params,
			Location: b.loc(d.Line),
		})
	}
	return out
}

func (b *manifestBuilder) descriptor(spelled string, line int) (models.TypeDescriptor, error) {
	d, err := models.ParseTypeDescriptor(spelled)
	if err != nil {
		return models.TypeDescriptor{}, errors.WrapSyntaxError("type", err).
			WithToken(spelled).
			WithLocation(b.loc(line))
	}
	return b.resolveNames(d), nil
}

func (b *manifestBuilder) resolveNames(d models.TypeDescriptor) models.TypeDescriptor {
	if d.Kind == models.KindNamed {
		if identity, ok := models.HandleShorthands[d.Name]; ok {
			d.Name = identity
		} else {
			d.Name = b.qualify(d.Name)
		}
	}
	for i := range d.Args {
		d.Args[i] = b.resolveNames(d.Args[i])
	}
	return d
}

func lastPathElement(pkg string) string {
	if idx := strings.LastIndex(pkg, "/"); idx >= 0 {
		return pkg[idx+1:]
	}
	return pkg
}
