package generator

import "text/template"

const fileTemplate = `// Code generated by scopegen. DO NOT EDIT.
// This file was automatically generated and should not be modified manually.

package {{.Package}}

{{.Imports}}
{{range .Artifacts}}{{if .Factory}}{{template "factory" .}}{{end}}{{if .Injector}}{{template "injector" .}}{{end}}{{end}}
func init() {
{{- range .Artifacts}}
{{- if .Factory}}
	{{$.Scope}}.RegisterFactory[{{.Factory.Produced}}]({{.Factory.Name}}{})
{{- end}}
{{- if .Injector}}
	{{$.Scope}}.RegisterMemberInjector[*{{.Type}}]({{.Injector.Name}}{})
{{- end}}
{{- end}}
}
`

const factoryTemplate = `{{define "factory"}}{{with .Factory}}
// {{.Name}} creates {{.Produced}}{{if $.Description}}: {{$.Description}}{{end}}
{{- range $.Origin}}
// {{.}}
{{- end}}
type {{.Name}} struct{}

// CreateInstance builds {{.Produced}} in its target scope
func (f {{.Name}}) CreateInstance(s {{.Scope}}.Scope) ({{.Produced}}, error) {
	var zero {{.Produced}}
	s, err := f.TargetScope(s)
	if err != nil {
		return zero, err
	}
{{- range .Lookups}}
{{template "lookup" .}}
{{- end}}
{{- if .Throws}}
	instance, err := {{.Construct}}
	if err != nil {
		return zero, err
	}
{{- else}}
	instance := {{.Construct}}
{{- end}}
{{- with .Populate}}
{{template "delegate" .}}
{{- end}}
	return instance, nil
}

// TargetScope returns the scope owning the instance
func ({{.Name}}) TargetScope(s {{.Scope}}.Scope) ({{.Scope}}.Scope, error) {
	{{.TargetScope}}
}
{{range .Flags}}
func ({{$.Factory.Name}}) {{.Name}}() bool {
	return {{.Value}}
}
{{end}}{{end}}{{end}}`

const injectorTemplate = `{{define "injector"}}{{with .Injector}}
// {{.Name}} populates the injected members of *{{$.Type}}
{{- if not $.Factory}}{{range $.Origin}}
// {{.}}
{{- end}}{{end}}
type {{.Name}} struct{}

// Inject populates target from s
func ({{.Name}}) Inject(target *{{$.Type}}, s {{.Scope}}.Scope) error {
{{- with .Ancestor}}
{{template "delegate" .}}
{{- end}}
{{- range .Fields}}
{{template "lookup" .Lookup}}
	target.{{.Name}} = {{.Lookup.Var}}
{{- end}}
{{- range .Methods}}
{{- range .Lookups}}
{{template "lookup" .}}
{{- end}}
{{- if .Throws}}
	if err := target.{{.Name}}({{.Args}}); err != nil {
		return err
	}
{{- else}}
	target.{{.Name}}({{.Args}})
{{- end}}
{{- end}}
	return nil
}
{{end}}{{end}}`

const lookupTemplate = `{{define "lookup"}}
{{- if .Fails}}	{{.Var}}, err := {{.Expr}}
	if err != nil {
		return {{.Fail}}
	}
{{- else}}	{{.Var}} := {{.Expr}}
{{- end}}{{end}}`

const delegateTemplate = `{{define "delegate"}}
{{- if .Guard}}	if {{.Guard}} {
		if err := ({{.Injector}}{}).Inject({{.Arg}}, s); err != nil {
			return {{.Fail}}
		}
	}
{{- else}}	if err := ({{.Injector}}{}).Inject({{.Arg}}, s); err != nil {
		return {{.Fail}}
	}
{{- end}}{{end}}`

var fileTmpl = template.Must(template.Must(template.Must(template.Must(template.Must(
	template.New("file").Parse(fileTemplate)).
	Parse(factoryTemplate)).
	Parse(injectorTemplate)).
	Parse(lookupTemplate)).
	Parse(delegateTemplate))
