package golang

const fileTemplate = `// Code generated by vtablegen. DO NOT EDIT.
// Source: {{.Source}}
// Data model: {{.Model}}

package {{.Package}}

import (
{{- range .Imports}}
	{{printf "%q" .}}
{{- end}}
)
{{range .Interfaces}}
{{template "iface" .}}
{{end}}
{{- define "iface"}}
// {{.GoName}} is the Go form of interface {{.Name}}.
type {{.GoName}} interface {
{{- if .Base}}
	{{.Base}}
{{- end}}
{{- range $i, $m := .Methods}}
{{- if or $i $.Base}}
{{end}}
	// {{.GoName}} is slot {{.Index}} at offset {{.Offset}}, extern {{printf "%q" .ABI}}{{if .Mutable}}, mutable receiver{{end}}.
{{- if .Unsafe}}
	//
	// Unsafe: pointer arguments are not checked.
{{- end}}
	{{.GoName}}({{.ParamList}}){{.ResultSuffix}}
{{- end}}
}
{{- if .Defaults}}

// {{.GoName}}Defaults holds the default bodies of {{.GoName}}. Embed it in an
// implementation to inherit them.
type {{.GoName}}Defaults struct{}
{{- range .Defaults}}

func ({{$.GoName}}Defaults) {{.GoName}}({{.ParamList}}){{.ResultSuffix}} {
{{- if .DefaultValue}}
	return {{.DefaultValue}}
{{- end}}
}
{{- end}}
{{- end}}

// {{.GoName}}Impl is satisfied by *T when T implements {{.GoName}}.
type {{.GoName}}Impl[T any] interface {
	*T
	{{.GoName}}
}

// {{.GoName}}Descriptor describes the slots of {{.GoName}}.
var {{.GoName}}Descriptor = &vtable.Descriptor{
{{- if .Base}}
	Base:    {{.Base}}Descriptor,
{{- end}}
	Package: {{printf "%q" .Pkg}},
	Name:    {{printf "%q" .Name}},
	Slots: []vtable.Slot{
{{- range .Methods}}
		{Name: {{printf "%q" .Name}}, Field: {{printf "%q" .GoName}}, ABI: {{printf "%q" .ABI}}
			{{- if .IDLParams}}, Params: []string{ {{- .IDLParams -}} }{{end}}
			{{- if .ResultIDL}}, Result: {{printf "%q" .ResultIDL}}{{end}}
			{{- if .Mutable}}, Mutable: true{{end}}
			{{- if .Unsafe}}, Unsafe: true{{end}}
			{{- if .HasDefault}}, HasDefault: true{{end}}},
{{- end}}
	},
}

// {{.GoName}}Layout is the vtable of {{.GoName}} for implementer T: {{.Slots}} code
// pointers, {{.Size}} bytes under {{.Model}}.
type {{.GoName}}Layout[T any] struct {
{{- if .Base}}
	{{.Base}}Layout[T]
{{- end}}
{{- range .Methods}}
	{{.GoName}} func(this *T{{if .ParamList}}, {{.ParamList}}{{end}}){{.ResultSuffix}}
{{- end}}
}

// Descriptor implements vtable.Layout.
func ({{.GoName}}Layout[T]) Descriptor() *vtable.Descriptor { return {{.GoName}}Descriptor }

// Clone returns a copy of the table.
func (l *{{.GoName}}Layout[T]) Clone() {{.GoName}}Layout[T] { return *l }
{{- if .Base}}

// Base returns the embedded {{.Base}} table. It shares the address of l.
func (l *{{.GoName}}Layout[T]) Base() *{{.Base}}Layout[T] { return &l.{{.Base}}Layout }
{{- end}}

// New{{.GoName}}Layout builds the vtable of {{.GoName}} for T. Most callers want
// {{.GoName}}Vtable, which returns the shared instance.
func New{{.GoName}}Layout[T any, P {{.GoName}}Impl[T]]() {{.GoName}}Layout[T] {
	return {{.GoName}}Layout[T]{
{{- if .Base}}
		{{.Base}}Layout: *{{.Base}}Vtable[T, P](),
{{- end}}
{{- range .Methods}}
		{{.GoName}}: func(this *T{{if .ParamList}}, {{.ParamList}}{{end}}){{.ResultSuffix}} {
			{{if .ResultSuffix}}return {{end}}P(this).{{.GoName}}({{.ArgList}})
		},
{{- end}}
	}
}

// {{.GoName}}Vtable returns the process wide vtable of {{.GoName}} for T.
func {{.GoName}}Vtable[T any, P {{.GoName}}Impl[T]]() *{{.GoName}}Layout[T] {
	return vtable.Instance(New{{.GoName}}Layout[T, P])
}

// New{{.GoName}}Ptr returns a vtable pointer to {{.GoName}}Vtable[T, P].
func New{{.GoName}}Ptr[T any, P {{.GoName}}Impl[T]]() vtable.Ptr[{{.GoName}}Layout[T]] {
	return vtable.NewPtr(New{{.GoName}}Layout[T, P])
}
{{- end}}
`
