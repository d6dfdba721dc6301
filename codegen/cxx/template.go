package cxx

const headerTemplate = `// Code generated by vtablegen. DO NOT EDIT.
// Source: {{.Source}}
// Data model: {{.Model}}

#ifndef {{.Guard}}
#define {{.Guard}}

#include <cstddef>
#include <cstdint>
{{range .Conventions}}
#ifndef {{.Macro}}
#if defined(_MSC_VER)
#define {{.Macro}} {{.MSVC}}
#else
#define {{.Macro}} {{.GNU}}
#endif
#endif
{{end}}
namespace {{.Namespace}} {
{{range .Interfaces}}
class {{.Name}}{{if .Base}} : public {{.Base}}{{end}} {
public:
{{- range .Methods}}
    // slot {{.Index}}: {{.Signature}}
    virtual {{.Result}} {{.Call}}{{.Name}}({{.Params}}){{.Const}}{{if .HasBody}} { {{- if .Default}} {{.Default}} {{end -}} }{{else}} = 0;{{end}}
{{- end}}

protected:
    ~{{.Name}}() = default;
};
{{end}}
extern "C" {
{{range .Interfaces}}
struct {{.Name}}_vtable {
{{- if .Base}}
    struct {{.Base}}_vtable parent;
{{- end}}
{{- range .Methods}}
    {{.Result}} ({{.Call}}*{{.Name}})({{.SlotArgs}});
{{- end}}
};
{{end}}
} // extern "C"

#if UINTPTR_MAX == {{.PtrMax}}
{{- range .Interfaces}}
{{- $name := .Name}}
static_assert(sizeof({{.Name}}_vtable) == {{.Size}}, "{{.Name}}_vtable size");
{{- range .Asserts}}
static_assert(offsetof({{$name}}_vtable, {{.Member}}) == {{.Offset}}, "{{$name}}_vtable::{{.Member}} offset");
{{- end}}
{{- end}}
#endif

} // namespace {{.Namespace}}

#endif // {{.Guard}}
`
