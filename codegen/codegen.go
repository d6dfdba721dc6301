// Package codegen turns compiled packages into source files.
//
// Each target language has a Generator in its own sub-package:
//
//	codegen/golang  Go interfaces, layout records and constructors
//	codegen/cxx     C++ abstract classes, C struct mirrors and static_asserts
//
// Write runs several generators over one package and writes the results.
package codegen

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/vtable/codegen/cxx"
	"github.com/wippyai/vtable/codegen/golang"
	"github.com/wippyai/vtable/codegen/internal/naming"
	"github.com/wippyai/vtable/compiler"
	"github.com/wippyai/vtable/errors"
)

// Generator emits the source of one target language for a package.
type Generator interface {
	Language() string
	FileExtension() string
	Generate(pkg *compiler.Package) ([]byte, error)
}

// Options carries the per-language settings.
type Options struct {
	GoPackage     string
	RuntimeImport string
	HeaderName    string
	Namespace     string
}

var factories = map[string]func(Options) Generator{
	"go": func(o Options) Generator {
		return golang.New(golang.Options{Package: o.GoPackage, RuntimeImport: o.RuntimeImport})
	},
	"cxx": func(o Options) Generator {
		var guard string
		if o.HeaderName != "" {
			guard = naming.Macro(o.HeaderName)
		}
		return cxx.New(cxx.Options{Namespace: o.Namespace, Guard: guard})
	},
}

// Languages returns the supported language names, sorted.
func Languages() []string {
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// New returns the generator for lang ("go" or "cxx"; "c++" is accepted).
func New(lang string, opts Options) (Generator, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "c++" || lang == "cpp" {
		lang = "cxx"
	}
	f, ok := factories[lang]
	if !ok {
		return nil, errors.New(errors.PhaseEmit, errors.KindUnsupported).
			Value(lang).
			Detail("unknown language %q (want %s)", lang, strings.Join(Languages(), ", ")).
			Build()
	}
	return f(opts), nil
}

// OutputName returns the file name g writes for a description file:
// shapes.vtl becomes shapes_vtable.go or shapes_vtable.h. A non-empty
// headerName replaces the C++ name.
func OutputName(g Generator, source, headerName string) string {
	if g.Language() == "cxx" && headerName != "" {
		return headerName
	}
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return base + "_vtable" + g.FileExtension()
}

// Write generates pkg with every generator and writes the files to dir.
// All generators run even if one fails; nothing is written unless all
// succeed. It returns the written paths.
func Write(pkg *compiler.Package, gens []Generator, dir string, opts Options) ([]string, error) {
	type output struct {
		path string
		data []byte
	}

	var outs []output
	var errs error
	for _, g := range gens {
		data, err := g.Generate(pkg)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		outs = append(outs, output{
			path: filepath.Join(dir, OutputName(g, pkg.File, opts.HeaderName)),
			data: data,
		})
	}
	if errs != nil {
		return nil, errs
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.PhaseEmit, errors.KindIO, err, "create "+dir)
	}
	paths := make([]string, 0, len(outs))
	for _, o := range outs {
		if err := os.WriteFile(o.path, o.data, 0o644); err != nil {
			return paths, errors.Wrap(errors.PhaseEmit, errors.KindIO, err, "write "+o.path)
		}
		Logger().Debug("wrote file",
			zap.String("package", pkg.Name),
			zap.String("path", o.path),
			zap.Int("bytes", len(o.data)))
		paths = append(paths, o.path)
	}
	return paths, nil
}
