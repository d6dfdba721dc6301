package idl

import (
	"os"

	"github.com/wippyai/vtable/errors"
	"github.com/wippyai/vtable/idl/ast"
	"github.com/wippyai/vtable/idl/internal/parser"
	"github.com/wippyai/vtable/idl/internal/token"
)

// Parse parses source text. name is used in positions only.
func Parse(name, source string) (*ast.File, error) {
	tokens := token.Tokenize(source)
	return parser.New(name, tokens).Parse()
}

// ParseFile reads and parses a .vtl file.
func ParseFile(path string) (*ast.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindIO, err, "read "+path)
	}
	return Parse(path, string(data))
}
