package source

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"

	"github.com/Masterminds/semver/v3"
)

// Resolver extracts the release version from a Go source declaration.
// The declaration is the single source of truth for what is being released,
// so nothing built on disk is ever consulted.
type Resolver struct {
	// Path is the Go source file holding the declaration.
	Path string
	// Ident is the name of the const or var to read.
	Ident string
}

var (
	// errVersionNotFound is returned when the declaration is absent.
	errVersionNotFound = errors.New("version declaration not found")
	// errVersionNotString is returned when the declaration is not a string literal.
	errVersionNotString = errors.New("version declaration is not a string literal")
)

// Resolve parses the source file and returns the declared version verbatim.
// The value must be strict semantic versioning.
func (r Resolver) Resolve() (string, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, r.Path, nil, parser.SkipObjectResolution)
	if err != nil {
		return "", fmt.Errorf("parse version source: %w", err)
	}

	lit, err := findDeclaration(file, r.Ident)
	if err != nil {
		return "", fmt.Errorf("%w in %s", err, r.Path)
	}

	value, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", fmt.Errorf("unquote %s in %s: %w", r.Ident, r.Path, err)
	}

	if _, err = semver.StrictNewVersion(value); err != nil {
		return "", fmt.Errorf("version %q in %s: %w", value, r.Path, err)
	}

	return value, nil
}

// findDeclaration locates the top-level const or var string literal named ident.
func findDeclaration(file *ast.File, ident string) (*ast.BasicLit, error) {
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || (genDecl.Tok != token.CONST && genDecl.Tok != token.VAR) {
			continue
		}

		for _, spec := range genDecl.Specs {
			valueSpec, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}

			for i, name := range valueSpec.Names {
				if name.Name != ident || i >= len(valueSpec.Values) {
					continue
				}

				lit, ok := valueSpec.Values[i].(*ast.BasicLit)
				if !ok || lit.Kind != token.STRING {
					return nil, fmt.Errorf("%w: %s", errVersionNotString, ident)
				}

				return lit, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: %s", errVersionNotFound, ident)
}
