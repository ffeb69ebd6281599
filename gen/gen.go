// Package gen contains the plumbing shared by all gqlsdk generators.
package gen

//go:generate mockgen -write_package_comment=false -package=gen -destination=./mock.go github.com/gqlsdk/gqlsdk/gen Generator

import (
	"context"
	"fmt"
	"io"

	"github.com/vektah/gqlparser/v2/ast"
)

// Document bundles everything a Generator needs for one generation run:
// the schema and the executable documents parsed from one input file.
type Document struct {
	// Name is the input file name, without extension.
	Name string

	// Schema the operations were validated against. Generators must
	// treat it as read-only.
	Schema *ast.Schema

	// Operations and fragments parsed from the input file.
	Doc *ast.QueryDocument
}

// Generator provides a simple API for creating a code generator for
// any SDK surface desired.
//
type Generator interface {
	// Generate handles converting GraphQL operation documents to source code.
	Generate(ctx context.Context, doc *Document, opts map[string]interface{}) error
}

// GeneratorContext represents the directory to which
// the Generator is to write to.
//
type GeneratorContext interface {
	// Open opens a file in the GeneratorContext (i.e. directory).
	Open(filename string) (io.WriteCloser, error)
}

type genCtx string

var genCtxKey = genCtx("genCtx")

// WithContext returns a prepared context.Context
// with the given GeneratorContext.
//
func WithContext(ctx context.Context, gCtx GeneratorContext) context.Context {
	return context.WithValue(ctx, genCtxKey, gCtx)
}

// Context returns the generator context.
func Context(ctx context.Context) GeneratorContext {
	return ctx.Value(genCtxKey).(GeneratorContext)
}

// GeneratorError represents an error from a generator.
type GeneratorError struct {
	// DocName is the document being worked on when error was encountered.
	DocName string

	// GenName is the generator name which encountered a problem.
	GenName string

	// Msg is any message the generator wants to provide back to the caller.
	Msg string
}

func (e GeneratorError) Error() string {
	return fmt.Sprintf("gqlsdk: generator error occurred in %s:%s %s", e.GenName, e.DocName, e.Msg)
}
