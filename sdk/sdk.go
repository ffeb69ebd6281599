// Package sdk contains a TypeScript typed-SDK generator for GraphQL
// operation documents. For every named operation it emits a wrapper
// function delegating to a pluggable Requester transport, plus a factory
// bundling the wrappers into an Sdk object.
package sdk

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/gqlsdk/gqlsdk/gen"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

// IsStreamOperation reports whether an operation produces a sequence of
// results over time: subscriptions, and queries tagged @live.
func IsStreamOperation(node *ast.OperationDefinition) bool {
	if node.Operation == ast.Subscription {
		return true
	}
	if node.Operation != ast.Query {
		return false
	}

	return node.Directives.ForName("live") != nil
}

// optionalVariables reports whether every declared variable is nullable
// or carries a default value.
func optionalVariables(node *ast.OperationDefinition) bool {
	for _, v := range node.VariableDefinitions {
		if v.Type.NonNull && v.DefaultValue == nil {
			return false
		}
	}
	return true
}

// Visitor collects every named operation seen during a generation run and
// renders the SDK source for them on demand. The operation list is
// append-only; rendering never mutates it.
type Visitor struct {
	schema    *ast.Schema
	fragments ast.FragmentDefinitionList
	opts      *Options

	typePrefix string
	imports    []string

	ops []*operation
}

// NewVisitor returns a Visitor configured from the raw option map.
// The additional imports required by the configuration are registered here,
// once, so callers can emit them before any rendering happens.
func NewVisitor(schema *ast.Schema, fragments ast.FragmentDefinitionList, rawOpts map[string]interface{}) (*Visitor, error) {
	opts, err := getOptions(rawOpts)
	if err != nil {
		return nil, err
	}

	v := &Visitor{
		schema:    schema,
		fragments: fragments,
		opts:      opts,
	}

	if opts.ImportOperationTypesFrom != "" {
		v.typePrefix = opts.ImportOperationTypesFrom + "."
	}

	typeImport := "import"
	if opts.UseTypeImports {
		typeImport = "import type"
	}

	if opts.UsingObservableFrom != "" {
		v.imports = append(v.imports, fmt.Sprintf("import { Observable } from '%s';", opts.UsingObservableFrom))
	}
	if opts.DocumentMode != DocumentModeString {
		v.imports = append(v.imports, fmt.Sprintf("%s { DocumentNode } from 'graphql';", typeImport))
	}
	if opts.RawRequest {
		v.imports = append(v.imports, fmt.Sprintf("%s { ExecutionResult } from 'graphql';", typeImport))
	}

	return v, nil
}

// Imports returns the import statements required by the rendered SDK.
func (v *Visitor) Imports() []string { return v.imports }

// OperationDefinition records one operation for later rendering. The
// document variable and result/variables type names are owned by
// collaborating generators; only their identifiers are needed here.
func (v *Visitor) OperationDefinition(node *ast.OperationDefinition, documentVariableName, operationType, resultType, variablesType string) error {
	if node.Name == "" {
		return &UnnamedOperationError{Node: node}
	}

	v.ops = append(v.ops, &operation{
		name:          node.Name,
		isStream:      IsStreamOperation(node),
		varsOptional:  optionalVariables(node),
		docVar:        documentVariableName,
		resultType:    v.typePrefix + resultType,
		variablesType: v.typePrefix + variablesType,
	})

	return nil
}

// DocumentReference returns the identifier used to reference a compiled
// document at runtime.
func (v *Visitor) DocumentReference(documentVariableName string) string {
	if v.opts.DocumentMode == DocumentModeExternal {
		return "Operations." + documentVariableName
	}
	return documentVariableName
}

// payload wraps a result type in the ExecutionResult envelope under
// rawRequest; otherwise it is the bare result type.
func (v *Visitor) payload(resultType string) string {
	if v.opts.RawRequest {
		return "ExecutionResult<" + resultType + ", E>"
	}
	return resultType
}

// returnType returns the TypeScript return type for an operation: the
// stream shape for stream operations, Promise otherwise.
func (v *Visitor) returnType(o *operation) string {
	shape := "Promise"
	if o.isStream {
		shape = "AsyncIterable"
		if v.opts.UsingObservableFrom != "" {
			shape = "Observable"
		}
	}
	return shape + "<" + v.payload(o.resultType) + ">"
}

// SdkContent renders the SDK source for every recorded operation. It is a
// pure function of the accumulated operations and options: calling it again
// without further OperationDefinition calls yields identical output.
func (v *Visitor) SdkContent() string {
	var b bytes.Buffer

	for _, o := range v.ops {
		v.writeOperationFunc(&b, o)
		b.WriteByte('\n')
	}

	v.writeRequesterType(&b)
	b.WriteByte('\n')

	v.writeFactory(&b)
	b.WriteByte('\n')

	b.WriteString("export type Sdk = ReturnType<typeof getSdk>;\n")

	return b.String()
}

func (v *Visitor) writeOperationFunc(b *bytes.Buffer, o *operation) {
	ret := v.returnType(o)

	fmt.Fprintf(b, "export function %s<C, E>(requester: Requester<C, E>, variables%s: %s, options?: C): %s {\n",
		lowerFirst(o.name), optionalMark(o.varsOptional), o.variablesType, ret)
	fmt.Fprintf(b, "  return requester<%s, %s>(%s, variables, options) as %s;\n",
		o.resultType, o.variablesType, v.DocumentReference(o.docVar), ret)
	b.WriteString("}\n")
}

func (v *Visitor) writeRequesterType(b *bytes.Buffer) {
	docType := "DocumentNode"
	if v.opts.DocumentMode == DocumentModeString {
		docType = "string"
	}

	single := v.payload("R")
	stream := "AsyncIterable<" + single + ">"
	if v.opts.UsingObservableFrom != "" {
		stream = "Observable<" + single + ">"
	}

	fmt.Fprintf(b, "export type Requester<C = {}, E = unknown> = <R, V>(doc: %s, vars?: V, options?: C) => Promise<%s> | %s;\n",
		docType, single, stream)
}

func (v *Visitor) writeFactory(b *bytes.Buffer) {
	b.WriteString("export function getSdk<C, E>(requester: Requester<C, E>) {\n")
	b.WriteString("  return {\n")

	last := len(v.ops) - 1
	for i, o := range v.ops {
		ret := v.returnType(o)

		fmt.Fprintf(b, "    %s(variables%s: %s, options?: C): %s {\n",
			o.name, optionalMark(o.varsOptional), o.variablesType, ret)
		fmt.Fprintf(b, "      return %s(requester, variables, options) as %s;\n", lowerFirst(o.name), ret)
		b.WriteString("    }")
		if i != last {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}

	b.WriteString("  };\n")
	b.WriteString("}\n")
}

func optionalMark(optional bool) string {
	if optional {
		return "?"
	}
	return ""
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

// operationTypeLabel returns the suffix collaborating generators use when
// naming an operation's result and variables types.
func operationTypeLabel(op ast.Operation) string {
	switch op {
	case ast.Mutation:
		return "Mutation"
	case ast.Subscription:
		return "Subscription"
	default:
		return "Query"
	}
}

// Generator generates a TypeScript SDK for GraphQL operation documents.
type Generator struct {
	sync.Mutex
	bytes.Buffer
}

// Generate generates a TypeScript SDK for the given document.
func (g *Generator) Generate(ctx context.Context, doc *gen.Document, opts map[string]interface{}) (err error) {
	g.Lock()
	defer func() {
		if err != nil {
			err = gen.GeneratorError{
				DocName: doc.Name,
				GenName: "sdk",
				Msg:     err.Error(),
			}
		}
	}()
	defer g.Unlock()
	g.Reset()

	v, err := NewVisitor(doc.Schema, doc.Doc.Fragments, opts)
	if err != nil {
		return
	}

	for _, op := range doc.Doc.Operations {
		label := operationTypeLabel(op.Operation)

		err = v.OperationDefinition(op,
			op.Name+"Document",
			label,
			op.Name+label,
			op.Name+label+"Variables",
		)
		if err != nil {
			return
		}
	}

	g.writeHeader(v)
	g.writeDocuments(v, doc.Doc)
	g.WriteString(v.SdkContent())

	// Extract generator context
	gCtx := gen.Context(ctx)

	// Open file to write to
	tsFile, err := gCtx.Open(doc.Name + ".ts")
	if err != nil {
		return
	}
	defer tsFile.Close()

	// Write generated output
	_, err = g.WriteTo(tsFile)
	return
}

func (g *Generator) writeHeader(v *Visitor) {
	g.P("/* eslint-disable */")
	g.P("// Generated by gqlsdk. DO NOT EDIT.")

	for _, imp := range v.Imports() {
		g.P(imp)
	}

	switch v.opts.DocumentMode {
	case DocumentModeDocumentNode:
		g.P("import gql from 'graphql-tag';")
	case DocumentModeExternal:
		g.P("import * as Operations from '", v.opts.ImportDocumentsFrom, "';")
	}

	g.P()
}

// writeDocuments emits one document constant per operation, with the
// fragments it references. In external mode the documents live in the
// imported Operations module, so nothing is emitted.
func (g *Generator) writeDocuments(v *Visitor, doc *ast.QueryDocument) {
	if v.opts.DocumentMode == DocumentModeExternal {
		return
	}

	tag := ""
	if v.opts.DocumentMode == DocumentModeDocumentNode {
		tag = "gql"
	}

	for _, op := range doc.Operations {
		g.P("export const ", op.Name, "Document = ", tag, "`")
		g.WriteString(printOperationWithFragments(op, doc.Fragments))
		g.P("`;")
		g.P()
	}
}

// printOperationWithFragments formats an operation together with every
// fragment its selection set (transitively) spreads.
func printOperationWithFragments(op *ast.OperationDefinition, fragments ast.FragmentDefinitionList) string {
	var b bytes.Buffer
	f := formatter.NewFormatter(&b)
	f.FormatQueryDocument(&ast.QueryDocument{
		Operations: ast.OperationList{op},
		Fragments:  usedFragments(op.SelectionSet, fragments, map[string]bool{}),
	})
	return b.String()
}

func usedFragments(sel ast.SelectionSet, fragments ast.FragmentDefinitionList, seen map[string]bool) ast.FragmentDefinitionList {
	var used ast.FragmentDefinitionList
	for _, s := range sel {
		switch s := s.(type) {
		case *ast.Field:
			used = append(used, usedFragments(s.SelectionSet, fragments, seen)...)
		case *ast.InlineFragment:
			used = append(used, usedFragments(s.SelectionSet, fragments, seen)...)
		case *ast.FragmentSpread:
			if seen[s.Name] {
				continue
			}
			seen[s.Name] = true

			frag := fragments.ForName(s.Name)
			if frag == nil {
				continue
			}
			used = append(used, frag)
			used = append(used, usedFragments(frag.SelectionSet, fragments, seen)...)
		}
	}
	return used
}

// P prints the arguments to the generated output, followed by a newline.
func (g *Generator) P(str ...interface{}) {
	for _, s := range str {
		switch v := s.(type) {
		case []byte:
			g.Write(v)
		case string:
			g.WriteString(v)
		case bool:
			fmt.Fprint(g, v)
		case int:
			fmt.Fprint(g, v)
		}
	}
	g.WriteByte('\n')
}
