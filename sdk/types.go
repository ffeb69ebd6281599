package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

// DocumentMode selects how generated code references operation documents
// at runtime.
type DocumentMode string

const (
	// DocumentModeDocumentNode references documents as gql-tagged
	// DocumentNode constants.
	DocumentModeDocumentNode DocumentMode = "documentNode"

	// DocumentModeString references documents as plain string constants.
	DocumentModeString DocumentMode = "string"

	// DocumentModeExternal references documents through an imported
	// Operations namespace.
	DocumentModeExternal DocumentMode = "external"
)

// Options contains the options for the SDK generator.
type Options struct {
	// Module to import an Observable type from. When set, stream
	// operations return Observable instead of AsyncIterable.
	UsingObservableFrom string `json:"usingObservableFrom"`

	// Wrap every operation result in an ExecutionResult envelope.
	RawRequest bool `json:"rawRequest"`

	// How generated code references operation documents.
	DocumentMode DocumentMode `json:"documentMode"`

	// Module alias prefixed onto operation result/variables type names.
	ImportOperationTypesFrom string `json:"importOperationTypesFrom"`

	// Module the Operations namespace is imported from. Only used
	// when DocumentMode is "external".
	ImportDocumentsFrom string `json:"importDocumentsFrom"`

	// Emit the additional imports as type-only imports.
	UseTypeImports bool `json:"useTypeImports"`
}

// getOptions returns a generator options struct given all generator option
// metadata from the CLI. Unrecognized keys are ignored.
func getOptions(opts map[string]interface{}) (gOpts *Options, err error) {
	gOpts = &Options{
		DocumentMode: DocumentModeDocumentNode,
	}

	if len(opts) == 0 {
		return
	}

	b, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(b, gOpts); err != nil {
		return nil, err
	}

	if gOpts.DocumentMode == "" {
		gOpts.DocumentMode = DocumentModeDocumentNode
	}

	return gOpts, nil
}

// operation is the record accumulated for each visited operation.
// It is never mutated after creation.
type operation struct {
	name     string
	isStream bool

	// varsOptional is true when the operation declares no variables, or
	// every declared variable is nullable or carries a default value.
	varsOptional bool

	docVar        string
	resultType    string
	variablesType string
}

// UnnamedOperationError reports an operation definition without a name.
// Anonymous operations cannot be mapped to an SDK method.
type UnnamedOperationError struct {
	Node *ast.OperationDefinition
}

func (e *UnnamedOperationError) Error() string {
	return fmt.Sprintf("sdk: anonymous operations are not supported:\n\n%s", PrintOperation(e.Node))
}

// PrintOperation formats a single operation definition back to GraphQL source.
func PrintOperation(node *ast.OperationDefinition) string {
	var b bytes.Buffer
	f := formatter.NewFormatter(&b)
	f.FormatQueryDocument(&ast.QueryDocument{
		Operations: ast.OperationList{node},
	})
	return b.String()
}
