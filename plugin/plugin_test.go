package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/gqlsdk/gqlsdk/gen"
	gqlparser "github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

func helperCommand(t *testing.T, s ...string) (cmd *exec.Cmd) {
	t.Helper()

	cs := []string{"-test.run=TestHelperProcess", "--"}
	cs = append(cs, s...)
	cmd = exec.Command(os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

const (
	testGql = `query GetUser($id: ID!) { user(id: $id) { id } }`

	testSchemaGql = `type Query {
  user(id: ID!): User
}

type User {
  id: ID!
}
`
)

var testDoc *gen.Document

func TestMain(m *testing.M) {
	qdoc, err := parser.ParseQuery(&ast.Source{Name: "test.graphql", Input: testGql})
	if err != nil {
		panic(err)
	}

	schema := gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphql", Input: testSchemaGql})
	testDoc = &gen.Document{Name: "test", Schema: schema, Doc: qdoc}

	os.Exit(m.Run())
}

func TestGenerator_Generate(t *testing.T) {
	// Get helper cmd
	cmd := helperCommand(t, "generate")

	var b bytes.Buffer
	g := &Generator{
		Name: "test",
		Cmd:  cmd,
	}
	ctx := gen.WithContext(context.Background(), gen.TestCtx{Writer: &b})
	err := g.Generate(ctx, testDoc, map[string]interface{}{"hello": "world!"})
	if err != nil {
		t.Error(err)
		return
	}

	ex := "doc: test, hello: world!, schema: true"
	if b.String() != ex {
		t.Fatalf("expected: %s but got: %s", ex, b.String())
	}
}

func TestUnknownPlugin(t *testing.T) {
	g := &Generator{Name: "nonexistent", Prefix: "gqlsdk-gen-"}

	err1 := g.Generate(nil, &gen.Document{Name: "Test"}, nil)
	if err1 == nil {
		t.Fail()
		return
	}

	err2 := g.Generate(nil, &gen.Document{Name: "Test"}, nil)
	if err2 == nil {
		t.Fail()
		return
	}

	// Lookup failures are cached: both runs must report the same problem.
	ce1, ce2 := err1.(gen.GeneratorError), err2.(gen.GeneratorError)
	if ce1.Msg != ce2.Msg {
		t.Fail()
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		fmt.Fprint(os.Stderr, err)
		os.Exit(1)
	}

	resp := Response{
		Files: []File{{
			Name: req.DocName + ".txt",
			Content: fmt.Sprintf("doc: %s, hello: %v, schema: %t",
				req.DocName, req.Options["hello"], strings.Contains(req.Schema, "type Query")),
		}},
	}
	if err := json.NewEncoder(os.Stdout).Encode(resp); err != nil {
		fmt.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}
