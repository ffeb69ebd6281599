// Package plugin contains a Generator for running external plugins as Generators.
package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os/exec"
	"sync"

	"github.com/gqlsdk/gqlsdk/gen"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"go.uber.org/zap"
)

// Request is the JSON message written to a plugin's stdin.
type Request struct {
	DocName    string                 `json:"docName"`
	Schema     string                 `json:"schema,omitempty"`
	Operations string                 `json:"operations"`
	Options    map[string]interface{} `json:"options,omitempty"`
}

// Response is the JSON message a plugin writes to its stdout.
type Response struct {
	Error string `json:"error,omitempty"`
	Files []File `json:"files"`
}

// File is a single generated file returned by a plugin.
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Generator executes an external plugin as a generator.
// The name of the plugin executable is given by the generators Prefix and Name fields.
//
type Generator struct {
	*exec.Cmd

	Name   string
	Prefix string

	lookOnce    sync.Once
	path        string
	lookPathErr error
	log         *zap.Logger
}

// Generate executes a plugin given the operation documents.
func (g *Generator) Generate(ctx context.Context, doc *gen.Document, opts map[string]interface{}) (err error) {
	defer func() {
		if err != nil {
			err = gen.GeneratorError{
				GenName: g.Prefix + g.Name,
				DocName: doc.Name,
				Msg:     err.Error(),
			}
		}
	}()

	if g.log == nil {
		g.log = zap.L().Named(g.Name).With(zap.String("doc", doc.Name))
	}

	// Lookup plugin only once
	cmd := g.Cmd
	if cmd == nil {
		g.lookOnce.Do(func() {
			pluginName := g.Prefix + g.Name
			g.path, g.lookPathErr = exec.LookPath(pluginName)
		})
		if g.lookPathErr != nil {
			return g.lookPathErr
		}
		cmd = exec.Command(g.path)
	}

	g.log.Info("encoding plugin request")
	var in bytes.Buffer
	err = json.NewEncoder(&in).Encode(Request{
		DocName:    doc.Name,
		Schema:     formatSchema(doc.Schema),
		Operations: formatDoc(doc.Doc),
		Options:    opts,
	})
	if err != nil {
		return
	}

	var out, stderr bytes.Buffer
	cmd.Stdin = &in
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	g.log.Info("running plugin")
	if err = cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return errors.New(stderr.String())
		}
		return
	}

	var resp Response
	if err = json.NewDecoder(&out).Decode(&resp); err != nil {
		return
	}
	if resp.Error != "" {
		return errors.New(resp.Error)
	}

	g.log.Info("writing plugin response files")
	gCtx := gen.Context(ctx)
	for _, f := range resp.Files {
		w, oerr := gCtx.Open(f.Name)
		if oerr != nil {
			return oerr
		}
		if _, err = io.WriteString(w, f.Content); err != nil {
			w.Close()
			return
		}
		if err = w.Close(); err != nil {
			return
		}
	}
	return
}

func formatDoc(qdoc *ast.QueryDocument) string {
	if qdoc == nil {
		return ""
	}

	var b bytes.Buffer
	formatter.NewFormatter(&b).FormatQueryDocument(qdoc)
	return b.String()
}

func formatSchema(schema *ast.Schema) string {
	if schema == nil {
		return ""
	}

	var b bytes.Buffer
	formatter.NewFormatter(&b).FormatSchema(schema)
	return b.String()
}
