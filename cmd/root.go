package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/gqlsdk/gqlsdk/gen"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	gqlparser "github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
	"go.uber.org/zap"
)

// livePrelude declares the @live directive so tagged queries validate.
const livePrelude = `directive @live on QUERY
`

type gqlsdkCmd struct {
	*baseCmd

	fs afero.Fs
}

func (c *CommandLine) newGqlsdkCmd(gens []genConfig, fs afero.Fs) *gqlsdkCmd {
	cmd := &gqlsdkCmd{
		baseCmd: &baseCmd{Command: &cobra.Command{
			Use:   "gqlsdk",
			Short: "A GraphQL typed SDK generator",
			Long: `gqlsdk generates a typed SDK from GraphQL operation documents.

Generators are specified by using a *_out flag. The argument given to this
type of flag can be either:
	1) *_out=some/directory/to/output/file(s)/to
	2) *_out=comma=separated,key=val,generator=option,pairs=then:some/directory/to/output/file(s)/to

An additional flag, *_opt, can be used to pass options to a generator.`,
			Example: "gqlsdk -s schema.graphql --sdk_out=rawRequest=true:./client operations.graphql",
			Args:    cobra.ArbitraryArgs,
		}},
		fs: fs,
	}

	var geners []generator
	var outDirs []string

	for _, gc := range gens {
		f := &genFlag{
			g:       gc.g,
			opts:    make(map[string]interface{}),
			geners:  &geners,
			outDirs: &outDirs,
		}
		cmd.Flags().Var(f, gc.name, gc.help)

		if gc.opt != "" {
			cmd.Flags().Var(
				&genFlag{g: gc.g, opts: f.opts, geners: &geners, outDirs: &outDirs, isOpt: true},
				gc.opt,
				"Pass additional options to the "+gc.name+" generator.",
			)
		}
	}

	cmd.Flags().StringSliceP("schema", "s", nil, `Specify the schema file(s) to validate
operations against. May be specified multiple
times; files are merged in order.`)
	cmd.Flags().BoolP("verbose", "v", false, "Output logging")

	cmd.PreRunE = chainPreRunEs(
		validateFilenames,
		enableVerboseLogging,
		initGenDirs(fs, &outDirs),
	)
	cmd.RunE = cmd.run(&geners)

	return cmd
}

type genCtx struct {
	fs  afero.Fs
	dir string
}

func (ctx *genCtx) Open(name string) (io.WriteCloser, error) {
	return ctx.fs.OpenFile(filepath.Join(ctx.dir, name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
}

func (cmd *gqlsdkCmd) run(geners *[]generator) func(*cobra.Command, []string) error {
	return func(c *cobra.Command, args []string) (err error) {
		if len(args) == 0 {
			return c.Help()
		}

		schemaFiles, err := c.Flags().GetStringSlice("schema")
		if err != nil {
			return
		}
		if len(schemaFiles) == 0 {
			return errors.New("gqlsdk: at least one schema file must be provided with -s")
		}

		schema, err := cmd.loadSchema(schemaFiles)
		if err != nil {
			return
		}

		docs, err := cmd.parseInputFiles(schema, args)
		if err != nil {
			return
		}

		// Run code generators
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		for _, g := range *geners {
			gctx := gen.WithContext(ctx, &genCtx{fs: cmd.fs, dir: g.outDir})

			for _, doc := range docs {
				zap.S().Infow("running generator", "doc", doc.Name, "outDir", g.outDir)

				if err = g.Generate(gctx, doc, g.opts); err != nil {
					return
				}
			}
		}
		return
	}
}

// loadSchema parses and merges all schema files, along with the builtin
// prelude declaring the @live directive.
func (cmd *gqlsdkCmd) loadSchema(files []string) (*ast.Schema, error) {
	sources := make([]*ast.Source, 0, len(files)+1)
	sources = append(sources, &ast.Source{Name: "live.graphql", Input: livePrelude, BuiltIn: true})

	for _, f := range files {
		b, err := afero.ReadFile(cmd.fs, f)
		if err != nil {
			return nil, err
		}
		sources = append(sources, &ast.Source{Name: f, Input: string(b)})
	}

	return gqlparser.LoadSchema(sources...)
}

// parseInputFiles parses and validates all operation documents given on
// the command line.
func (cmd *gqlsdkCmd) parseInputFiles(schema *ast.Schema, args []string) ([]*gen.Document, error) {
	docs := make([]*gen.Document, 0, len(args))

	for _, filename := range args {
		b, err := afero.ReadFile(cmd.fs, filename)
		if err != nil {
			return nil, err
		}

		qdoc, err := parser.ParseQuery(&ast.Source{Name: filename, Input: string(b)})
		if err != nil {
			return nil, err
		}

		if errs := validator.Validate(schema, qdoc); len(errs) > 0 {
			for _, e := range errs {
				zap.S().Error(e.Error())
			}
			return nil, errs
		}

		name := filepath.Base(filename)
		docs = append(docs, &gen.Document{
			Name:   name[:len(name)-len(filepath.Ext(name))],
			Schema: schema,
			Doc:    qdoc,
		})
	}

	return docs, nil
}
