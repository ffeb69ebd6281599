// Package cmd implements the command line interface for gqlsdk.
package cmd

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/gqlsdk/gqlsdk/gen"
	"github.com/gqlsdk/gqlsdk/plugin"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type option func(*CommandLine)

// WithFS configures the underlying afero.Fs used to read/write files.
func WithFS(fs afero.Fs) option {
	return func(c *CommandLine) {
		c.fs = fs
	}
}

type genConfig struct {
	g    gen.Generator
	name string
	opt  string
	help string
}

// CommandLine provides a convenient API for adding generators to gqlsdk.
type CommandLine struct {
	prefix string
	fs     afero.Fs

	cmds []cmder
	gens []genConfig
}

type cmder interface {
	getCommand() *cobra.Command
}

type baseCmd struct {
	*cobra.Command
}

func (cmd *baseCmd) getCommand() *cobra.Command { return cmd.Command }

func (c *CommandLine) addCommand(cmds ...cmder) *CommandLine {
	c.cmds = append(c.cmds, cmds...)
	return c
}

func (c *CommandLine) build() *cobra.Command {
	cmd := c.newGqlsdkCmd(c.gens, c.fs)
	for _, cmdr := range c.cmds {
		cmd.AddCommand(cmdr.getCommand())
	}

	return cmd.Command
}

// NewCLI returns a CommandLine implementation.
func NewCLI(opts ...option) (c *CommandLine) {
	c = new(CommandLine)

	for _, opt := range opts {
		opt(c)
	}

	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}

	c.addCommand(newVersionCmd())

	return
}

// AllowPlugins sets the plugin prefix to be used
// when looking up plugin executables.
//
func (c *CommandLine) AllowPlugins(prefix string) { c.prefix = prefix }

// RegisterGenerator registers a generator with the CLI.
func (c *CommandLine) RegisterGenerator(g gen.Generator, name, opt, help string) {
	c.gens = append(c.gens, genConfig{
		g:    g,
		name: name,
		opt:  opt,
		help: help,
	})
}

// registerPluginGenerators registers a plugin generator for every *_out
// flag no builtin generator claims.
func (c *CommandLine) registerPluginGenerators(args []string) {
	if c.prefix == "" {
		return
	}

	known := make(map[string]bool, len(c.gens))
	for _, gc := range c.gens {
		known[gc.name] = true
		known[gc.opt] = true
	}

	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			continue
		}

		name := strings.TrimPrefix(arg, "--")
		if i := strings.Index(name, "="); i > -1 {
			name = name[:i]
		}
		if !strings.HasSuffix(name, "_out") || known[name] {
			continue
		}
		known[name] = true

		pluginName := strings.TrimSuffix(name, "_out")
		c.RegisterGenerator(
			&plugin.Generator{Name: pluginName, Prefix: c.prefix},
			name,
			pluginName+"_opt",
			"Run the "+c.prefix+pluginName+" plugin.",
		)
	}
}

func wrapPanic(err error, stack []byte) error {
	return fmt.Errorf("gqlsdk: recovered from unexpected panic: %w\n\n%s", err, stack)
}

// Run executes the CLI.
func (c *CommandLine) Run(args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if !ok {
				rerr = fmt.Errorf("%v", r)
			}
			err = wrapPanic(rerr, debug.Stack())
		}
	}()

	c.registerPluginGenerators(args[1:])

	cmd := c.build()
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}
