package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gqlsdk/gqlsdk/gen"
)

// generator pairs a registered generator with the options and output
// directory parsed from its *_out flag.
type generator struct {
	gen.Generator

	opts   map[string]interface{}
	outDir string
}

// genFlag represents a Generator flag: *_out or *_opt
type genFlag struct {
	g    gen.Generator
	opts map[string]interface{}

	geners  *[]generator
	outDirs *[]string

	isOpt bool
}

func (genFlag) String() string { return "" }

func (genFlag) Type() string { return "string" }

func (f genFlag) Set(arg string) (err error) {
	if f.isOpt {
		return parseOpts(arg, f.opts)
	}

	outDir := arg
	if i := strings.LastIndex(arg, ":"); i > -1 {
		if err = parseOpts(arg[:i], f.opts); err != nil {
			return
		}
		outDir = arg[i+1:]
	}

	if outDir == "" {
		outDir = "."
	}
	if !filepath.IsAbs(outDir) {
		wd, werr := os.Getwd()
		if werr != nil {
			return werr
		}
		outDir = filepath.Join(wd, outDir)
	}

	*f.outDirs = append(*f.outDirs, outDir)
	*f.geners = append(*f.geners, generator{Generator: f.g, opts: f.opts, outDir: outDir})
	return
}

// parseOpts parses comma separated key=value generator options into opts.
// Values are coerced to bools and ints when they parse as ones; bare keys
// are treated as true.
func parseOpts(s string, opts map[string]interface{}) error {
	if s == "" {
		return nil
	}

	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if k == "" {
			return fmt.Errorf("gqlsdk: malformed generator option: %q", pair)
		}
		if !ok {
			opts[k] = true
			continue
		}

		switch {
		case v == "true" || v == "false":
			opts[k] = v == "true"
		default:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				opts[k] = n
				continue
			}
			opts[k] = strings.Trim(v, `"`)
		}
	}

	return nil
}
