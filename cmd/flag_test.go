package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestGenFlag_Set(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		Name   string
		Arg    string
		outDir string
		opts   map[string]interface{}
	}{
		{
			Name:   "DirOnly",
			Arg:    "testout",
			outDir: filepath.Join(wd, "testout"),
			opts:   map[string]interface{}{},
		},
		{
			Name:   "AbsDir",
			Arg:    "/out",
			outDir: "/out",
			opts:   map[string]interface{}{},
		},
		{
			Name:   "OptsAndDir",
			Arg:    "rawRequest=true,documentMode=string:/out",
			outDir: "/out",
			opts:   map[string]interface{}{"rawRequest": true, "documentMode": "string"},
		},
		{
			Name:   "BareKeyAndInt",
			Arg:    "useTypeImports,depth=3:/out",
			outDir: "/out",
			opts:   map[string]interface{}{"useTypeImports": true, "depth": int64(3)},
		},
		{
			Name:   "QuotedString",
			Arg:    `usingObservableFrom="zen-observable-ts":/out`,
			outDir: "/out",
			opts:   map[string]interface{}{"usingObservableFrom": "zen-observable-ts"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(subT *testing.T) {
			var geners []generator
			var outDirs []string
			f := genFlag{
				opts:    make(map[string]interface{}),
				geners:  &geners,
				outDirs: &outDirs,
			}

			if err := f.Set(testCase.Arg); err != nil {
				subT.Fatal(err)
			}

			if len(outDirs) != 1 || outDirs[0] != testCase.outDir {
				subT.Errorf("expected outDir: %s, got: %v", testCase.outDir, outDirs)
			}
			if !reflect.DeepEqual(f.opts, testCase.opts) {
				subT.Errorf("expected opts: %v, got: %v", testCase.opts, f.opts)
			}
		})
	}
}

func TestGenFlag_SetOpt(t *testing.T) {
	f := genFlag{opts: make(map[string]interface{}), isOpt: true}

	if err := f.Set("rawRequest=true,importOperationTypesFrom=Types"); err != nil {
		t.Fatal(err)
	}

	ex := map[string]interface{}{"rawRequest": true, "importOperationTypesFrom": "Types"}
	if !reflect.DeepEqual(f.opts, ex) {
		t.Errorf("expected opts: %v, got: %v", ex, f.opts)
	}
}

func TestGenFlag_SetMalformed(t *testing.T) {
	f := genFlag{opts: make(map[string]interface{}), isOpt: true}

	if err := f.Set("=true"); err == nil {
		t.Error("expected error for option with empty key")
	}
}
