package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func chainPreRunEs(preRunEs ...func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		for i := 0; i < len(preRunEs) && err == nil; i++ {
			err = preRunEs[i](cmd, args)
		}
		return
	}
}

// validateFilenames validates that only GraphQL files are provided.
func validateFilenames(cmd *cobra.Command, args []string) error {
	for _, fileName := range args {
		ext := filepath.Ext(fileName)
		if ext != ".gql" && ext != ".graphql" && ext != ".graphqls" {
			return fmt.Errorf("gqlsdk: invalid file extension: %s", fileName)
		}
	}

	return nil
}

// enableVerboseLogging replaces the global zap logger when -v is given.
// The default global logger is a nop, so generators log nothing otherwise.
func enableVerboseLogging(cmd *cobra.Command, args []string) error {
	v, err := cmd.Flags().GetBool("verbose")
	if err != nil || !v {
		return err
	}

	l, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(l)

	return nil
}

// initGenDirs initializes each directory each generator will be outputting to.
func initGenDirs(fs afero.Fs, dirs *[]string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		for _, dir := range *dirs {
			zap.S().Info("creating directory:", dir)
			if err = fs.MkdirAll(dir, 0755); err != nil {
				break
			}
		}
		return
	}
}
