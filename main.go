package main

import (
	"fmt"
	"os"

	"github.com/gqlsdk/gqlsdk/cmd"
	"github.com/gqlsdk/gqlsdk/sdk"
)

var cli *cmd.CommandLine

func init() {
	cli = cmd.NewCLI()
	cli.AllowPlugins("gqlsdk-gen-")

	// Register the typed SDK generator
	cli.RegisterGenerator(new(sdk.Generator), "sdk_out", "sdk_opt",
		"Generate a typed SDK for GraphQL operations.")
}

func main() {
	if err := cli.Run(os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
