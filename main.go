package main

import (
	"github.com/alecthomas/kong"

	"alkoholove.dev/Alkoholove/cmd"
)

func main() {
	ctx := kong.Parse(&cmd.CLI, kong.Name("Alkoholove"), kong.Description("Alkoholove is the consistency core of a social beverage catalog."))
	err := ctx.Run(&cmd.Context{Debug: cmd.CLI.Debug})
	ctx.FatalIfErrorf(err)
}
