package main

import (
	"os"

	"rodent-genomes/cmd/filter-assemblies/commands"
	"rodent-genomes/lib/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext()
	code := commands.Execute(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}
