// Package main is the single-binary entrypoint for the nearlink registry.
package main

import "github.com/nearlink-net/nearlink/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
