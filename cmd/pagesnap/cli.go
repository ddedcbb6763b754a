package main

import (
	"context"
	"io"
)

// Dependencies holds context and output streams for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Serve ServeCmd `cmd:"" default:"1" help:"Start the article rendering server"`
}
