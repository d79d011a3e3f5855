// signbridge is the browser-facing gateway in front of the document signing
// service.
//
// Usage:
//
//	signbridge serve [--config file] [--port 8787] [--backend-url URL]
//	signbridge config [--format json]
//	signbridge version
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sufield/signbridge/internal/cli"
)

// Process exit codes.
const (
	exitOK       = 0
	exitRuntime  = 1
	exitUsage    = 2
	exitConfig   = 3
	exitInternal = 4
)

func main() {
	if err := cli.Execute(); err != nil {
		code := exitCode(err)
		if code != exitOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", cli.RedactError(err))
		}
		os.Exit(code)
	}
}

func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return exitOK
	case errors.Is(err, cli.ErrUsage):
		return exitUsage
	case errors.Is(err, cli.ErrConfig):
		return exitConfig
	case errors.Is(err, cli.ErrInternal):
		return exitInternal
	default:
		return exitRuntime
	}
}
