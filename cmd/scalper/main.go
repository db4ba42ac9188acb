package main

import (
	"fmt"
	"os"

	"scalper/internal/app"
	"scalper/internal/cli"
	"scalper/internal/observability"
)

func main() {
	bootstrap, err := observability.NewLogger(observability.Options{LogLevel: "info"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := app.GracefulShutdown(bootstrap)

	err = cli.Execute(ctx)
	code := cli.ExitCode(ctx, err)
	cancel()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}
