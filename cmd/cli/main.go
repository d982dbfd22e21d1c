package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/seqqap/seqqap/internal/app"
	"github.com/seqqap/seqqap/internal/cli"
	"github.com/seqqap/seqqap/internal/workspace"
)

// main is the entrypoint for the seqqap application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	code, err := run(os.Stdout, os.Args[1:])
	if err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(code)
}

// run encapsulates the main application logic for easier testing and error
// handling. The returned code distinguishes a complete run (0) from a
// partial one (3); hard failures come back as errors.
func run(outW io.Writer, args []string) (code int, err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return 0, err
	}
	if shouldExit {
		return 0, nil
	}

	// The app panics on critical startup errors such as an unreadable
	// catalog, so we recover here to provide a clean exit message.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "A critical startup error occurred: %v\n", r)
			os.Exit(2)
		}
	}()

	seqqapApp := app.NewApp(outW, appConfig, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome, err := seqqapApp.Run(ctx)
	if err != nil {
		return 0, err
	}
	switch outcome {
	case workspace.RunComplete:
		return 0, nil
	case workspace.RunPartial:
		return 3, nil
	default:
		return 1, nil
	}
}
