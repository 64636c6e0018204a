package cli

import (
	"context"
	"fmt"

	"morphtest/internal/i18n"
)

// Run is a high-level CLI entrypoint suitable for black-box tests.
// It accepts the argument slice (excluding argv[0]) and returns the semantic
// exit code plus any error.
func Run(ctx context.Context, args []string, streams Streams) (Result, error) {
	streams = streams.withDefaults()
	inv, err := ParseInvocation(args, i18n.FromEnv(streams.Getenv))
	if err != nil {
		fmt.Fprintln(streams.Stderr, err)
		return Result{ExitCode: ExitCode(err)}, err
	}
	return Execute(ctx, inv, streams)
}
