// Command dsstool renders DSS node configuration files from a site survey
// workbook, either once from the command line or as an HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"dsstool/internal/services"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInvalidData = 2
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and maps the outcome to an exit code.
// Problems with the input are reported as exitInvalidData.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var usage *usageError
		if errors.As(err, &usage) || services.IsClientError(err) {
			return exitInvalidData
		}
		return exitFailure
	}
	return exitOK
}

// usageError marks failures caused by the invocation itself.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }
