package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/mmcdole/sbx/internal/slicebox"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// execute runs one sbx invocation. Errors already shown to the user are not
// printed a second time.
func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	e := &env{}
	defer e.close()

	root := newRootCmd(e)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if err != nil {
		var shown reportedError
		if !errors.As(err, &shown) {
			fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		if slicebox.IsOffline(err) {
			fmt.Fprintln(errOut, "Check that the node is running, or pick another one with --server.")
		}
	}
	return err
}

// reportedError wraps an error whose message the notifier already printed
type reportedError struct {
	err error
}

func (r reportedError) Error() string { return r.err.Error() }
func (r reportedError) Unwrap() error { return r.err }
