package main

import (
	"fmt"
	"io"
	"os"

	"das.dev/contracts/witness"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and maps the outcome to a process exit code. A
// rejection exits with the code the on-chain script would have returned,
// taken modulo 256; any other failure exits with 2.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	root.opts.close()
	if err == nil {
		return 0
	}
	_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := witness.CodeOf(err); ok {
		return int(uint8(code.ExitCode()))
	}
	return 2
}
