// Command stockctl runs stock imports and exports from the shell against the
// same store the server uses.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/stockbook/internal/core"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints the technical error and, when one applies, the
// user-facing message with its support code.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, "error:", err)
	if core.IsUserFacing(err) {
		fmt.Fprintln(w, core.FormatUserError(err))
	}
}
