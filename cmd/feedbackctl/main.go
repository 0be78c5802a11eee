// Command feedbackctl is the terminal client for feedback-hub. It talks to
// the API, or to the built-in sample dataset while demo mode is on.
package main

import (
	"fmt"
	"os"

	"github.com/tbourn/feedback-hub/internal/client"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if client.IsAuth(err) {
			fmt.Fprintln(os.Stderr, "hint: pass --user or set FEEDBACK_HUB_USER, or enable demo mode with `feedbackctl demo on`")
		}
		os.Exit(1)
	}
}
