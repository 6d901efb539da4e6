// Command rebuttal runs debate assignments from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Iron-Ham/rebuttal/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
