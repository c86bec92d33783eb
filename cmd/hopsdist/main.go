// cmd/hopsdist/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/logicalclocks/hopsdist/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		// The installer's own exit status wins
		var installErr *cli.InstallError
		if errors.As(err, &installErr) && installErr.Code > 0 {
			return installErr.Code
		}
		return 1
	}
	return 0
}
