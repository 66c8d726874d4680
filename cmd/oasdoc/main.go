// Command oasdoc generates an OpenAPI document from annotated sources.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/reoring/oasdoc/cmd/oasdoc/internal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := internal.Run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
