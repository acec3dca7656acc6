// Command dupgraph finds connected components and communities of
// near-duplicate elements bucketed by an LSH stage.
//
//	dupgraph cc --source-dsn lsh.db --output cc.bin
//	dupgraph cmd --input cc.bin --output cmd.bin --algorithm label_propagation
//	dupgraph dumpcmd cmd.bin --format json
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
