// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command manage maintains the secondary indexes of the story dataset.
//
// # Commands
//
//   - create-indexes: Create the catalog indexes (--force recreates them).
//   - analyze: Time representative queries and list existing indexes.
//   - remove-indexes: Drop the catalog indexes after a yes/no prompt.
//   - describe: Inventory of indexes with their kind and the dataset size.
//   - optimize: Measure, index, measure again and report the speedup.
//
// The process exits 1 when any step fails.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
	if err == nil {
		return
	}

	// Failures already reported line by line only need the exit status.
	if !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, red("Error: "+err.Error()))
	}
	stop()
	os.Exit(1)
}
