// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/taibuivan/ficdex/internal/core/index"
	"github.com/taibuivan/ficdex/internal/platform/config"
	"github.com/taibuivan/ficdex/internal/platform/database"
)

// errReported marks a failure whose details were already printed.
var errReported = errors.New("one or more operations failed")

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

// app carries the global flags and the streams of one invocation.
type app struct {
	dbPath  string
	driver  string
	dsn     string
	verbose bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "manage",
		Short: "Index maintenance for the story dataset",
		Long: `Management commands for the story dataset.

Creates, inspects and removes the secondary indexes that keep searches and
rankings fast on large dumps. The dataset location comes from DATABASE_DRIVER,
DATABASE_PATH and DATABASE_URL unless overridden by flags.`,
		Example: `  manage create-indexes
  manage analyze
  manage remove-indexes --yes
  manage --db ./data/metadata-full.sqlite describe`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "dataset file path (sqlite)")
	root.PersistentFlags().StringVar(&a.driver, "driver", "", "dataset driver: sqlite or postgres")
	root.PersistentFlags().StringVar(&a.dsn, "dsn", "", "dataset connection string")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log every operation to stderr")

	root.AddCommand(
		a.newCreateCmd(),
		a.newAnalyzeCmd(),
		a.newRemoveCmd(),
		a.newDescribeCmd(),
		a.newOptimizeCmd(),
	)

	return root
}

// logger returns a JSON logger on stderr when verbose, a silent one otherwise.
func (a *app) logger() *slog.Logger {
	if !a.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewJSONHandler(a.stderr, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With(slog.String("app", "ficdex-manage"))
}

// target resolves the dataset from the environment and the global flags.
func (a *app) target() (driver, dsn string, err error) {
	cfg, err := config.Load()
	if err != nil {
		return "", "", err
	}

	driver, dsn = cfg.DatabaseDriver, cfg.DSN()
	if a.dbPath != "" {
		driver, dsn = config.DriverSQLite, a.dbPath
	}
	if a.driver != "" {
		driver = a.driver
	}
	if a.dsn != "" {
		dsn = a.dsn
	}
	return driver, dsn, nil
}

// withManager opens the dataset writable, runs fn with an index manager and
// closes the dataset.
func (a *app) withManager(ctx context.Context, fn func(*index.Manager) error, opts ...index.Option) error {
	driver, dsn, err := a.target()
	if err != nil {
		return err
	}

	logger := a.logger()
	db, err := database.Open(ctx, driver, dsn,
		database.WithLogger(logger),
		database.WithCacheSize(10000),
		database.WithTempStoreMemory(),
	)
	if err != nil {
		return fmt.Errorf("dataset %s: %w", dsn, err)
	}
	defer db.Close()

	return fn(index.NewManager(db, logger, opts...))
}

// printList writes a heading followed by one bullet per item.
func (a *app) printList(heading string, items []string) {
	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, heading)
	for _, item := range items {
		fmt.Fprintf(a.stdout, "   • %s\n", item)
	}
}

func (a *app) printFailures(failures []index.Failure) {
	lines := make([]string, 0, len(failures))
	for _, f := range failures {
		lines = append(lines, f.Err.Error())
	}
	a.printList(red(fmt.Sprintf("%d errors occurred:", len(failures))), lines)
}

// progress prints each catalog entry as the batch reaches it.
func (a *app) progress(outcome index.Outcome) {
	prefix := fmt.Sprintf("  [%2d/%d]", outcome.Position, outcome.Total)
	name := outcome.Spec.Name

	switch outcome.Action {
	case index.ActionSkipped:
		fmt.Fprintf(a.stdout, "%s %s %s %s\n", prefix, yellow("skipped"), name, faint("(already exists)"))
	case index.ActionFailed:
		fmt.Fprintf(a.stdout, "%s %s %s: %v\n", prefix, red("failed"), name, outcome.Err)
	default:
		fmt.Fprintf(a.stdout, "%s %s %s in %.2fs\n", prefix, green(string(outcome.Action)), name, outcome.Elapsed.Seconds())
		if outcome.Spec.Description != "" {
			fmt.Fprintf(a.stdout, "         %s\n", faint(outcome.Spec.Description))
		}
	}
}
