// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"bufio"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/taibuivan/ficdex/internal/core/index"
)

// Probe classification thresholds.
const (
	slowProbe = time.Second
	fastProbe = 100 * time.Millisecond
)

func (a *app) newCreateCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "create-indexes",
		Short: "Create database indexes for better search performance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withManager(cmd.Context(), func(m *index.Manager) error {
				fmt.Fprintln(a.stdout, bold("Creating database indexes for better search performance..."))
				fmt.Fprintln(a.stdout, faint("This may take several minutes for large datasets."))

				result, err := m.Ensure(cmd.Context(), force)
				if result != nil {
					a.printEnsure(result)
				}
				if err != nil {
					return err
				}
				if len(result.Errors) > 0 {
					return errReported
				}

				fmt.Fprintln(a.stdout)
				fmt.Fprintln(a.stdout, green("Database indexing complete."))
				return nil
			}, index.WithProgress(a.progress))
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "drop and recreate indexes that already exist")
	return cmd
}

func (a *app) printEnsure(result *index.EnsureResult) {
	if len(result.Created) > 0 {
		a.printList(green(fmt.Sprintf("Successfully created %d indexes:", len(result.Created))), result.Created)
	}
	if len(result.Skipped) > 0 {
		a.printList(yellow(fmt.Sprintf("Skipped %d existing indexes:", len(result.Skipped))), result.Skipped)
	}
	if len(result.Errors) > 0 {
		a.printFailures(result.Errors)
	}
}

func (a *app) newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Analyze current database performance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withManager(cmd.Context(), func(m *index.Manager) error {
				fmt.Fprintln(a.stdout, bold("Analyzing database performance..."))

				timings, err := m.Measure(cmd.Context(), index.DefaultProbes(m.Dialect()))
				if err != nil {
					return err
				}

				fmt.Fprintln(a.stdout)
				fmt.Fprintln(a.stdout, "Performance Analysis Results:")
				fmt.Fprintln(a.stdout, strings.Repeat("-", 40))
				for _, timing := range timings {
					fmt.Fprintf(a.stdout, "%-20s | %6.3fs | %s\n", timing.Name, timing.Elapsed.Seconds(), grade(timing.Elapsed))
				}

				existing, err := m.ListExisting(cmd.Context())
				if err != nil {
					return err
				}
				if len(existing) == 0 {
					fmt.Fprintln(a.stdout)
					fmt.Fprintln(a.stdout, yellow("No custom indexes found. Consider running 'create-indexes' for better performance."))
					return nil
				}

				names := make([]string, 0, len(existing))
				for name := range existing {
					names = append(names, name)
				}
				sort.Strings(names)
				a.printList(fmt.Sprintf("Found %d existing indexes:", len(names)), names)
				return nil
			})
		},
	}
}

// grade labels a probe timing.
func grade(elapsed time.Duration) string {
	switch {
	case elapsed > slowProbe:
		return red("SLOW")
	case elapsed < fastProbe:
		return green("FAST")
	default:
		return yellow("OK")
	}
}

func (a *app) newRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove-indexes",
		Short: "Remove all catalog indexes from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withManager(cmd.Context(), func(m *index.Manager) error {
				fmt.Fprintln(a.stdout, yellow("This will remove ALL catalog indexes from the database."))

				if !yes && !a.confirm("Are you sure you want to continue? (yes/no): ") {
					fmt.Fprintln(a.stdout, "Operation cancelled.")
					return errReported
				}

				result, err := m.Drop(cmd.Context(), true)
				if err != nil {
					return err
				}

				if len(result.Removed) > 0 {
					a.printList(green(fmt.Sprintf("Removed %d indexes:", len(result.Removed))), result.Removed)
				}
				if len(result.Errors) > 0 {
					a.printFailures(result.Errors)
					return errReported
				}

				fmt.Fprintln(a.stdout)
				if len(result.Removed) == 0 {
					fmt.Fprintln(a.stdout, "No catalog indexes found to remove.")
					return nil
				}
				fmt.Fprintln(a.stdout, green("All catalog indexes removed."))
				return nil
			}, index.WithProgress(a.progress))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// confirm prompts on stdout and accepts only the answer "yes".
func (a *app) confirm(prompt string) bool {
	fmt.Fprint(a.stdout, prompt)

	scanner := bufio.NewScanner(a.stdin)
	if !scanner.Scan() {
		fmt.Fprintln(a.stdout)
		return false
	}
	return strings.ToLower(strings.TrimSpace(scanner.Text())) == "yes"
}

func (a *app) newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "List existing indexes with their kind and the database size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withManager(cmd.Context(), func(m *index.Manager) error {
				desc, err := m.Describe(cmd.Context())
				if err != nil {
					return err
				}
				a.printDescription(desc)
				return nil
			})
		},
	}
}

func (a *app) printDescription(desc *index.Description) {
	fmt.Fprintf(a.stdout, "Total indexes: %d\n", desc.Count)
	for _, info := range desc.Indexes {
		fmt.Fprintf(a.stdout, "  %-26s %-10s %s\n", info.Name, info.Kind, faint(info.Definition))
	}
	fmt.Fprintf(a.stdout, "Database size: %s\n", humanize.IBytes(uint64(max(desc.SizeBytes, 0))))
}

func (a *app) newOptimizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Measure, create indexes, measure again and report the speedup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			return a.withManager(ctx, func(m *index.Manager) error {
				probes := index.DefaultProbes(m.Dialect())

				// 1. Baseline
				fmt.Fprintln(a.stdout, bold("1. Current performance"))
				before, err := m.Measure(ctx, probes)
				if err != nil {
					return err
				}
				a.printTimings(before)

				// 2. Indexes
				fmt.Fprintln(a.stdout)
				fmt.Fprintln(a.stdout, bold("2. Creating performance indexes"))
				result, err := m.Ensure(ctx, false)
				if err != nil {
					return err
				}

				// 3. After
				fmt.Fprintln(a.stdout)
				fmt.Fprintln(a.stdout, bold("3. Performance after indexing"))
				after, err := m.Measure(ctx, probes)
				if err != nil {
					return err
				}
				a.printTimings(after)

				// 4. Comparison
				fmt.Fprintln(a.stdout)
				fmt.Fprintln(a.stdout, bold("4. Improvement summary"))
				for i := range before {
					fmt.Fprintln(a.stdout, speedup(before[i], after[i]))
				}

				// 5. Inventory
				fmt.Fprintln(a.stdout)
				fmt.Fprintln(a.stdout, bold("5. Index summary"))
				fmt.Fprintf(a.stdout, "Created %d new indexes\n", len(result.Created))
				fmt.Fprintf(a.stdout, "Skipped %d existing indexes\n", len(result.Skipped))
				desc, err := m.Describe(ctx)
				if err != nil {
					return err
				}
				a.printDescription(desc)

				if len(result.Errors) > 0 {
					a.printFailures(result.Errors)
					return errReported
				}
				return nil
			}, index.WithProgress(a.progress))
		},
	}
}

func (a *app) printTimings(timings []index.Timing) {
	for _, timing := range timings {
		fmt.Fprintf(a.stdout, "  %s: %.3fs\n", timing.Name, timing.Elapsed.Seconds())
	}
}

// speedup renders one before/after comparison row.
func speedup(before, after index.Timing) string {
	b, c := before.Elapsed.Seconds(), after.Elapsed.Seconds()

	var improvement float64
	if b > 0 {
		improvement = (b - c) / b * 100
	}

	factor := "inf"
	if c > 0 {
		factor = fmt.Sprintf("%.1f", b/c)
	}

	return fmt.Sprintf("%-20s | %6.3fs -> %6.3fs | %5.1f%% faster (%sx speedup)",
		before.Name, b, c, improvement, factor)
}
