package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/storage"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/storage/sqlite"
)

var (
	statusFilter  string
	dialectFilter string
	limitFlag     int
	exportFormat  string
	exportOutput  string
	olderThanFlag time.Duration
	forceFlag     bool
)

var runsCmd = &cobra.Command{
	Use:     "runs",
	Aliases: []string{"run-history", "r"},
	Short:   "Inspect recorded runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show details of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history as markdown, JSON or YAML",
	RunE:  runRunsExport,
}

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than a given age",
	RunE:  runRunsPrune,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsExportCmd, runsPruneCmd)

	for _, c := range []*cobra.Command{runsListCmd, runsExportCmd} {
		c.Flags().StringVar(&statusFilter, "status", "", "Filter by status (ok, fault, dependency-missing)")
		c.Flags().StringVar(&dialectFilter, "dialect", "", "Filter by dialect (js, ts)")
		c.Flags().IntVar(&limitFlag, "limit", 20, "Max runs to include")
	}

	runsExportCmd.Flags().StringVar(&exportFormat, "format", "md", "Export format: md, json or yaml")
	runsExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")

	runsPruneCmd.Flags().DurationVar(&olderThanFlag, "older-than", 30*24*time.Hour, "Delete runs older than this")
	runsPruneCmd.Flags().BoolVar(&forceFlag, "force", false, "Skip confirmation")
}

func openStore() (storage.Store, error) {
	if !cfg.Storage.Enabled {
		return nil, fmt.Errorf("run history is disabled (storage.enabled = false)")
	}
	return sqlite.Open(cfg.Storage.DBPath)
}

func listOptions() storage.RunListOptions {
	return storage.RunListOptions{
		Status:  storage.RunStatus(statusFilter),
		Dialect: dialectFilter,
		Limit:   limitFlag,
	}
}

func runRunsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), listOptions())
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	// Header
	fmt.Printf("%-10s %-8s %-20s %-10s %-8s %10s  %s\n", "ID", "DIALECT", "STATUS", "FAULT", "ORIGIN", "DURATION", "CREATED")
	fmt.Println(strings.Repeat("─", 85))

	for _, r := range runs {
		fault := r.FaultKind
		if fault == "" {
			fault = "-"
		}
		fmt.Printf("%-10s %-8s %-20s %-10s %-8s %8dms  %s\n",
			shortID(r.ID), r.Dialect, r.Status, fault, r.Origin, r.DurationMs, timeAgo(r.CreatedAt))
	}

	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	r, err := store.GetRun(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Run:      %s\n", r.ID)
	fmt.Printf("Dialect:  %s\n", r.Dialect)
	fmt.Printf("Status:   %s\n", r.Status)
	if r.FaultKind != "" {
		fmt.Printf("Fault:    %s\n", r.FaultKind)
	}
	fmt.Printf("Origin:   %s\n", r.Origin)
	fmt.Printf("Duration: %dms\n", r.DurationMs)
	fmt.Printf("Output:   %d bytes\n", r.OutputBytes)
	fmt.Printf("Created:  %s\n", r.CreatedAt.Format(time.RFC3339))
	return nil
}

func runRunsExport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), listOptions())
	if err != nil {
		return err
	}

	var output string
	switch exportFormat {
	case "json":
		data, err := storage.ExportJSON(runs)
		if err != nil {
			return err
		}
		output = string(data) + "\n"
	case "yaml", "yml":
		data, err := storage.ExportYAML(runs)
		if err != nil {
			return err
		}
		output = string(data)
	case "md", "markdown":
		output = storage.ExportMarkdown(runs)
	default:
		return fmt.Errorf("unknown export format %q (md, json, yaml)", exportFormat)
	}

	if exportOutput != "" {
		return os.WriteFile(exportOutput, []byte(output), 0o644)
	}

	fmt.Print(output)
	return nil
}

func runRunsPrune(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	before := time.Now().Add(-olderThanFlag)
	if !forceFlag {
		fmt.Printf("Delete runs created before %s? [y/N] ", before.Format(time.RFC3339))
		var confirm string
		fmt.Scanln(&confirm)
		if strings.ToLower(confirm) != "y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	n, err := store.PruneRuns(context.Background(), before)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d run(s)\n", n)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
