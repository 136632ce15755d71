package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"photo-index/internal/indexer"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the photo index",
	Long: `Walk the media directory and rebuild the photo index snapshot.
A full build enriches every file. An incremental build reuses the entries
of files that have not changed since the last successful build.`,
	RunE: runIndex,
}

var indexAddCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Add individual files to the index",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIndexAdd,
}

var indexEnrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Complete enrichment of files queued by add",
	RunE:  runIndexEnrich,
}

var indexHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent index builds",
	RunE:  runIndexHistory,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexAddCmd, indexEnrichCmd, indexHistoryCmd)

	indexCmd.Flags().Bool("incremental", false, "Reuse entries of unchanged files")
	indexCmd.Flags().Int("workers", 0, "Number of enrichment workers (overrides INDEX_WORKERS)")
	indexCmd.Flags().Bool("no-progress", false, "Disable the progress bar")

	indexHistoryCmd.Flags().Int("limit", 10, "Number of builds to show")
	indexHistoryCmd.Flags().Bool("json", false, "Output as JSON")
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	cfg, err := prepare(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	c, err := openComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.close(context.Background())

	if !mustGetBool(cmd, "no-progress") {
		c.builder.SetOnProgress(newBuildProgress("Indexing photos"))
	}

	start := time.Now()
	entries, err := c.builder.Run(ctx, mustGetBool(cmd, "incremental"))
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	p := c.builder.GetProgress()
	fmt.Printf("\nIndexed %d photos (%d reused) in %v\n", len(entries), p.Reused, time.Since(start).Round(time.Millisecond))
	fmt.Printf("Index written to %s\n", c.store.IndexPath())
	return nil
}

// newBuildProgress renders builder progress as a terminal bar. The bar is
// created once the walk has counted the files.
func newBuildProgress(description string) func(indexer.Progress) {
	var (
		mu  sync.Mutex
		bar *progressbar.ProgressBar
	)
	return func(p indexer.Progress) {
		mu.Lock()
		defer mu.Unlock()
		if p.Total == 0 {
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(p.Total,
				progressbar.OptionSetDescription(description),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("photos"),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionFullWidth(),
			)
		}
		_ = bar.Set(p.Processed)
		if !p.Running {
			_ = bar.Finish()
		}
	}
}

func runIndexAdd(cmd *cobra.Command, args []string) error {
	cfg, err := prepare(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	c, err := openComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.close(context.Background())

	added, err := c.builder.Ingest(ctx, args...)
	if err != nil {
		return fmt.Errorf("adding photos failed: %w", err)
	}

	for _, e := range added {
		date := "unknown date"
		if e.Date != nil {
			date = *e.Date
		}
		fmt.Printf("  %s  %s\n", e.Filename, date)
	}
	fmt.Printf("Added %d photos\n", len(added))
	if !cfg.EnrichOnIngest {
		fmt.Println("Location and rotation are queued; run 'photo-index index enrich' to complete them")
	}
	return nil
}

func runIndexEnrich(cmd *cobra.Command, _ []string) error {
	cfg, err := prepare(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	c, err := openComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.close(context.Background())

	n, err := c.builder.EnrichPending(ctx)
	if err != nil {
		return fmt.Errorf("enrichment failed: %w", err)
	}
	fmt.Printf("Enriched %d queued photos\n", n)
	return nil
}

func runIndexHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := prepare(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	c, err := openComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.close(context.Background())

	builds, err := c.db.RecentBuilds(ctx, mustGetInt(cmd, "limit"))
	if err != nil {
		return fmt.Errorf("reading build history: %w", err)
	}

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(builds)
	}

	if len(builds) == 0 {
		fmt.Println("No builds recorded")
		return nil
	}
	for _, b := range builds {
		finished := "-"
		if b.FinishedAt != nil {
			finished = b.FinishedAt.Sub(b.StartedAt).Round(time.Second).String()
		}
		fmt.Printf("%s  %-11s  %-9s  %6d indexed  %6d reused  %s", b.StartedAt.Format(time.RFC3339), b.Mode, b.Status, b.FilesIndexed, b.FilesReused, finished)
		if b.Error != "" {
			fmt.Printf("  %s", b.Error)
		}
		fmt.Println()
	}
	return nil
}
