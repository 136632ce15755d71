package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"photo-index/internal/memory"
	"photo-index/internal/workers"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the display rendition cache",
}

var cacheWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Generate missing display renditions",
	Long: `Generate the 600px display rendition of every indexed photo that does not
have one yet. Rendering pauses while heap usage is above the memory pause
mark.`,
	RunE: runCacheWarm,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheWarmCmd)

	cacheWarmCmd.Flags().Int("concurrency", 0, "Number of render workers (default: RENDER_WORKERS or one per CPU)")
	cacheWarmCmd.Flags().Bool("no-progress", false, "Disable the progress bar")
}

func runCacheWarm(cmd *cobra.Command, _ []string) error {
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

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()
	defer monitor.Stop()
	c.images.SetThrottle(monitor)

	n := mustGetInt(cmd, "concurrency")
	if n <= 0 {
		n = workers.ForRender(0)
	}

	entries := c.store.All(true)
	fmt.Printf("Warming %d display renditions with %d workers\n", len(entries), n)

	var progress func(done, total int)
	if !mustGetBool(cmd, "no-progress") {
		progress = newWarmProgress()
	}

	start := time.Now()
	result, err := c.images.Warm(ctx, entries, n, progress)
	if err != nil {
		return fmt.Errorf("cache warm-up failed: %w", err)
	}

	fmt.Printf("\nGenerated %d, already cached %d, failed %d in %v\n",
		result.Generated, result.Skipped, result.Failed, time.Since(start).Round(time.Millisecond))
	return nil
}

func newWarmProgress() func(done, total int) {
	var (
		mu  sync.Mutex
		bar *progressbar.ProgressBar
	)
	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Rendering"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("images"),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionFullWidth(),
			)
		}
		_ = bar.Set(done)
	}
}
