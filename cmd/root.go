package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "photo-index",
	Short: "Index a photo library and serve it to the gallery",
	Long: `Photo Index walks a media tree, extracts capture metadata, resolves
coordinates to localities and infers the rotation of sideways photos.
The resulting index is served over HTTP together with 600px display
renditions and random chunks for the slideshow.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("media-dir", "", "Media directory (overrides MEDIA_DIR)")
	rootCmd.PersistentFlags().String("cache-dir", "", "Cache directory (overrides CACHE_DIR)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides LOG_LEVEL)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
