package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	wordflow "github.com/nickigann03/word-flow-app"
)

var (
	verbose bool
	library string
	adapter string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wordflow",
	Short: "A local-first sermon note manager with multi-page notes and study tools",
	Long: `Wordflow keeps sermon notes as documents in a local library.
Notes have multiple pages and floating annotations; study commands look up
Bible passages and theological definitions.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Optional; API keys for the study commands usually live here.
		_ = godotenv.Load()

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// openService builds the service for the configured library location.
func openService(mustExist bool) *wordflow.Service {
	svc, err := wordflow.New(library,
		wordflow.WithAdapter(adapter),
		wordflow.WithMustExist(mustExist),
		wordflow.WithLogger(slog.Default()),
	)
	if err != nil {
		fatal("Error opening library", err)
	}
	return svc
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&library, "library", ".", "Library location (directory for fs, database file for sqlite)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "fs", "Storage adapter (fs or sqlite)")
}
