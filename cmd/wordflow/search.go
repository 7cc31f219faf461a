package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nickigann03/word-flow-app/pkg/scripture"
)

var (
	searchTranslation string
	searchLimit       int
)

var searchCmd = &cobra.Command{
	Use:   "search [keywords]",
	Short: "Search Scripture by keyword",
	Long: `Search a translation for verses matching keywords.
Requires API_BIBLE_KEY in the environment.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := scripture.NewClient(scripture.Config{
			APIBibleKey: os.Getenv("API_BIBLE_KEY"),
			Logger:      slog.Default(),
		})

		results, err := client.Search(context.Background(), args[0], searchTranslation, searchLimit)
		if err != nil {
			fatal("Error searching", err)
		}

		for _, r := range results {
			fmt.Printf("%s  %s\n", r.Reference, r.Text)
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchTranslation, "translation", "nkjv", "Translation id to search")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results")
}
