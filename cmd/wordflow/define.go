package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nickigann03/word-flow-app/pkg/assistant"
)

var defineCmd = &cobra.Command{
	Use:   "define [term]",
	Short: "Define a theological term",
	Long: `Define a theological term in two sentences with a supporting verse.
Requires GROQ_API_KEY in the environment.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := assistant.NewClient(assistant.Config{
			APIKey: os.Getenv("GROQ_API_KEY"),
			Logger: slog.Default(),
		})

		def := client.Define(context.Background(), args[0])
		fmt.Println(def.Definition)
		if def.Verse != "" {
			fmt.Printf("See %s\n", def.Verse)
		}
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [note-id]",
	Short: "Summarize a note's pages into key points",
	Long: `Summarize a note into 3 key bullet points and an application step.
Requires GROQ_API_KEY in the environment.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService(true)

		note, err := svc.GetNote(context.Background(), args[0])
		if err != nil {
			fatal("Error reading note", err)
		}

		var content string
		for _, page := range note.Pages {
			content += page.Content + "\n\n"
		}

		client := assistant.NewClient(assistant.Config{
			APIKey: os.Getenv("GROQ_API_KEY"),
			Logger: slog.Default(),
		})

		summary, err := client.Summarize(context.Background(), content)
		if err != nil {
			fatal("Error summarizing note", err)
		}
		fmt.Println(summary)
	},
}

func init() {
	rootCmd.AddCommand(defineCmd, summarizeCmd)
}
