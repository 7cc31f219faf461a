package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nickigann03/word-flow-app/pkg/scripture"
	"github.com/nickigann03/word-flow-app/pkg/session"
)

var (
	verseTranslation string
	verseInsert      string
)

var verseCmd = &cobra.Command{
	Use:   "verse [reference]",
	Short: "Look up a Bible passage",
	Long: `Look up a passage like "John 3:16" or "Psalm 23". Public domain
translations (kjv, web, asv, bbe, darby, ylt) need no credentials; others
need API_BIBLE_KEY or ESV_API_KEY in the environment. Failed lookups fall
back to the KJV.

With --insert, the passage is appended to the first page of the given note
as a quoted blockquote.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := scripture.NewClient(scripture.Config{
			APIBibleKey: os.Getenv("API_BIBLE_KEY"),
			ESVKey:      os.Getenv("ESV_API_KEY"),
			Logger:      slog.Default(),
		})

		ctx := context.Background()
		passage, err := client.GetVerse(ctx, args[0], verseTranslation)
		if err != nil {
			fatal("Error looking up passage", err)
		}

		if verseInsert != "" {
			insertPassage(ctx, passage)
			return
		}

		fmt.Printf("%s (%s)\n\n%s\n", passage.Reference, passage.Translation, passage.Text)
	},
}

func insertPassage(ctx context.Context, passage scripture.Passage) {
	svc := openService(true)

	ed, err := svc.Open(ctx, verseInsert, session.NewBuffer(""))
	if err != nil {
		fatal("Error opening note", err)
	}

	ed.Session().QueueInsertion(passage.Text, passage.Reference)
	ed.Session().ApplyPendingInsertion()

	if err := ed.Close(ctx); err != nil {
		fatal("Error saving note", err)
	}
	fmt.Printf("Inserted %s into note %s\n", passage.Reference, verseInsert)
}

func init() {
	rootCmd.AddCommand(verseCmd)
	verseCmd.Flags().StringVar(&verseTranslation, "translation", "kjv", "Translation id (e.g. kjv, web, esv, niv)")
	verseCmd.Flags().StringVar(&verseInsert, "insert", "", "Note id to append the passage to")
}
