package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	newTemplate string
	newUser     string
	newFolder   string
)

var newCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Create a note from a template",
	Long: `Create a note with one page seeded from a template.
Available templates: Blank, 3-Point Sermon, Expository.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService(false)

		note, err := svc.CreateNote(context.Background(), newUser, newFolder, args[0], newTemplate)
		if err != nil {
			fatal("Error creating note", err)
		}

		fmt.Printf("Note created: %s\n", note.ID)
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVar(&newTemplate, "template", "Blank", "Template for the first page")
	newCmd.Flags().StringVar(&newUser, "user", "", "Owner of the note")
	newCmd.Flags().StringVar(&newFolder, "folder", "", "Folder id to file the note under")
}
