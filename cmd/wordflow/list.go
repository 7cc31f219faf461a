package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nickigann03/word-flow-app/pkg/core"
)

var (
	listJSON   bool
	listUser   string
	listFolder string
	filterTag  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, most recently updated first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService(true)

		notes, err := svc.ListNotes(context.Background(), listUser, listFolder)
		if err != nil {
			fatal("Error listing notes", err)
		}

		var filtered []core.Note
		for _, note := range notes {
			if filterTag != "" && !hasTag(note.Tags, filterTag) {
				continue
			}
			filtered = append(filtered, note)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(filtered); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		for _, note := range filtered {
			fmt.Printf("%s  %s (%d pages)\n", note.ID, note.Title, len(note.Pages))
		}
	},
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listUser, "user", "", "Filter notes by owner")
	listCmd.Flags().StringVar(&listFolder, "folder", "", "Filter notes by folder id")
	listCmd.Flags().StringVar(&filterTag, "tag", "", "Filter notes by tag")
}
