package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var folderUser string

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Manage folders",
}

var foldersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List folders by creation time",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService(true)

		folders, err := svc.ListFolders(context.Background(), folderUser)
		if err != nil {
			fatal("Error listing folders", err)
		}

		for _, f := range folders {
			fmt.Printf("%s  %s\n", f.ID, f.Title)
		}
	},
}

var foldersNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService(false)

		folder, err := svc.CreateFolder(context.Background(), folderUser, args[0])
		if err != nil {
			fatal("Error creating folder", err)
		}

		fmt.Printf("Folder created: %s\n", folder.ID)
	},
}

var foldersDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a folder",
	Long:  `Delete a folder. Notes filed under it are kept and become unfiled.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService(true)

		if err := svc.DeleteFolder(context.Background(), args[0]); err != nil {
			fatal("Error deleting folder", err)
		}

		fmt.Printf("Folder deleted: %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(foldersCmd)
	foldersCmd.AddCommand(foldersListCmd, foldersNewCmd, foldersDeleteCmd)
	foldersCmd.PersistentFlags().StringVar(&folderUser, "user", "", "Owner of the folders")
}
