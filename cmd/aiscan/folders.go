package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/panplumousse-star/AIScan-sub002/internal/models"
)

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage folders",
}

var folderAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runFolderAdd,
}

var folderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List folders",
	RunE:  runFolderList,
}

var folderRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a folder; its documents and subfolders are kept",
	Args:  cobra.ExactArgs(1),
	RunE:  runFolderRm,
}

var (
	folderAddParent string
	folderAddColor  string
)

func init() {
	rootCmd.AddCommand(folderCmd)
	folderCmd.AddCommand(folderAddCmd)
	folderCmd.AddCommand(folderListCmd)
	folderCmd.AddCommand(folderRmCmd)

	folderAddCmd.Flags().StringVar(&folderAddParent, "parent", "",
		"Parent folder ID")
	folderAddCmd.Flags().StringVar(&folderAddColor, "color", "",
		"Display color")
}

func runFolderAdd(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	folder := &models.Folder{
		Name:  args[0],
		Color: folderAddColor,
	}
	if folderAddParent != "" {
		folder.ParentID = &folderAddParent
	}

	if err := s.CreateFolder(folder); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}

	if jsonOutput {
		printJSON(folder)
	} else {
		printSuccess("Created folder %s", folder.ID)
	}

	return nil
}

func runFolderList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	folders, err := s.ListFolders()
	if err != nil {
		return fmt.Errorf("list folders: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"count":   len(folders),
			"folders": folders,
		})
		return nil
	}

	if len(folders) == 0 {
		printInfo("No folders")
		return nil
	}

	for _, f := range folders {
		parent := "-"
		if f.ParentID != nil {
			parent = *f.ParentID
		}
		fmt.Printf("%s  %-24s  parent: %s\n", f.ID, f.Name, parent)
	}

	return nil
}

func runFolderRm(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteFolder(args[0]); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{"success": true, "id": args[0]})
	} else {
		printSuccess("Deleted folder %s", args[0])
	}

	return nil
}
