package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/panplumousse-star/AIScan-sub002/internal/models"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags and tag assignments",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a tag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagAdd,
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags",
	RunE:  runTagList,
}

var tagRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a tag and remove it from all documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runTagRm,
}

var tagSetCmd = &cobra.Command{
	Use:   "set <document-id> <tag-name>",
	Short: "Tag a document, creating the tag if it does not exist",
	Args:  cobra.ExactArgs(2),
	RunE:  runTagSet,
}

var tagUnsetCmd = &cobra.Command{
	Use:   "unset <document-id> <tag-name>",
	Short: "Remove a tag from a document",
	Args:  cobra.ExactArgs(2),
	RunE:  runTagUnset,
}

var tagAddColor string

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(tagAddCmd)
	tagCmd.AddCommand(tagListCmd)
	tagCmd.AddCommand(tagRmCmd)
	tagCmd.AddCommand(tagSetCmd)
	tagCmd.AddCommand(tagUnsetCmd)

	tagAddCmd.Flags().StringVar(&tagAddColor, "color", "",
		"Display color")
}

func runTagAdd(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	tag := &models.Tag{Name: args[0], Color: tagAddColor}
	if err := s.CreateTag(tag); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}

	if jsonOutput {
		printJSON(tag)
	} else {
		printSuccess("Created tag %s", tag.ID)
	}

	return nil
}

func runTagList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	tags, err := s.ListTags()
	if err != nil {
		return fmt.Errorf("list tags: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"count": len(tags),
			"tags":  tags,
		})
		return nil
	}

	if len(tags) == 0 {
		printInfo("No tags")
		return nil
	}

	for _, tag := range tags {
		fmt.Printf("%s  %s\n", tag.ID, tag.Name)
	}

	return nil
}

func runTagRm(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteTag(args[0]); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{"success": true, "id": args[0]})
	} else {
		printSuccess("Deleted tag %s", args[0])
	}

	return nil
}

func runTagSet(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	documentID, tagName := args[0], args[1]

	tag, err := s.FindTagByName(tagName)
	if err == models.ErrTagNotFound {
		tag = &models.Tag{Name: tagName}
		if err := s.CreateTag(tag); err != nil {
			return fmt.Errorf("create tag: %w", err)
		}
	} else if err != nil {
		return err
	}

	if err := s.TagDocument(documentID, tag.ID); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success":     true,
			"document_id": documentID,
			"tag_id":      tag.ID,
		})
	} else {
		printSuccess("Tagged %s with %q", documentID, tagName)
	}

	return nil
}

func runTagUnset(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	documentID, tagName := args[0], args[1]

	tag, err := s.FindTagByName(tagName)
	if err != nil {
		return err
	}

	if err := s.UntagDocument(documentID, tag.ID); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success":     true,
			"document_id": documentID,
			"tag_id":      tag.ID,
		})
	} else {
		printSuccess("Removed %q from %s", tagName, documentID)
	}

	return nil
}
