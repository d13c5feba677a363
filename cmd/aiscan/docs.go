package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/panplumousse-star/AIScan-sub002/internal/models"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage documents in the store",
}

var docAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a document record",
	Example: `  aiscan doc add "Tax return 2025" --file scans/tax-2025.pdf --pages 4
  aiscan doc add "Receipt" --file scans/receipt.jpg --folder <folder-id>`,
	Args: cobra.ExactArgs(1),
	RunE: runDocAdd,
}

var docListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents, newest first",
	RunE:  runDocList,
}

var docShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one document with its pages and tags",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocShow,
}

var docRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a document and its pages",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocRm,
}

var (
	docAddFile        string
	docAddDescription string
	docAddFolder      string
	docAddPages       int
	docAddOCRText     string

	docListFavorites bool
	docListFolder    string
	docListLimit     int
)

func init() {
	rootCmd.AddCommand(docCmd)
	docCmd.AddCommand(docAddCmd)
	docCmd.AddCommand(docListCmd)
	docCmd.AddCommand(docShowCmd)
	docCmd.AddCommand(docRmCmd)

	docAddCmd.Flags().StringVarP(&docAddFile, "file", "f", "",
		"Scanned file path")
	docAddCmd.Flags().StringVar(&docAddDescription, "description", "",
		"Document description")
	docAddCmd.Flags().StringVar(&docAddFolder, "folder", "",
		"Folder ID to file the document under")
	docAddCmd.Flags().IntVar(&docAddPages, "pages", 1,
		"Number of pages")
	docAddCmd.Flags().StringVar(&docAddOCRText, "ocr-text", "",
		"Recognized text to index for search")

	docListCmd.Flags().BoolVar(&docListFavorites, "favorites", false,
		"Only favorite documents")
	docListCmd.Flags().StringVar(&docListFolder, "folder", "",
		"Only documents in this folder ID")
	docListCmd.Flags().IntVar(&docListLimit, "limit", 0,
		"Maximum documents to list (0 = all)")
}

func runDocAdd(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	doc := &models.Document{
		Title:       args[0],
		Description: docAddDescription,
		FilePath:    docAddFile,
		PageCount:   docAddPages,
	}
	if docAddFolder != "" {
		doc.FolderID = &docAddFolder
	}
	if docAddOCRText != "" {
		doc.OCRText = &docAddOCRText
		doc.OCRStatus = models.OCRCompleted
	}

	if err := s.CreateDocument(doc, nil); err != nil {
		return fmt.Errorf("add document: %w", err)
	}

	if jsonOutput {
		printJSON(doc)
	} else {
		printSuccess("Added document %s", doc.ID)
	}

	return nil
}

func runDocList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	filters := models.SearchFilters{
		FavoritesOnly: docListFavorites,
		Limit:         docListLimit,
	}
	if docListFolder != "" {
		filters.FolderID = &docListFolder
	}

	docs, err := s.ListDocuments(filters)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"count":     len(docs),
			"documents": docs,
		})
		return nil
	}

	if len(docs) == 0 {
		printInfo("No documents")
		return nil
	}

	for _, doc := range docs {
		marker := " "
		if doc.IsFavorite {
			marker = "*"
		}
		fmt.Printf("%s %s  %-30s  %d page(s)  %s\n",
			marker, doc.ID, doc.Title, doc.PageCount,
			doc.UpdatedAt.Format("2006-01-02 15:04"))
	}

	return nil
}

func runDocShow(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	doc, err := s.GetDocument(args[0])
	if err != nil {
		return err
	}

	pages, err := s.GetDocumentPages(doc.ID)
	if err != nil {
		return err
	}

	tags, err := s.TagsForDocument(doc.ID)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"document": doc,
			"pages":    pages,
			"tags":     tags,
		})
		return nil
	}

	fmt.Printf("ID:          %s\n", doc.ID)
	fmt.Printf("Title:       %s\n", doc.Title)
	if doc.Description != "" {
		fmt.Printf("Description: %s\n", doc.Description)
	}
	fmt.Printf("File:        %s\n", doc.FilePath)
	fmt.Printf("Pages:       %d\n", doc.PageCount)
	fmt.Printf("OCR status:  %s\n", doc.OCRStatus)
	if doc.FolderID != nil {
		fmt.Printf("Folder:      %s\n", *doc.FolderID)
	}
	fmt.Printf("Updated:     %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))

	for _, page := range pages {
		fmt.Printf("  page %d: %s\n", page.PageNumber, page.FilePath)
	}
	if len(tags) > 0 {
		fmt.Print("Tags:")
		for _, tag := range tags {
			fmt.Printf(" %s", tag.Name)
		}
		fmt.Println()
	}

	return nil
}

func runDocRm(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteDocument(args[0]); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{"success": true, "id": args[0]})
	} else {
		printSuccess("Deleted document %s", args[0])
	}

	return nil
}
