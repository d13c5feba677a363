package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/panplumousse-star/AIScan-sub002/internal/models"
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search documents by title, description and recognized text",
	Long: `Search uses the best full-text index the local SQLite build offers:
ranked FTS5 when available, unranked FTS4 otherwise, and a plain
substring scan as the last resort. Multiple words all have to match.`,
	Example: `  aiscan search invoice
  aiscan search tax 2025 --favorites
  aiscan search receipt --folder <folder-id> --limit 10`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var (
	searchFavorites bool
	searchFolder    string
	searchLimit     int
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolVar(&searchFavorites, "favorites", false,
		"Only favorite documents")
	searchCmd.Flags().StringVar(&searchFolder, "folder", "",
		"Only documents in this folder ID")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0,
		"Maximum results (0 = config default)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	query := strings.Join(args, " ")

	limit := searchLimit
	if limit <= 0 {
		limit = cfg.Search.MaxResults
	}

	filters := models.SearchFilters{
		FavoritesOnly: searchFavorites,
		Limit:         limit,
	}
	if searchFolder != "" {
		filters.FolderID = &searchFolder
	}

	docs, err := s.Search(query, filters)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if err := s.RecordSearch(query, len(docs), cfg.Search.HistoryCap); err != nil {
		logger.WithError(err).Warn("Failed to record search history")
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"query":     query,
			"tier":      s.Tier().String(),
			"count":     len(docs),
			"documents": docs,
		})
		return nil
	}

	if len(docs) == 0 {
		printInfo("No matches for %q", query)
		return nil
	}

	for _, doc := range docs {
		fmt.Printf("%s  %-30s  %s\n",
			doc.ID, doc.Title, doc.UpdatedAt.Format("2006-01-02 15:04"))
	}
	printInfo("\n%d match(es), %s search", len(docs), s.Tier())

	return nil
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent searches",
	RunE:  runHistory,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20,
		"Maximum entries to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := s.RecentSearches(historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"count":   len(entries),
			"entries": entries,
		})
		return nil
	}

	if len(entries) == 0 {
		printInfo("No search history")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  %-30s  %d result(s)\n",
			e.Timestamp.Format("2006-01-02 15:04"), e.Query, e.ResultCount)
	}

	return nil
}
