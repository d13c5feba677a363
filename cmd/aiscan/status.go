package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/panplumousse-star/AIScan-sub002/internal/migration"
	"github.com/panplumousse-star/AIScan-sub002/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store state, search tier and row counts",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	engine := migration.NewEngine(cfg.Storage.StorePath, nil, cfg.Migration, logger)
	needsMigration, err := engine.NeedsMigration()
	if err != nil {
		return err
	}

	if needsMigration {
		if jsonOutput {
			printJSON(map[string]interface{}{
				"store_path":      cfg.Storage.StorePath,
				"encrypted":       false,
				"needs_migration": true,
			})
			return nil
		}
		printWarning("Legacy unencrypted store at %s, run 'aiscan migrate'", cfg.Storage.StorePath)
		return nil
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	counts, err := s.Counts()
	if err != nil {
		return fmt.Errorf("count rows: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"store_path":      s.Path(),
			"encrypted":       true,
			"needs_migration": false,
			"search_tier":     s.Tier().String(),
			"counts":          counts,
		})
		return nil
	}

	fmt.Printf("Store:       %s\n", s.Path())
	fmt.Printf("Search tier: %s\n", s.Tier())
	for _, table := range store.EntityTables() {
		fmt.Printf("  %-16s %d\n", table, counts[table])
	}

	return nil
}
