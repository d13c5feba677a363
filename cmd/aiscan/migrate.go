package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/panplumousse-star/AIScan-sub002/internal/migration"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate a legacy unencrypted store to the encrypted format",
	Long: `Migrate copies the legacy store into a fresh encrypted database,
verifies every table, and swaps it in atomically. The original file is
kept as a backup next to the store until 'migrate cleanup' removes it.`,
	Example: `  aiscan migrate
  aiscan migrate --json`,
	RunE: runMigrate,
}

var migrateCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete the migration backup file",
	RunE:  runMigrateCleanup,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateCleanupCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	key, err := masterKey()
	if err != nil {
		return err
	}

	engine := migration.NewEngine(cfg.Storage.StorePath, key, cfg.Migration, logger)
	result := engine.MigrateToEncrypted()

	if jsonOutput {
		out := map[string]interface{}{
			"success":       result.Success,
			"phase":         result.Phase,
			"rows_migrated": result.RowsMigrated,
		}
		if result.BackupPath != "" {
			out["backup_path"] = result.BackupPath
		}
		if result.Err != nil {
			out["error"] = result.Err.Error()
		}
		printJSON(out)
		return result.Err
	}

	if result.Err != nil {
		printError("Migration failed: %v", result.Err)
		if result.BackupPath != "" {
			printWarning("Legacy store untouched, backup at %s", result.BackupPath)
		}
		return result.Err
	}

	switch result.Phase {
	case migration.PhaseNotNeeded:
		printInfo("Store is already encrypted, nothing to do")
	default:
		printSuccess("Migrated %d rows", result.RowsMigrated)
		printInfo("Backup kept at %s, run 'aiscan migrate cleanup' once verified", result.BackupPath)
	}

	return nil
}

func runMigrateCleanup(cmd *cobra.Command, args []string) error {
	engine := migration.NewEngine(cfg.Storage.StorePath, nil, cfg.Migration, logger)

	if err := engine.DeleteBackup(); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"success":     true,
			"backup_path": engine.BackupPath(),
		})
	} else {
		printSuccess("Backup removed")
	}

	return nil
}
