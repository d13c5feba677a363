// Command aiscan manages an encrypted on-device document store: legacy
// store migration, document CRUD, and full-text search.
package main

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/term"

	"github.com/panplumousse-star/AIScan-sub002/internal/config"
	"github.com/panplumousse-star/AIScan-sub002/internal/events"
	"github.com/panplumousse-star/AIScan-sub002/internal/keyring"
	"github.com/panplumousse-star/AIScan-sub002/internal/migration"
	"github.com/panplumousse-star/AIScan-sub002/internal/store"
)

var (
	cfgFile    string
	jsonOutput bool
	verbose    bool

	cfg    *config.Config
	logger *events.Logger
)

var rootCmd = &cobra.Command{
	Use:   "aiscan",
	Short: "Encrypted document store for scanned documents",
	Long: `aiscan keeps scanned documents in an encrypted SQLite store with
full-text search. A legacy unencrypted store is migrated in place on
first use, with a backup kept until explicitly deleted.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.NewLoader(cfgFile).Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if verbose {
			cfg.Log.Level = "debug"
		}
		logger, err = events.NewLogger(&cfg.Log)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return cfg.EnsureDirectories()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file path")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

// cliKeySalt is the derivation salt for passphrases typed at the
// terminal. Changing it orphans every store keyed through the prompt.
const cliKeySalt = "aiscan.cli.passphrase.v1"

// promptKeyProvider derives the master key from an interactively typed
// passphrase. Last resort in the keyring chain.
type promptKeyProvider struct{}

func (promptKeyProvider) GetOrCreateEncryptionKey() ([]byte, error) {
	passphrase, err := promptPassword("Store passphrase: ")
	if err != nil {
		return nil, fmt.Errorf("read passphrase: %w", err)
	}
	if passphrase == "" {
		return nil, keyring.ErrNoKey
	}
	return pbkdf2.Key([]byte(passphrase), []byte(cliKeySalt), 4096, 32, sha256.New), nil
}

func masterKey() ([]byte, error) {
	chain := keyring.Chain(
		keyring.Env("AISCAN_MASTER_KEY"),
		promptKeyProvider{},
	)
	return chain.GetOrCreateEncryptionKey()
}

// openStore resolves the master key, migrates a legacy plaintext store
// if one is present, and opens the encrypted store.
func openStore() (*store.Store, error) {
	key, err := masterKey()
	if err != nil {
		return nil, err
	}

	engine := migration.NewEngine(cfg.Storage.StorePath, key, cfg.Migration, logger)
	needed, err := engine.NeedsMigration()
	if err != nil {
		return nil, err
	}
	if needed {
		logger.Info("Legacy store detected, migrating")
		result := engine.MigrateToEncrypted()
		if !result.Success {
			return nil, result.Err
		}
		printInfo("Store migrated, backup kept at %s", result.BackupPath)
	}

	return store.Open(cfg.Storage.StorePath, key, logger)
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", err
	}

	return string(password), nil
}

func printSuccess(format string, args ...interface{}) {
	color.Green(format, args...)
}

func printError(format string, args ...interface{}) {
	color.Red("Error: "+format, args...)
}

func printWarning(format string, args ...interface{}) {
	color.Yellow(format, args...)
}

func printInfo(format string, args ...interface{}) {
	if jsonOutput {
		return
	}
	fmt.Println(fmt.Sprintf(format, args...))
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		printError("encode output: %v", err)
		return
	}
	fmt.Println(string(data))
}
