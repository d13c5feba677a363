package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/panplumousse-star/AIScan-sub002/internal/models"
)

var signatureCmd = &cobra.Command{
	Use:   "signature",
	Short: "Manage saved signatures",
}

var signatureAddCmd = &cobra.Command{
	Use:   "add <name> <file>",
	Short: "Save a signature image reference",
	Args:  cobra.ExactArgs(2),
	RunE:  runSignatureAdd,
}

var signatureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved signatures",
	RunE:  runSignatureList,
}

var signatureRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a saved signature",
	Args:  cobra.ExactArgs(1),
	RunE:  runSignatureRm,
}

func init() {
	rootCmd.AddCommand(signatureCmd)
	signatureCmd.AddCommand(signatureAddCmd)
	signatureCmd.AddCommand(signatureListCmd)
	signatureCmd.AddCommand(signatureRmCmd)
}

func runSignatureAdd(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	sig := &models.Signature{Name: args[0], FilePath: args[1]}
	if err := s.SaveSignature(sig); err != nil {
		return fmt.Errorf("save signature: %w", err)
	}

	if jsonOutput {
		printJSON(sig)
	} else {
		printSuccess("Saved signature %s", sig.ID)
	}

	return nil
}

func runSignatureList(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	sigs, err := s.ListSignatures()
	if err != nil {
		return fmt.Errorf("list signatures: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"count":      len(sigs),
			"signatures": sigs,
		})
		return nil
	}

	if len(sigs) == 0 {
		printInfo("No signatures")
		return nil
	}

	for _, sig := range sigs {
		fmt.Printf("%s  %-24s  %s\n", sig.ID, sig.Name, sig.FilePath)
	}

	return nil
}

func runSignatureRm(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.DeleteSignature(args[0]); err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]interface{}{"success": true, "id": args[0]})
	} else {
		printSuccess("Deleted signature %s", args[0])
	}

	return nil
}
