package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/hintscan.yaml
var rulePackTemplate embed.FS

// rulePackFileName is the default rule pack file name.
const rulePackFileName = ".hintscan.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new hintscan rule pack file",
		Long: `Initialize creates a new .hintscan.yaml rule pack in the current directory.

The generated file includes:
- A commented list of every built-in rule for disabling
- Threshold overrides with their default values
- Documentation for all available keys

Examples:
  # Create .hintscan.yaml in current directory
  hintscan init

  # Create rule pack at a specific path
  hintscan init -o rules.yaml

  # Force overwrite existing file
  hintscan init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", rulePackFileName,
		"Output file path for the rule pack")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing rule pack file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("rule pack file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := rulePackTemplate.ReadFile("templates/hintscan.yaml")
	if err != nil {
		return fmt.Errorf("failed to read rule pack template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write rule pack file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write rule pack file: %w", err)
	}

	fmt.Printf("Created rule pack file: %s\n", outputPath)
	fmt.Println("\nEdit this file to tune the analysis:")
	fmt.Println("  - Disable rules that don't apply to your pages")
	fmt.Println("  - Raise or lower per-rule thresholds")
	fmt.Println("\nRun with: hintscan analyze --rules " + outputPath + " <trace-file>")

	return nil
}
