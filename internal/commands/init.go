package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/transfermatch-dev/transfermatch/internal/config"
)

func newInitCommand() *cobra.Command {
	var userName string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new transfermatch workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, userName)
		},
	}

	cmd.Flags().StringVar(&userName, "user", "", "statement owner name, prioritized in name matching")

	return cmd
}

func runInit(dir, userName string) error {
	// Create directory structure.
	dirs := []string{
		"import",
		"decisions",
		"exports",
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write transfermatch.yaml.
	cfg := config.Default(userName)
	if err := config.Save(filepath.Join(dir, "transfermatch.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write import/.gitkeep.
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	fmt.Printf("Initialized transfermatch workspace at %s\n", dir)
	return nil
}
