package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codetrail/typeweave/internal/config"
	"github.com/codetrail/typeweave/internal/storage"
)

// factsCmd represents the facts command
var factsCmd = &cobra.Command{
	Use:   "facts <file>",
	Short: "Show recovered type facts for a source file",
	Long: `Facts prints the type facts recorded for one source file in the most
recent recovery run.

Examples:
  typeweave facts app/models/user.rb
`,
	Args: cobra.ExactArgs(1),
	RunE: runFacts,
}

func init() {
	rootCmd.AddCommand(factsCmd)
}

func runFacts(cmd *cobra.Command, args []string) error {
	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	reader, err := storage.NewFactsReader(filepath.Join(rootDir, cfg.Export.FactsDB))
	if err != nil {
		return fmt.Errorf("failed to open facts database: %w", err)
	}
	defer reader.Close()

	runID, err := reader.LatestRunID()
	if err != nil {
		return err
	}
	if runID == "" {
		return fmt.Errorf("no recovery runs recorded yet, run 'typeweave recover' first")
	}

	facts, err := reader.FactsForFile(runID, filepath.ToSlash(args[0]))
	if err != nil {
		return err
	}
	if len(facts) == 0 {
		fmt.Println("No type facts recorded for this file.")
		return nil
	}

	for _, fact := range facts {
		switch {
		case fact.ExactType != "":
			fmt.Printf("%s:%d:%d\t%s %s -> %s\n", fact.FilePath, fact.Line, fact.Column, fact.NodeKind, fact.NodeName, fact.ExactType)
		default:
			fmt.Printf("%s:%d:%d\t%s %s ~> %s\n", fact.FilePath, fact.Line, fact.Column, fact.NodeKind, fact.NodeName, strings.Join(fact.TypeHints, " | "))
		}
	}
	return nil
}
