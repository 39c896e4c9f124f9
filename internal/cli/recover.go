package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codetrail/typeweave/internal/config"
	"github.com/codetrail/typeweave/internal/files"
	"github.com/codetrail/typeweave/internal/frontend"
	"github.com/codetrail/typeweave/internal/graph"
	"github.com/codetrail/typeweave/internal/recovery"
	"github.com/codetrail/typeweave/internal/storage"
)

var quietFlag bool

// recoverCmd represents the recover command
var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Recover candidate types for the codebase",
	Long: `Recover parses your Python and Ruby sources into a program graph and
derives candidate types for locals, fields, and call sites.

The recovery pass:
  - Discovers source files matching the configured patterns
  - Lowers each file into the program graph
  - Resolves imports and internal definitions per compilation unit
  - Propagates types through assignments in document order
  - Writes the typed graph and a SQLite database of type facts

Examples:
  # Recover types in the current directory
  typeweave recover

  # Recover with progress output disabled
  typeweave recover --quiet
`,
	RunE: runRecover,
}

func init() {
	rootCmd.AddCommand(recoverCmd)
	recoverCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
}

func runRecover(cmd *cobra.Command, args []string) error {
	startedAt := time.Now()

	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling recovery...")
		cancel()
	}()

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	program, err := buildProgram(rootDir, cfg)
	if err != nil {
		return err
	}

	hooks := make(map[string]recovery.LanguageHooks)
	enabled := make(map[string]bool, len(cfg.Recovery.Languages))
	for _, language := range cfg.Recovery.Languages {
		enabled[language] = true
	}
	for _, f := range frontend.All() {
		if enabled[f.Language()] {
			hooks[f.Language()] = f.Hooks(program)
		}
	}

	progress := NewCLIProgressReporter(quietFlag)
	orchestrator := recovery.NewOrchestrator(program, hooks,
		recovery.WithParallelism(cfg.Recovery.Parallelism),
		recovery.WithProgress(progress),
	)

	applied, err := orchestrator.Run(ctx)
	if err != nil {
		return err
	}

	if err := exportResults(rootDir, cfg, program, startedAt); err != nil {
		return err
	}

	if !quietFlag {
		fmt.Printf("✓ Recovery complete: %d typed nodes\n", applied)
	}
	return nil
}

// buildProgram discovers source files and lowers them into a program graph.
func buildProgram(rootDir string, cfg *config.Config) (*graph.Program, error) {
	discovery, err := files.NewDiscovery(rootDir, cfg.Paths.Code, cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to set up file discovery: %w", err)
	}

	sourceFiles, err := discovery.DiscoverFiles()
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}

	program := graph.NewProgram()
	for _, path := range sourceFiles {
		f := frontend.ForFile(path)
		if f == nil {
			continue
		}

		source, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			relPath = path
		}
		if verbose && !quietFlag {
			log.Printf("Lowering %s\n", relPath)
		}
		if err := f.LowerFile(program, filepath.ToSlash(relPath), source); err != nil {
			return nil, fmt.Errorf("failed to lower %s: %w", path, err)
		}
	}

	if !quietFlag {
		log.Printf("Lowered %d files into %d graph nodes\n", len(program.Units()), program.NodeCount())
	}
	return program, nil
}

// exportResults writes the typed graph JSON and the SQLite type facts.
func exportResults(rootDir string, cfg *config.Config, program *graph.Program, startedAt time.Time) error {
	graphStore, err := graph.NewStorage(filepath.Join(rootDir, cfg.Export.GraphDir))
	if err != nil {
		return fmt.Errorf("failed to set up graph storage: %w", err)
	}
	if err := graphStore.Save(graph.Export(program)); err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}

	factsPath := filepath.Join(rootDir, cfg.Export.FactsDB)
	if err := os.MkdirAll(filepath.Dir(factsPath), 0755); err != nil {
		return fmt.Errorf("failed to create facts directory: %w", err)
	}
	writer, err := storage.NewFactsWriter(factsPath)
	if err != nil {
		return fmt.Errorf("failed to open facts database: %w", err)
	}
	defer writer.Close()

	runID, err := writer.WriteFacts(program, startedAt)
	if err != nil {
		return fmt.Errorf("failed to write type facts: %w", err)
	}
	if !quietFlag {
		log.Printf("Recorded facts under run %s\n", runID)
	}
	return nil
}
