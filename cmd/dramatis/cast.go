package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/dramatis/internal/castfile"
	"github.com/at-ishikawa/dramatis/internal/character"
	"github.com/at-ishikawa/dramatis/internal/graph"
	"github.com/at-ishikawa/dramatis/internal/story"
)

func newCastCommand() *cobra.Command {
	castCommands := &cobra.Command{
		Use:   "cast",
		Short: "Import and export stories as cast files",
	}
	castCommands.AddCommand(
		newCastImportCommand(),
		newCastExportCommand(),
	)
	return castCommands
}

func newCastImportCommand() *cobra.Command {
	var dryRun bool
	var updateExisting bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a cast file into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			f, err := castfile.Load(args[0])
			if err != nil {
				return fmt.Errorf("castfile.Load(%s) > %w", args[0], err)
			}

			stories := story.NewDBStoryRepository(db)
			characters := character.NewDBCharacterRepository(db)
			accessor := graph.NewAccessor(db, characters, graph.WithSelfLoops(cfg.Graph.AllowSelfLoops))

			importer := castfile.NewImporter(stories, characters, accessor, os.Stdout, cfg.Library.RootDirectory)
			opts := castfile.ImportOptions{
				DryRun:         dryRun,
				UpdateExisting: updateExisting,
			}
			result, err := importer.Import(ctx, f, opts)
			if err != nil {
				return fmt.Errorf("importer.Import() > %w", err)
			}

			fmt.Println("\nImport Summary:")
			if opts.DryRun {
				fmt.Println("  (dry-run mode, no changes made)")
			}
			fmt.Printf("  Stories:       %d new, %d skipped\n", result.StoriesNew, result.StoriesSkipped)
			fmt.Printf("  Characters:    %d new, %d skipped, %d updated\n", result.CharactersNew, result.CharactersSkipped, result.CharactersUpdated)
			fmt.Printf("  Relationships: %d new, %d skipped\n", result.RelationshipsNew, result.RelationshipsSkipped)

			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview changes without modifying the database")
	cmd.Flags().BoolVar(&updateExisting, "update-existing", false, "Update existing characters with new data")
	return cmd
}

func newCastExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <story id> <file>",
		Short: "Export a story and its cast to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			storyID, err := parseID(args[0])
			if err != nil {
				return err
			}

			stories := story.NewDBStoryRepository(db)
			characters := character.NewDBCharacterRepository(db)
			accessor := graph.NewAccessor(db, characters, graph.WithSelfLoops(cfg.Graph.AllowSelfLoops))

			f, err := castfile.NewExporter(stories, characters, accessor).Export(ctx, storyID)
			if err != nil {
				return fmt.Errorf("exporter.Export(%d) > %w", storyID, err)
			}
			if err := castfile.Save(args[1], f); err != nil {
				return fmt.Errorf("castfile.Save(%s) > %w", args[1], err)
			}

			fmt.Printf("Exported story %d to %s\n", storyID, args[1])
			return nil
		},
	}
}
