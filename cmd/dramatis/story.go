package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/dramatis/internal/character"
	"github.com/at-ishikawa/dramatis/internal/dossier"
	"github.com/at-ishikawa/dramatis/internal/graph"
	"github.com/at-ishikawa/dramatis/internal/story"
)

func newStoryCommand() *cobra.Command {
	storyCommands := &cobra.Command{
		Use:   "story",
		Short: "Manage stories",
	}
	storyCommands.AddCommand(
		newStoryCreateCommand(),
		newStoryListCommand(),
		newStoryShowCommand(),
		newStoryDeleteCommand(),
		newStoryDossierCommand(),
	)
	return storyCommands
}

func newStoryCreateCommand() *cobra.Command {
	var description string
	var typeName string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a story with its library folder",
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

			parsedType, err := story.ParseTypeName(typeName)
			if err != nil {
				return err
			}

			s := &story.Story{
				Title:       args[0],
				Description: description,
				TypeName:    parsedType,
				FolderPath:  story.FolderPathFor(cfg.Library.RootDirectory, args[0]),
			}
			stories := story.NewDBStoryRepository(db)
			if err := stories.Create(ctx, s); err != nil {
				return fmt.Errorf("stories.Create(%s) > %w", s.Title, err)
			}
			if err := story.EnsureFolders(*s); err != nil {
				return fmt.Errorf("story.EnsureFolders(%s) > %w", s.FolderPath, err)
			}

			fmt.Printf("Created story %d: %s (%s)\n", s.ID, s.Title, s.FolderPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Story description")
	cmd.Flags().StringVar(&typeName, "type", "", "Story type. Options: VISUAL_NOVEL, TV_SERIES, MOVIE, GAME, OTHER")
	return cmd
}

func newStoryListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stories",
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

			stories, err := story.NewDBStoryRepository(db).FindAll(ctx)
			if err != nil {
				return fmt.Errorf("stories.FindAll() > %w", err)
			}
			if len(stories) == 0 {
				fmt.Println("No stories yet")
				return nil
			}

			bold := color.New(color.Bold)
			for _, s := range stories {
				bold.Printf("%d: %s", s.ID, s.Title)
				fmt.Printf(" [%s]\n", s.TypeName)
			}
			return nil
		},
	}
}

func newStoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <story id>",
		Short: "Show a story with its cast and relationships",
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

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			stories := story.NewDBStoryRepository(db)
			s, err := stories.FindByID(ctx, id)
			if err != nil {
				return fmt.Errorf("stories.FindByID(%d) > %w", id, err)
			}
			if s == nil {
				return fmt.Errorf("story %d does not exist", id)
			}

			characters := character.NewDBCharacterRepository(db)
			cast, err := characters.FindByStory(ctx, s.ID)
			if err != nil {
				return fmt.Errorf("characters.FindByStory(%d) > %w", s.ID, err)
			}
			accessor := graph.NewAccessor(db, characters, graph.WithSelfLoops(cfg.Graph.AllowSelfLoops))
			edges, err := accessor.FindByStory(ctx, s.ID)
			if err != nil {
				return fmt.Errorf("accessor.FindByStory(%d) > %w", s.ID, err)
			}

			bold := color.New(color.Bold)
			bold.Printf("%s [%s]\n", s.Title, s.TypeName)
			if s.Description != "" {
				fmt.Println(s.Description)
			}
			fmt.Printf("Folder: %s\n", s.FolderPath)

			names := make(map[int64]string, len(cast))
			fmt.Printf("\nCharacters (%d):\n", len(cast))
			for _, c := range cast {
				names[c.ID] = c.Name
				line := fmt.Sprintf("  %d: %s", c.ID, c.Name)
				if len(c.Aliases) > 0 {
					line += fmt.Sprintf(" (%s)", c.Aliases.String())
				}
				if age := c.DisplayAge(); age != "" {
					line += fmt.Sprintf(", age %s", age)
				}
				if c.IsMainCharacter {
					line += ", main"
				}
				fmt.Println(line)
			}

			fmt.Printf("\nRelationships (%d):\n", len(edges))
			for _, edge := range edges {
				fmt.Printf("  %d: %s -> %s: %s\n", edge.ID, names[edge.SourceID], names[edge.TargetID], edge.Type)
			}
			return nil
		},
	}
}

func newStoryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <story id>",
		Short: "Delete a story with everything attached to it",
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

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if err := story.NewDBStoryRepository(db).Delete(ctx, id); err != nil {
				return fmt.Errorf("stories.Delete(%d) > %w", id, err)
			}
			fmt.Printf("Deleted story %d\n", id)
			return nil
		},
	}
}

func newStoryDossierCommand() *cobra.Command {
	var generatePDF bool

	cmd := &cobra.Command{
		Use:   "dossier <story id>",
		Short: "Write a markdown dossier of the story's cast",
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

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			stories := story.NewDBStoryRepository(db)
			characters := character.NewDBCharacterRepository(db)
			accessor := graph.NewAccessor(db, characters, graph.WithSelfLoops(cfg.Graph.AllowSelfLoops))
			builder := dossier.NewBuilder(characters, accessor)
			writer := dossier.NewWriter(stories, builder, cfg.Templates.DossierTemplate, os.Stdout)

			if _, err := writer.Output(ctx, id, cfg.Outputs.DossierDirectory, generatePDF); err != nil {
				return fmt.Errorf("writer.Output(%d) > %w", id, err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&generatePDF, "pdf", false, "Generate PDF output in addition to markdown")
	return cmd
}
