package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/dramatis/internal/board"
	"github.com/at-ishikawa/dramatis/internal/character"
	"github.com/at-ishikawa/dramatis/internal/graph"
	"github.com/at-ishikawa/dramatis/internal/layout"
)

func newBoardCommand() *cobra.Command {
	boardCommands := &cobra.Command{
		Use:   "board",
		Short: "Manage relationship board views",
	}
	boardCommands.AddCommand(
		newBoardCreateCommand(),
		newBoardListCommand(),
		newBoardShowCommand(),
		newBoardDeleteCommand(),
		newBoardExportCommand(),
		newBoardImportCommand(),
		newBoardPruneCommand(),
	)
	return boardCommands
}

func newBoardCreateCommand() *cobra.Command {
	var description string
	var layoutFile string

	cmd := &cobra.Command{
		Use:   "create <story id> <name>",
		Short: "Create a board view for a story",
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

			l := layout.Layout{}
			if layoutFile != "" {
				data, err := os.ReadFile(layoutFile)
				if err != nil {
					return fmt.Errorf("os.ReadFile(%s) > %w", layoutFile, err)
				}
				l, err = layout.Decode(data)
				if err != nil {
					return fmt.Errorf("layout.Decode(%s) > %w", layoutFile, err)
				}
			}

			v := &board.BoardView{
				StoryID:     storyID,
				Name:        args[1],
				Description: description,
			}
			if err := v.SetLayout(l); err != nil {
				return fmt.Errorf("view.SetLayout() > %w", err)
			}
			if err := board.NewDBBoardViewRepository(db).Create(ctx, v); err != nil {
				return fmt.Errorf("boards.Create(%s) > %w", v.Name, err)
			}
			fmt.Printf("Created board %d: %s\n", v.ID, v.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Board description")
	cmd.Flags().StringVar(&layoutFile, "layout-file", "", "JSON file with the initial layout")
	return cmd
}

func newBoardListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <story id>",
		Short: "List a story's board views",
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

			storyID, err := parseID(args[0])
			if err != nil {
				return err
			}

			views, err := board.NewDBBoardViewRepository(db).FindByStory(ctx, storyID)
			if err != nil {
				return fmt.Errorf("boards.FindByStory(%d) > %w", storyID, err)
			}
			if len(views) == 0 {
				fmt.Println("No boards yet")
				return nil
			}
			for _, v := range views {
				line := fmt.Sprintf("%d: %s", v.ID, v.Name)
				if v.Description != "" {
					line += " - " + v.Description
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func newBoardShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <board id>",
		Short: "Show a board's layout",
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

			v, err := board.NewDBBoardViewRepository(db).FindByID(ctx, id)
			if err != nil {
				return fmt.Errorf("boards.FindByID(%d) > %w", id, err)
			}
			if v == nil {
				return fmt.Errorf("board %d does not exist", id)
			}
			l, err := v.Layout()
			if err != nil {
				return fmt.Errorf("view.Layout() > %w", err)
			}

			fmt.Printf("%s (story %d)\n", v.Name, v.StoryID)
			fmt.Printf("Characters (%d):\n", len(l.Characters))
			for _, placement := range l.Characters {
				fmt.Printf("  %d at (%g, %g)\n", placement.ID, placement.X, placement.Y)
			}
			fmt.Printf("Relationships (%d):\n", len(l.Relationships))
			for _, path := range l.Relationships {
				fmt.Printf("  %d with %d points\n", path.ID, len(path.Points))
			}
			return nil
		},
	}
}

func newBoardDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <board id>",
		Short: "Delete a board view",
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

			if err := board.NewDBBoardViewRepository(db).Delete(ctx, id); err != nil {
				return fmt.Errorf("boards.Delete(%d) > %w", id, err)
			}
			fmt.Printf("Deleted board %d\n", id)
			return nil
		},
	}
}

func newBoardExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <board id> <file>",
		Short: "Write a board's layout to a JSON file",
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

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			v, err := board.NewDBBoardViewRepository(db).FindByID(ctx, id)
			if err != nil {
				return fmt.Errorf("boards.FindByID(%d) > %w", id, err)
			}
			if v == nil {
				return fmt.Errorf("board %d does not exist", id)
			}
			l, err := v.Layout()
			if err != nil {
				return fmt.Errorf("view.Layout() > %w", err)
			}
			data, err := layout.Encode(l)
			if err != nil {
				return fmt.Errorf("layout.Encode() > %w", err)
			}
			if err := os.WriteFile(args[1], data, 0644); err != nil {
				return fmt.Errorf("os.WriteFile(%s) > %w", args[1], err)
			}
			fmt.Printf("Layout written to: %s\n", args[1])
			return nil
		},
	}
}

func newBoardImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <board id> <file>",
		Short: "Replace a board's layout from a JSON file",
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

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			boards := board.NewDBBoardViewRepository(db)
			v, err := boards.FindByID(ctx, id)
			if err != nil {
				return fmt.Errorf("boards.FindByID(%d) > %w", id, err)
			}
			if v == nil {
				return fmt.Errorf("board %d does not exist", id)
			}

			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("os.ReadFile(%s) > %w", args[1], err)
			}
			l, err := layout.Decode(data)
			if err != nil {
				return fmt.Errorf("layout.Decode(%s) > %w", args[1], err)
			}
			if err := v.SetLayout(l); err != nil {
				return fmt.Errorf("view.SetLayout() > %w", err)
			}
			if err := boards.Update(ctx, v); err != nil {
				return fmt.Errorf("boards.Update(%d) > %w", id, err)
			}
			fmt.Printf("Layout replaced on board %d\n", id)
			return nil
		},
	}
}

func newBoardPruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune <board id>",
		Short: "Drop layout entries whose characters or relationships are gone",
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

			boards := board.NewDBBoardViewRepository(db)
			v, err := boards.FindByID(ctx, id)
			if err != nil {
				return fmt.Errorf("boards.FindByID(%d) > %w", id, err)
			}
			if v == nil {
				return fmt.Errorf("board %d does not exist", id)
			}
			l, err := v.Layout()
			if err != nil {
				return fmt.Errorf("view.Layout() > %w", err)
			}

			characters := character.NewDBCharacterRepository(db)
			cast, err := characters.FindByStory(ctx, v.StoryID)
			if err != nil {
				return fmt.Errorf("characters.FindByStory(%d) > %w", v.StoryID, err)
			}
			accessor := graph.NewAccessor(db, characters, graph.WithSelfLoops(cfg.Graph.AllowSelfLoops))
			edges, err := accessor.FindByStory(ctx, v.StoryID)
			if err != nil {
				return fmt.Errorf("accessor.FindByStory(%d) > %w", v.StoryID, err)
			}

			characterIDs := make(map[int64]bool, len(cast))
			for _, c := range cast {
				characterIDs[c.ID] = true
			}
			relationshipIDs := make(map[int64]bool, len(edges))
			for _, edge := range edges {
				relationshipIDs[edge.ID] = true
			}

			pruned, dropped := layout.Prune(l, characterIDs, relationshipIDs)
			if dropped == 0 {
				fmt.Println("Nothing to prune")
				return nil
			}
			if err := v.SetLayout(pruned); err != nil {
				return fmt.Errorf("view.SetLayout() > %w", err)
			}
			if err := boards.Update(ctx, v); err != nil {
				return fmt.Errorf("boards.Update(%d) > %w", id, err)
			}
			fmt.Printf("Pruned %d stale entries from board %d\n", dropped, id)
			return nil
		},
	}
}
