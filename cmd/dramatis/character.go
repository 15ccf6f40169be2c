package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/dramatis/internal/avatar"
	"github.com/at-ishikawa/dramatis/internal/character"
	"github.com/at-ishikawa/dramatis/internal/graph"
	"github.com/at-ishikawa/dramatis/internal/story"
)

const avatarRetryAttempts = 3

func newCharacterCommand() *cobra.Command {
	characterCommands := &cobra.Command{
		Use:   "character",
		Short: "Manage a story's cast",
	}
	characterCommands.AddCommand(
		newCharacterAddCommand(),
		newCharacterListCommand(),
		newCharacterUpdateCommand(),
		newCharacterRemoveCommand(),
		newCharacterAvatarCommand(),
	)
	return characterCommands
}

func newCharacterAddCommand() *cobra.Command {
	var aliases string
	var ageValue int
	var ageCategory string
	var gender string
	var isMain bool

	cmd := &cobra.Command{
		Use:   "add <story id> <name>",
		Short: "Add a character to a story",
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
			parsedGender, err := character.ParseGender(gender)
			if err != nil {
				return err
			}

			c := &character.Character{
				StoryID:         storyID,
				Name:            args[1],
				Aliases:         character.ParseAliases(aliases),
				IsMainCharacter: isMain,
				AgeCategory:     ageCategory,
				Gender:          parsedGender,
			}
			if cmd.Flags().Changed("age") {
				c.AgeValue = &ageValue
			}

			characters := character.NewDBCharacterRepository(db)
			if err := characters.Create(ctx, c); err != nil {
				return fmt.Errorf("characters.Create(%s) > %w", c.Name, err)
			}
			fmt.Printf("Added character %d: %s\n", c.ID, c.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&aliases, "aliases", "", "Comma-delimited alternate names")
	cmd.Flags().IntVar(&ageValue, "age", 0, "Numeric age")
	cmd.Flags().StringVar(&ageCategory, "age-category", "", "Descriptive age band, used when no numeric age is known")
	cmd.Flags().StringVar(&gender, "gender", "", "Gender. Options: male, female, not_specified")
	cmd.Flags().BoolVar(&isMain, "main", false, "Mark as a main character")
	return cmd
}

func newCharacterListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <story id>",
		Short: "List a story's characters",
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

			cast, err := character.NewDBCharacterRepository(db).FindByStory(ctx, storyID)
			if err != nil {
				return fmt.Errorf("characters.FindByStory(%d) > %w", storyID, err)
			}
			if len(cast) == 0 {
				fmt.Println("No characters yet")
				return nil
			}

			bold := color.New(color.Bold)
			for _, c := range cast {
				line := fmt.Sprintf("%d: %s", c.ID, c.Name)
				if len(c.Aliases) > 0 {
					line += fmt.Sprintf(" (%s)", c.Aliases.String())
				}
				if age := c.DisplayAge(); age != "" {
					line += fmt.Sprintf(", age %s", age)
				}
				if c.IsMainCharacter {
					bold.Println(line)
				} else {
					fmt.Println(line)
				}
			}
			return nil
		},
	}
}

func newCharacterUpdateCommand() *cobra.Command {
	var name string
	var aliases string
	var ageValue int
	var ageCategory string
	var gender string
	var isMain bool

	cmd := &cobra.Command{
		Use:   "update <character id>",
		Short: "Update a character's fields",
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

			characters := character.NewDBCharacterRepository(db)
			c, err := characters.FindByID(ctx, id)
			if err != nil {
				return fmt.Errorf("characters.FindByID(%d) > %w", id, err)
			}
			if c == nil {
				return fmt.Errorf("character %d does not exist", id)
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				c.Name = name
			}
			if flags.Changed("aliases") {
				c.Aliases = character.ParseAliases(aliases)
			}
			if flags.Changed("age") {
				c.AgeValue = &ageValue
			}
			if flags.Changed("age-category") {
				c.AgeCategory = ageCategory
			}
			if flags.Changed("gender") {
				parsedGender, err := character.ParseGender(gender)
				if err != nil {
					return err
				}
				c.Gender = parsedGender
			}
			if flags.Changed("main") {
				c.IsMainCharacter = isMain
			}

			if err := characters.Update(ctx, c); err != nil {
				return fmt.Errorf("characters.Update(%d) > %w", c.ID, err)
			}
			fmt.Printf("Updated character %d: %s\n", c.ID, c.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&aliases, "aliases", "", "Comma-delimited alternate names")
	cmd.Flags().IntVar(&ageValue, "age", 0, "Numeric age")
	cmd.Flags().StringVar(&ageCategory, "age-category", "", "Descriptive age band")
	cmd.Flags().StringVar(&gender, "gender", "", "Gender. Options: male, female, not_specified")
	cmd.Flags().BoolVar(&isMain, "main", false, "Mark as a main character")
	return cmd
}

func newCharacterRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <character id>",
		Short: "Remove a character with its relationships and image annotations",
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

			characters := character.NewDBCharacterRepository(db)
			accessor := graph.NewAccessor(db, characters, graph.WithSelfLoops(cfg.Graph.AllowSelfLoops))
			if err := accessor.RemoveCharacter(ctx, id); err != nil {
				return fmt.Errorf("accessor.RemoveCharacter(%d) > %w", id, err)
			}
			fmt.Printf("Removed character %d\n", id)
			return nil
		},
	}
}

func newCharacterAvatarCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "avatar <character id> <url>",
		Short: "Download a character's portrait into the story folder",
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

			characters := character.NewDBCharacterRepository(db)
			c, err := characters.FindByID(ctx, id)
			if err != nil {
				return fmt.Errorf("characters.FindByID(%d) > %w", id, err)
			}
			if c == nil {
				return fmt.Errorf("character %d does not exist", id)
			}
			s, err := story.NewDBStoryRepository(db).FindByID(ctx, c.StoryID)
			if err != nil {
				return fmt.Errorf("stories.FindByID(%d) > %w", c.StoryID, err)
			}
			if s == nil {
				return fmt.Errorf("story %d does not exist", c.StoryID)
			}

			fetcher := avatar.NewFetcher(avatarRetryAttempts)
			defer func() {
				_ = fetcher.Close()
			}()

			avatarPath, err := fetcher.Fetch(ctx, args[1], s, c)
			if err != nil {
				return fmt.Errorf("fetcher.Fetch(%s) > %w", args[1], err)
			}
			c.AvatarPath = avatarPath
			if err := characters.Update(ctx, c); err != nil {
				return fmt.Errorf("characters.Update(%d) > %w", c.ID, err)
			}
			fmt.Printf("Avatar saved to: %s\n", avatarPath)
			return nil
		},
	}
}
