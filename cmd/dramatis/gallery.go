package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/dramatis/internal/character"
	"github.com/at-ishikawa/dramatis/internal/gallery"
)

func newGalleryCommand() *cobra.Command {
	galleryCommands := &cobra.Command{
		Use:   "gallery",
		Short: "Manage image annotations",
	}
	galleryCommands.AddCommand(
		newGalleryTagCommand(),
		newGalleryUntagCommand(),
		newGalleryEventCommand(),
		newGalleryShowCommand(),
	)
	return galleryCommands
}

func newGalleryTagCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tag <story id> <character id> <image id>",
		Short: "Tag a character on a gallery image",
		Args:  cobra.ExactArgs(3),
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
			characterID, err := parseID(args[1])
			if err != nil {
				return err
			}
			imageID, err := parseID(args[2])
			if err != nil {
				return err
			}

			annotations := gallery.NewAnnotations(gallery.NewDBAnnotationRepository(db), gallery.NewBundleCache())
			tag := &gallery.CharacterTag{
				StoryID:     storyID,
				CharacterID: characterID,
				ImageID:     imageID,
			}
			if err := annotations.TagCharacter(ctx, tag); err != nil {
				return fmt.Errorf("annotations.TagCharacter(%d, %d) > %w", characterID, imageID, err)
			}
			fmt.Printf("Tagged character %d on image %d (tag %d)\n", characterID, imageID, tag.ID)
			return nil
		},
	}
}

func newGalleryUntagCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "untag <tag id>",
		Short: "Remove a character tag from an image",
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

			annotations := gallery.NewAnnotations(gallery.NewDBAnnotationRepository(db), gallery.NewBundleCache())
			if err := annotations.RemoveTag(ctx, id); err != nil {
				return fmt.Errorf("annotations.RemoveTag(%d) > %w", id, err)
			}
			fmt.Printf("Removed tag %d\n", id)
			return nil
		},
	}
}

func newGalleryEventCommand() *cobra.Command {
	eventCommands := &cobra.Command{
		Use:   "event",
		Short: "Manage quick events on gallery images",
	}

	var characterID int64
	addCmd := &cobra.Command{
		Use:   "add <story id> <image id> <text>",
		Short: "Note a quick event on a gallery image",
		Args:  cobra.ExactArgs(3),
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
			imageID, err := parseID(args[1])
			if err != nil {
				return err
			}

			event := &gallery.QuickEvent{
				StoryID: storyID,
				ImageID: imageID,
				Text:    args[2],
			}
			if cmd.Flags().Changed("character") {
				event.CharacterID = &characterID
			}

			annotations := gallery.NewAnnotations(gallery.NewDBAnnotationRepository(db), gallery.NewBundleCache())
			if err := annotations.AddQuickEvent(ctx, event); err != nil {
				return fmt.Errorf("annotations.AddQuickEvent(%d) > %w", imageID, err)
			}
			fmt.Printf("Added quick event %d on image %d\n", event.ID, imageID)
			return nil
		},
	}
	addCmd.Flags().Int64Var(&characterID, "character", 0, "Character the event involves")

	removeCmd := &cobra.Command{
		Use:   "remove <event id>",
		Short: "Remove a quick event",
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

			annotations := gallery.NewAnnotations(gallery.NewDBAnnotationRepository(db), gallery.NewBundleCache())
			if err := annotations.RemoveQuickEvent(ctx, id); err != nil {
				return fmt.Errorf("annotations.RemoveQuickEvent(%d) > %w", id, err)
			}
			fmt.Printf("Removed quick event %d\n", id)
			return nil
		},
	}

	eventCommands.AddCommand(addCmd, removeCmd)
	return eventCommands
}

func newGalleryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <story id> <image id>...",
		Short: "Show the annotation bundles for one or more images",
		Args:  cobra.MinimumNArgs(2),
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
			imageIDs := make([]int64, 0, len(args)-1)
			for _, arg := range args[1:] {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				imageIDs = append(imageIDs, id)
			}

			cast, err := character.NewDBCharacterRepository(db).FindByStory(ctx, storyID)
			if err != nil {
				return fmt.Errorf("characters.FindByStory(%d) > %w", storyID, err)
			}
			names := make(map[int64]string, len(cast))
			for _, c := range cast {
				names[c.ID] = c.Name
			}

			annotations := gallery.NewAnnotations(gallery.NewDBAnnotationRepository(db), gallery.NewBundleCache())
			annotations.SwitchStory(storyID)
			bundles, err := annotations.Bundles(ctx, imageIDs)
			if err != nil {
				return fmt.Errorf("annotations.Bundles() > %w", err)
			}

			for _, imageID := range imageIDs {
				bundle := bundles[imageID]
				fmt.Printf("Image %d:\n", imageID)
				for _, tag := range bundle.Tags {
					name := names[tag.CharacterID]
					if name == "" {
						name = fmt.Sprintf("character %d", tag.CharacterID)
					}
					fmt.Printf("  tag %d: %s\n", tag.ID, name)
				}
				for _, event := range bundle.QuickEvents {
					line := fmt.Sprintf("  event %d: %s", event.ID, event.Text)
					if event.CharacterID != nil {
						name := names[*event.CharacterID]
						if name == "" {
							name = fmt.Sprintf("character %d", *event.CharacterID)
						}
						line += fmt.Sprintf(" (%s)", name)
					}
					fmt.Println(line)
				}
				if len(bundle.Tags) == 0 && len(bundle.QuickEvents) == 0 {
					fmt.Println("  (no annotations)")
				}
			}
			return nil
		},
	}
}
