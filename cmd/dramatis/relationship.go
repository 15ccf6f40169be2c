package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/dramatis/internal/character"
	"github.com/at-ishikawa/dramatis/internal/graph"
)

type DirectionFlag graph.Direction

// Set implements pflag.Value.
func (d *DirectionFlag) Set(v string) error {
	direction, err := graph.ParseDirection(v)
	if err != nil {
		return err
	}
	*d = DirectionFlag(direction)
	return nil
}

// String implements pflag.Value.
func (d *DirectionFlag) String() string {
	if d == nil {
		return ""
	}
	return string(*d)
}

// Type implements pflag.Value.
func (d *DirectionFlag) Type() string {
	return "DirectionFlag"
}

var (
	_ pflag.Value = (*DirectionFlag)(nil)
)

func newRelationshipCommand() *cobra.Command {
	relationshipCommands := &cobra.Command{
		Use:   "relationship",
		Short: "Manage the relationship graph",
	}
	relationshipCommands.AddCommand(
		newRelationshipAddCommand(),
		newRelationshipRemoveCommand(),
		newRelationshipNeighborsCommand(),
	)
	return relationshipCommands
}

func newRelationshipAddCommand() *cobra.Command {
	var description string
	var edgeColor string
	var width float64

	cmd := &cobra.Command{
		Use:   "add <source character id> <target character id> <type>",
		Short: "Add a directed relationship between two characters",
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

			sourceID, err := parseID(args[0])
			if err != nil {
				return err
			}
			targetID, err := parseID(args[1])
			if err != nil {
				return err
			}

			characters := character.NewDBCharacterRepository(db)
			accessor := graph.NewAccessor(db, characters, graph.WithSelfLoops(cfg.Graph.AllowSelfLoops))

			edge := &graph.Relationship{
				SourceID:    sourceID,
				TargetID:    targetID,
				Type:        args[2],
				Description: description,
				Color:       edgeColor,
				Width:       width,
			}
			if err := accessor.AddEdge(ctx, edge); err != nil {
				return fmt.Errorf("accessor.AddEdge(%d -> %d) > %w", sourceID, targetID, err)
			}
			fmt.Printf("Added relationship %d: %d -> %d (%s)\n", edge.ID, sourceID, targetID, edge.Type)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Relationship description")
	cmd.Flags().StringVar(&edgeColor, "color", "", "Display color for the board")
	cmd.Flags().Float64Var(&width, "width", 0, "Display line width for the board")
	return cmd
}

func newRelationshipRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <relationship id>",
		Short: "Remove a single relationship",
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
			if err := accessor.RemoveEdge(ctx, id); err != nil {
				return fmt.Errorf("accessor.RemoveEdge(%d) > %w", id, err)
			}
			fmt.Printf("Removed relationship %d\n", id)
			return nil
		},
	}
}

func newRelationshipNeighborsCommand() *cobra.Command {
	directionFlag := DirectionFlag(graph.DirectionBoth)

	cmd := &cobra.Command{
		Use:   "neighbors <character id>",
		Short: "List the edges incident to a character",
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
			neighbors, err := accessor.Neighbors(ctx, id, graph.Direction(directionFlag))
			if err != nil {
				return fmt.Errorf("accessor.Neighbors(%d) > %w", id, err)
			}
			if len(neighbors) == 0 {
				fmt.Println("No relationships")
				return nil
			}

			for _, neighbor := range neighbors {
				other, err := characters.FindByID(ctx, neighbor.CharacterID)
				if err != nil {
					return fmt.Errorf("characters.FindByID(%d) > %w", neighbor.CharacterID, err)
				}
				name := fmt.Sprintf("character %d", neighbor.CharacterID)
				if other != nil {
					name = other.Name
				}
				edge := neighbor.Relationship
				arrow := "->"
				if edge.TargetID == id && edge.SourceID != id {
					arrow = "<-"
				}
				fmt.Printf("%d: %s %s (%s)\n", edge.ID, arrow, name, edge.Type)
			}
			return nil
		},
	}
	cmd.Flags().Var(&directionFlag, "direction", "Edge direction to follow. Options: outgoing, incoming, both")
	return cmd
}
