// Package graph provides a directed multigraph view over character
// relationships. Edges point from a source character to a target character;
// parallel edges of different types are legal.
package graph

import (
	"fmt"

	"github.com/at-ishikawa/dramatis/internal/database"
)

// Direction selects which incident edges of a character to traverse.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
	DirectionBoth     Direction = "both"
)

// Directions lists every valid traversal direction.
var Directions = []Direction{DirectionOutgoing, DirectionIncoming, DirectionBoth}

// ParseDirection returns the Direction matching s.
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown direction: %q", s)
}

func (d Direction) String() string {
	return string(d)
}

// Relationship is a directed edge between two characters of the same story.
type Relationship struct {
	ID          int64         `db:"id" yaml:"id"`
	SourceID    int64         `db:"source_id" yaml:"source_id"`
	TargetID    int64         `db:"target_id" yaml:"target_id"`
	Type        string        `db:"relationship_type" yaml:"type"`
	Description string        `db:"description" yaml:"description,omitempty"`
	Color       string        `db:"color" yaml:"color,omitempty"`
	Width       float64       `db:"width" yaml:"width,omitempty"`
	CreatedAt   database.Time `db:"created_at" yaml:"-"`
	UpdatedAt   database.Time `db:"updated_at" yaml:"-"`
}

// Neighbor pairs an edge with the character on its far end. For a self-loop
// the far end is the queried character itself.
type Neighbor struct {
	Relationship Relationship
	CharacterID  int64
}
