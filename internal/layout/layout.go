// Package layout encodes and decodes the JSON placement documents saved with
// board views: character positions plus relationship polylines.
package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed indicates a layout document could not be decoded. A document
// that fails to decode is rejected whole; nothing is guessed or repaired.
var ErrMalformed = errors.New("malformed layout")

// Point is an x,y pair encoded as a two-element JSON array.
type Point struct {
	X float64
	Y float64
}

// MarshalJSON implements the json.Marshaler interface.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("json.Unmarshal(point) > %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("point has %d coordinates, want 2", len(pair))
	}
	p.X = pair[0]
	p.Y = pair[1]
	return nil
}

// CharacterPlacement positions one character on the board.
type CharacterPlacement struct {
	ID int64   `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// RelationshipPath draws one relationship as an ordered polyline.
type RelationshipPath struct {
	ID     int64   `json:"id"`
	Points []Point `json:"points"`
}

// Layout is the decoded form of a board view's layout document.
type Layout struct {
	Characters    []CharacterPlacement `json:"characters"`
	Relationships []RelationshipPath   `json:"relationships"`
}

// Encode serializes a layout to its JSON document form. Nil slices encode as
// empty arrays so both keys are always present.
func Encode(l Layout) ([]byte, error) {
	if l.Characters == nil {
		l.Characters = []CharacterPlacement{}
	}
	if l.Relationships == nil {
		l.Relationships = []RelationshipPath{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal(layout) > %w", err)
	}
	return data, nil
}

// Decode parses a layout document. Any structural problem, including a
// duplicated character or relationship id, fails with ErrMalformed and no
// partial result. Decoded slices are never nil.
func Decode(data []byte) (Layout, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Layout{}, fmt.Errorf("%w: document is not a JSON object", ErrMalformed)
	}

	var l Layout
	if err := json.Unmarshal(trimmed, &l); err != nil {
		return Layout{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	characterIDs := make(map[int64]bool, len(l.Characters))
	for _, p := range l.Characters {
		if characterIDs[p.ID] {
			return Layout{}, fmt.Errorf("%w: character %d is placed twice", ErrMalformed, p.ID)
		}
		characterIDs[p.ID] = true
	}
	relationshipIDs := make(map[int64]bool, len(l.Relationships))
	for _, p := range l.Relationships {
		if relationshipIDs[p.ID] {
			return Layout{}, fmt.Errorf("%w: relationship %d is drawn twice", ErrMalformed, p.ID)
		}
		relationshipIDs[p.ID] = true
	}

	if l.Characters == nil {
		l.Characters = []CharacterPlacement{}
	}
	if l.Relationships == nil {
		l.Relationships = []RelationshipPath{}
	}
	return l, nil
}

// Prune returns a copy of l without placements referencing ids absent from
// the given sets, plus how many entries were dropped. The stored document is
// left untouched; stale references only disappear from what gets rendered.
func Prune(l Layout, characterIDs, relationshipIDs map[int64]bool) (Layout, int) {
	pruned := Layout{
		Characters:    make([]CharacterPlacement, 0, len(l.Characters)),
		Relationships: make([]RelationshipPath, 0, len(l.Relationships)),
	}
	dropped := 0
	for _, p := range l.Characters {
		if !characterIDs[p.ID] {
			dropped++
			continue
		}
		pruned.Characters = append(pruned.Characters, p)
	}
	for _, p := range l.Relationships {
		if !relationshipIDs[p.ID] {
			dropped++
			continue
		}
		pruned.Relationships = append(pruned.Relationships, p)
	}
	return pruned, dropped
}
