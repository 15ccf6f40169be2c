package graph

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/dramatis/internal/character"
	"github.com/at-ishikawa/dramatis/internal/database"
)

//go:generate mockgen -source=accessor.go -destination=../mocks/graph/mock_invalidator.go -package=mock_graph

// ErrInvalidEndpoint indicates an edge references a missing character, spans
// two stories, or forms a self-loop while self-loops are disabled.
var ErrInvalidEndpoint = errors.New("invalid relationship endpoint")

// Invalidator drops cached image bundles after a write touches them.
type Invalidator interface {
	Invalidate(imageIDs ...int64)
}

// Accessor performs graph operations over the relationship table.
type Accessor struct {
	db             *sqlx.DB
	characters     character.CharacterRepository
	cache          Invalidator
	allowSelfLoops bool
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithInvalidator wires the cache that character removal must invalidate.
func WithInvalidator(inv Invalidator) Option {
	return func(a *Accessor) {
		a.cache = inv
	}
}

// WithSelfLoops controls whether an edge may point a character at itself.
func WithSelfLoops(allowed bool) Option {
	return func(a *Accessor) {
		a.allowSelfLoops = allowed
	}
}

// NewAccessor creates a new Accessor. Self-loops are allowed unless disabled
// through WithSelfLoops.
func NewAccessor(db *sqlx.DB, characters character.CharacterRepository, opts ...Option) *Accessor {
	a := &Accessor{
		db:             db,
		characters:     characters,
		allowSelfLoops: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Neighbors returns the edges incident to a character in the given direction,
// each paired with the character id on the far end, ordered by edge id.
func (a *Accessor) Neighbors(ctx context.Context, characterID int64, direction Direction) ([]Neighbor, error) {
	var (
		query string
		args  []interface{}
	)
	switch direction {
	case DirectionOutgoing:
		query = "SELECT * FROM relationships WHERE source_id = ? ORDER BY id"
		args = []interface{}{characterID}
	case DirectionIncoming:
		query = "SELECT * FROM relationships WHERE target_id = ? ORDER BY id"
		args = []interface{}{characterID}
	case DirectionBoth:
		query = "SELECT * FROM relationships WHERE source_id = ? OR target_id = ? ORDER BY id"
		args = []interface{}{characterID, characterID}
	default:
		return nil, fmt.Errorf("unknown direction: %q", direction)
	}

	var edges []Relationship
	if err := a.db.SelectContext(ctx, &edges, query, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(relationships) > %w", err)
	}

	neighbors := make([]Neighbor, len(edges))
	for i, edge := range edges {
		other := edge.TargetID
		if edge.TargetID == characterID && edge.SourceID != characterID {
			other = edge.SourceID
		}
		neighbors[i] = Neighbor{Relationship: edge, CharacterID: other}
	}
	return neighbors, nil
}

// FindByID returns the edge with the given id, or nil if not found.
func (a *Accessor) FindByID(ctx context.Context, edgeID int64) (*Relationship, error) {
	var edge Relationship
	err := a.db.GetContext(ctx, &edge, "SELECT * FROM relationships WHERE id = ?", edgeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(relationship) > %w", err)
	}
	return &edge, nil
}

// FindByStory returns every edge whose endpoints belong to the story,
// ordered by edge id.
func (a *Accessor) FindByStory(ctx context.Context, storyID int64) ([]Relationship, error) {
	var edges []Relationship
	query := `SELECT r.* FROM relationships r
		JOIN characters c ON r.source_id = c.id
		WHERE c.story_id = ?
		ORDER BY r.id`
	if err := a.db.SelectContext(ctx, &edges, query, storyID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(relationships by story) > %w", err)
	}
	return edges, nil
}

// AddEdge validates the endpoints and inserts the edge, filling in its id and
// timestamps. Both endpoints must exist and belong to the same story.
func (a *Accessor) AddEdge(ctx context.Context, edge *Relationship) error {
	source, err := a.characters.FindByID(ctx, edge.SourceID)
	if err != nil {
		return fmt.Errorf("characters.FindByID(source) > %w", err)
	}
	if source == nil {
		return fmt.Errorf("%w: source character %d does not exist", ErrInvalidEndpoint, edge.SourceID)
	}
	target, err := a.characters.FindByID(ctx, edge.TargetID)
	if err != nil {
		return fmt.Errorf("characters.FindByID(target) > %w", err)
	}
	if target == nil {
		return fmt.Errorf("%w: target character %d does not exist", ErrInvalidEndpoint, edge.TargetID)
	}
	if source.StoryID != target.StoryID {
		return fmt.Errorf("%w: characters %d and %d belong to different stories", ErrInvalidEndpoint, edge.SourceID, edge.TargetID)
	}
	if !a.allowSelfLoops && edge.SourceID == edge.TargetID {
		return fmt.Errorf("%w: self-loops are disabled", ErrInvalidEndpoint)
	}

	now := database.Now()
	result, err := a.db.ExecContext(ctx,
		`INSERT INTO relationships (source_id, target_id, relationship_type, description, color, width, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		edge.SourceID, edge.TargetID, edge.Type, edge.Description, edge.Color, edge.Width, now, now)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert relationship) > %w", database.MapError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	edge.ID = id
	edge.CreatedAt = now
	edge.UpdatedAt = now
	return nil
}

// RemoveEdge deletes a single edge. No other edges are affected.
func (a *Accessor) RemoveEdge(ctx context.Context, edgeID int64) error {
	result, err := a.db.ExecContext(ctx, "DELETE FROM relationships WHERE id = ?", edgeID)
	if err != nil {
		return fmt.Errorf("db.ExecContext(delete relationship) > %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if n == 0 {
		return fmt.Errorf("relationship %d: %w", edgeID, database.ErrNotFound)
	}
	return nil
}

// RemoveCharacter deletes a character with all its incident edges and image
// annotations, then invalidates the cached bundles of every touched image.
func (a *Accessor) RemoveCharacter(ctx context.Context, characterID int64) error {
	imageIDs, err := a.characters.Delete(ctx, characterID)
	if err != nil {
		return fmt.Errorf("characters.Delete() > %w", err)
	}
	if a.cache != nil && len(imageIDs) > 0 {
		a.cache.Invalidate(imageIDs...)
	}
	return nil
}
