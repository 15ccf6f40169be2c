package board

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/dramatis/internal/database"
)

// BoardViewRepository defines operations for managing board views.
type BoardViewRepository interface {
	FindByStory(ctx context.Context, storyID int64) ([]BoardView, error)
	FindByID(ctx context.Context, id int64) (*BoardView, error)
	Create(ctx context.Context, v *BoardView) error
	Update(ctx context.Context, v *BoardView) error
	Delete(ctx context.Context, id int64) error
}

// DBBoardViewRepository implements BoardViewRepository on a SQL database.
type DBBoardViewRepository struct {
	db *sqlx.DB
}

// NewDBBoardViewRepository creates a new DBBoardViewRepository.
func NewDBBoardViewRepository(db *sqlx.DB) *DBBoardViewRepository {
	return &DBBoardViewRepository{db: db}
}

// FindByStory returns all board views of a story ordered by id.
func (r *DBBoardViewRepository) FindByStory(ctx context.Context, storyID int64) ([]BoardView, error) {
	var views []BoardView
	if err := r.db.SelectContext(ctx, &views,
		"SELECT * FROM story_board_views WHERE story_id = ? ORDER BY id", storyID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(story_board_views) > %w", err)
	}
	return views, nil
}

// FindByID returns the board view with the given id, or nil if not found.
func (r *DBBoardViewRepository) FindByID(ctx context.Context, id int64) (*BoardView, error) {
	var v BoardView
	err := r.db.GetContext(ctx, &v, "SELECT * FROM story_board_views WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(story_board_view) > %w", err)
	}
	return &v, nil
}

// Create inserts a board view and fills in its id and timestamps.
func (r *DBBoardViewRepository) Create(ctx context.Context, v *BoardView) error {
	now := database.Now()
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO story_board_views (story_id, name, description, layout_data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		v.StoryID, v.Name, v.Description, v.LayoutData, now, now)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert story_board_view) > %w", database.MapError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	v.ID = id
	v.CreatedAt = now
	v.UpdatedAt = now
	return nil
}

// Update updates a board view's fields.
func (r *DBBoardViewRepository) Update(ctx context.Context, v *BoardView) error {
	now := database.Now()
	result, err := r.db.ExecContext(ctx,
		"UPDATE story_board_views SET name = ?, description = ?, layout_data = ?, updated_at = ? WHERE id = ?",
		v.Name, v.Description, v.LayoutData, now, v.ID)
	if err != nil {
		return fmt.Errorf("db.ExecContext(update story_board_view) > %w", database.MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if n == 0 {
		return fmt.Errorf("board view %d: %w", v.ID, database.ErrNotFound)
	}
	v.UpdatedAt = now
	return nil
}

// Delete removes a board view. Nothing else references board views, so no
// cascade is involved.
func (r *DBBoardViewRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM story_board_views WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("db.ExecContext(delete story_board_view) > %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if n == 0 {
		return fmt.Errorf("board view %d: %w", id, database.ErrNotFound)
	}
	return nil
}
