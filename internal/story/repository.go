package story

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/dramatis/internal/database"
)

// StoryRepository defines operations for managing stories.
type StoryRepository interface {
	FindAll(ctx context.Context) ([]Story, error)
	FindByID(ctx context.Context, id int64) (*Story, error)
	FindByTitle(ctx context.Context, title string) (*Story, error)
	Create(ctx context.Context, s *Story) error
	Update(ctx context.Context, s *Story) error
	Delete(ctx context.Context, id int64) error
}

// DBStoryRepository implements StoryRepository on a SQL database.
type DBStoryRepository struct {
	db *sqlx.DB
}

// NewDBStoryRepository creates a new DBStoryRepository.
func NewDBStoryRepository(db *sqlx.DB) *DBStoryRepository {
	return &DBStoryRepository{db: db}
}

// FindAll returns all stories ordered by id.
func (r *DBStoryRepository) FindAll(ctx context.Context) ([]Story, error) {
	var stories []Story
	if err := r.db.SelectContext(ctx, &stories, "SELECT * FROM stories ORDER BY id"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(stories) > %w", err)
	}
	return stories, nil
}

// FindByID returns the story with the given id, or nil if not found.
func (r *DBStoryRepository) FindByID(ctx context.Context, id int64) (*Story, error) {
	var s Story
	err := r.db.GetContext(ctx, &s, "SELECT * FROM stories WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(story) > %w", err)
	}
	return &s, nil
}

// FindByTitle returns the story with the given title, or nil if not found.
func (r *DBStoryRepository) FindByTitle(ctx context.Context, title string) (*Story, error) {
	var s Story
	err := r.db.GetContext(ctx, &s, "SELECT * FROM stories WHERE title = ?", title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(story by title) > %w", err)
	}
	return &s, nil
}

// Create inserts a story and fills in its id and timestamps.
// A reused title or folder path fails with database.ErrDuplicateKey.
func (r *DBStoryRepository) Create(ctx context.Context, s *Story) error {
	now := database.Now()
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO stories (title, description, type_name, folder_path, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		s.Title, s.Description, s.TypeName, s.FolderPath, now, now)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert story) > %w", database.MapError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	s.ID = id
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

// Update updates a story's fields.
func (r *DBStoryRepository) Update(ctx context.Context, s *Story) error {
	now := database.Now()
	result, err := r.db.ExecContext(ctx,
		"UPDATE stories SET title = ?, description = ?, type_name = ?, folder_path = ?, updated_at = ? WHERE id = ?",
		s.Title, s.Description, s.TypeName, s.FolderPath, now, s.ID)
	if err != nil {
		return fmt.Errorf("db.ExecContext(update story) > %w", database.MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if n == 0 {
		return fmt.Errorf("story %d: %w", s.ID, database.ErrNotFound)
	}
	s.UpdatedAt = now
	return nil
}

// Delete removes a story together with its characters, their relationships,
// its board views, and its image annotations, all in one transaction.
func (r *DBStoryRepository) Delete(ctx context.Context, id int64) error {
	return database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM relationships WHERE source_id IN (SELECT id FROM characters WHERE story_id = ?)
				OR target_id IN (SELECT id FROM characters WHERE story_id = ?)`, id, id); err != nil {
			return fmt.Errorf("tx.ExecContext(delete relationships) > %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM character_tags WHERE story_id = ?", id); err != nil {
			return fmt.Errorf("tx.ExecContext(delete character_tags) > %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM quick_events WHERE story_id = ?", id); err != nil {
			return fmt.Errorf("tx.ExecContext(delete quick_events) > %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM story_board_views WHERE story_id = ?", id); err != nil {
			return fmt.Errorf("tx.ExecContext(delete story_board_views) > %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM characters WHERE story_id = ?", id); err != nil {
			return fmt.Errorf("tx.ExecContext(delete characters) > %w", err)
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM stories WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("tx.ExecContext(delete story) > %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("result.RowsAffected() > %w", err)
		}
		if n == 0 {
			return fmt.Errorf("story %d: %w", id, database.ErrNotFound)
		}
		return nil
	})
}
