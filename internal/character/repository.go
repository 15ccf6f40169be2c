package character

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/dramatis/internal/database"
)

// CharacterRepository defines operations for managing characters.
type CharacterRepository interface {
	FindByStory(ctx context.Context, storyID int64) ([]Character, error)
	FindByID(ctx context.Context, id int64) (*Character, error)
	FindByName(ctx context.Context, storyID int64, name string) (*Character, error)
	Create(ctx context.Context, c *Character) error
	Update(ctx context.Context, c *Character) error
	Delete(ctx context.Context, id int64) ([]int64, error)
}

// DBCharacterRepository implements CharacterRepository on a SQL database.
type DBCharacterRepository struct {
	db *sqlx.DB
}

// NewDBCharacterRepository creates a new DBCharacterRepository.
func NewDBCharacterRepository(db *sqlx.DB) *DBCharacterRepository {
	return &DBCharacterRepository{db: db}
}

// FindByStory returns all characters of a story ordered by id.
func (r *DBCharacterRepository) FindByStory(ctx context.Context, storyID int64) ([]Character, error) {
	var characters []Character
	if err := r.db.SelectContext(ctx, &characters,
		"SELECT * FROM characters WHERE story_id = ? ORDER BY id", storyID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(characters) > %w", err)
	}
	return characters, nil
}

// FindByID returns the character with the given id, or nil if not found.
func (r *DBCharacterRepository) FindByID(ctx context.Context, id int64) (*Character, error) {
	var c Character
	err := r.db.GetContext(ctx, &c, "SELECT * FROM characters WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(character) > %w", err)
	}
	return &c, nil
}

// FindByName returns the story's character with the given name, or nil if not found.
func (r *DBCharacterRepository) FindByName(ctx context.Context, storyID int64, name string) (*Character, error) {
	var c Character
	err := r.db.GetContext(ctx, &c,
		"SELECT * FROM characters WHERE story_id = ? AND name = ?", storyID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(character by name) > %w", err)
	}
	return &c, nil
}

// Create inserts a character and fills in its id and timestamps.
// A missing story fails with database.ErrForeignKey.
func (r *DBCharacterRepository) Create(ctx context.Context, c *Character) error {
	if c.Gender == "" {
		c.Gender = GenderNotSpecified
	}
	now := database.Now()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO characters (story_id, name, aliases, is_main_character, age_value, age_category, gender, avatar_path, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.StoryID, c.Name, c.Aliases, c.IsMainCharacter, c.AgeValue, c.AgeCategory, c.Gender, c.AvatarPath, now, now)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert character) > %w", database.MapError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// Update updates a character's fields.
func (r *DBCharacterRepository) Update(ctx context.Context, c *Character) error {
	now := database.Now()
	result, err := r.db.ExecContext(ctx,
		`UPDATE characters SET name = ?, aliases = ?, is_main_character = ?, age_value = ?, age_category = ?, gender = ?, avatar_path = ?, updated_at = ?
			WHERE id = ?`,
		c.Name, c.Aliases, c.IsMainCharacter, c.AgeValue, c.AgeCategory, c.Gender, c.AvatarPath, now, c.ID)
	if err != nil {
		return fmt.Errorf("db.ExecContext(update character) > %w", database.MapError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if n == 0 {
		return fmt.Errorf("character %d: %w", c.ID, database.ErrNotFound)
	}
	c.UpdatedAt = now
	return nil
}

// Delete removes a character together with its incident relationships and its
// image tags, and unlinks it from quick events, all in one transaction.
// It returns the ids of the images whose annotations were touched so callers
// can invalidate cached bundles.
func (r *DBCharacterRepository) Delete(ctx context.Context, id int64) ([]int64, error) {
	var imageIDs []int64
	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := tx.SelectContext(ctx, &imageIDs,
			`SELECT image_id FROM character_tags WHERE character_id = ?
				UNION SELECT image_id FROM quick_events WHERE character_id = ?
				ORDER BY image_id`, id, id); err != nil {
			return fmt.Errorf("tx.SelectContext(affected images) > %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM relationships WHERE source_id = ? OR target_id = ?", id, id); err != nil {
			return fmt.Errorf("tx.ExecContext(delete relationships) > %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM character_tags WHERE character_id = ?", id); err != nil {
			return fmt.Errorf("tx.ExecContext(delete character_tags) > %w", err)
		}
		// Quick events belong to their image, so they survive with the link cleared.
		if _, err := tx.ExecContext(ctx,
			"UPDATE quick_events SET character_id = NULL WHERE character_id = ?", id); err != nil {
			return fmt.Errorf("tx.ExecContext(unlink quick_events) > %w", err)
		}

		result, err := tx.ExecContext(ctx, "DELETE FROM characters WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("tx.ExecContext(delete character) > %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("result.RowsAffected() > %w", err)
		}
		if n == 0 {
			return fmt.Errorf("character %d: %w", id, database.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return imageIDs, nil
}
