package gallery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/dramatis/internal/database"
)

// AnnotationRepository defines storage operations for image annotations.
// The finder methods issue exactly one query each; chunking id sets is the
// Loader's job.
type AnnotationRepository interface {
	FindTagsByImages(ctx context.Context, storyID int64, imageIDs []int64) ([]CharacterTag, error)
	FindQuickEventsByImages(ctx context.Context, imageIDs []int64) ([]QuickEvent, error)
	BundleFor(ctx context.Context, storyID, imageID int64) (Bundle, error)
	CreateTag(ctx context.Context, tag *CharacterTag) error
	DeleteTag(ctx context.Context, id int64) (int64, error)
	CreateQuickEvent(ctx context.Context, event *QuickEvent) error
	DeleteQuickEvent(ctx context.Context, id int64) (int64, error)
}

// DBAnnotationRepository implements AnnotationRepository on a SQL database.
type DBAnnotationRepository struct {
	db *sqlx.DB
}

// NewDBAnnotationRepository creates a new DBAnnotationRepository.
func NewDBAnnotationRepository(db *sqlx.DB) *DBAnnotationRepository {
	return &DBAnnotationRepository{db: db}
}

// FindTagsByImages returns the story's character tags for the given images.
func (r *DBAnnotationRepository) FindTagsByImages(ctx context.Context, storyID int64, imageIDs []int64) ([]CharacterTag, error) {
	if len(imageIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT * FROM character_tags WHERE story_id = ? AND image_id IN (?) ORDER BY id", storyID, imageIDs)
	if err != nil {
		return nil, fmt.Errorf("sqlx.In(character_tags) > %w", err)
	}
	var tags []CharacterTag
	if err := r.db.SelectContext(ctx, &tags, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(character_tags) > %w", err)
	}
	return tags, nil
}

// FindQuickEventsByImages returns the quick events for the given images.
func (r *DBAnnotationRepository) FindQuickEventsByImages(ctx context.Context, imageIDs []int64) ([]QuickEvent, error) {
	if len(imageIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT * FROM quick_events WHERE image_id IN (?) ORDER BY id", imageIDs)
	if err != nil {
		return nil, fmt.Errorf("sqlx.In(quick_events) > %w", err)
	}
	var events []QuickEvent
	if err := r.db.SelectContext(ctx, &events, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(quick_events) > %w", err)
	}
	return events, nil
}

// BundleFor resolves a single image's annotations without going through the
// batch path. Batch loading must return exactly what this returns.
func (r *DBAnnotationRepository) BundleFor(ctx context.Context, storyID, imageID int64) (Bundle, error) {
	bundle := Bundle{ImageID: imageID}
	if err := r.db.SelectContext(ctx, &bundle.Tags,
		"SELECT * FROM character_tags WHERE story_id = ? AND image_id = ? ORDER BY id", storyID, imageID); err != nil {
		return Bundle{}, fmt.Errorf("db.SelectContext(character_tags) > %w", err)
	}
	if err := r.db.SelectContext(ctx, &bundle.QuickEvents,
		"SELECT * FROM quick_events WHERE image_id = ? ORDER BY id", imageID); err != nil {
		return Bundle{}, fmt.Errorf("db.SelectContext(quick_events) > %w", err)
	}
	return bundle, nil
}

// CreateTag inserts a character tag and fills in its id and timestamps.
// Tagging the same character on the same image twice fails with
// database.ErrDuplicateKey.
func (r *DBAnnotationRepository) CreateTag(ctx context.Context, tag *CharacterTag) error {
	now := database.Now()
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO character_tags (story_id, character_id, image_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		tag.StoryID, tag.CharacterID, tag.ImageID, now, now)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert character_tag) > %w", database.MapError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	tag.ID = id
	tag.CreatedAt = now
	tag.UpdatedAt = now
	return nil
}

// DeleteTag removes a tag and returns the id of the image it pointed at.
func (r *DBAnnotationRepository) DeleteTag(ctx context.Context, id int64) (int64, error) {
	var imageID int64
	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &imageID, "SELECT image_id FROM character_tags WHERE id = ?", id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("character tag %d: %w", id, database.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("tx.GetContext(character_tag) > %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM character_tags WHERE id = ?", id); err != nil {
			return fmt.Errorf("tx.ExecContext(delete character_tag) > %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return imageID, nil
}

// CreateQuickEvent inserts a quick event and fills in its id and timestamps.
func (r *DBAnnotationRepository) CreateQuickEvent(ctx context.Context, event *QuickEvent) error {
	now := database.Now()
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO quick_events (story_id, image_id, character_id, `text`, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		event.StoryID, event.ImageID, event.CharacterID, event.Text, now, now)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert quick_event) > %w", database.MapError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	event.ID = id
	event.CreatedAt = now
	event.UpdatedAt = now
	return nil
}

// DeleteQuickEvent removes a quick event and returns the id of the image it
// was attached to.
func (r *DBAnnotationRepository) DeleteQuickEvent(ctx context.Context, id int64) (int64, error) {
	var imageID int64
	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &imageID, "SELECT image_id FROM quick_events WHERE id = ?", id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("quick event %d: %w", id, database.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("tx.GetContext(quick_event) > %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM quick_events WHERE id = ?", id); err != nil {
			return fmt.Errorf("tx.ExecContext(delete quick_event) > %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return imageID, nil
}
