// Package board provides saved board view models and repository interfaces.
package board

import (
	"github.com/at-ishikawa/dramatis/internal/database"
	"github.com/at-ishikawa/dramatis/internal/layout"
)

// BoardView is a named arrangement of a story's characters and relationships.
// LayoutData holds the raw JSON document exactly as it was saved.
type BoardView struct {
	ID          int64         `db:"id" yaml:"id"`
	StoryID     int64         `db:"story_id" yaml:"story_id"`
	Name        string        `db:"name" yaml:"name"`
	Description string        `db:"description" yaml:"description,omitempty"`
	LayoutData  string        `db:"layout_data" yaml:"layout_data,omitempty"`
	CreatedAt   database.Time `db:"created_at" yaml:"-"`
	UpdatedAt   database.Time `db:"updated_at" yaml:"-"`
}

// Layout decodes the stored layout document.
func (v BoardView) Layout() (layout.Layout, error) {
	return layout.Decode([]byte(v.LayoutData))
}

// SetLayout replaces the stored document with the encoded form of l.
func (v *BoardView) SetLayout(l layout.Layout) error {
	data, err := layout.Encode(l)
	if err != nil {
		return err
	}
	v.LayoutData = string(data)
	return nil
}
