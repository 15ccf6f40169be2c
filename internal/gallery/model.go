// Package gallery provides image annotation models together with the batch
// loader and result cache used to resolve them. Image ids are opaque numbers
// owned by the external gallery; no image table or image bytes live here.
package gallery

import (
	"github.com/at-ishikawa/dramatis/internal/database"
)

// CharacterTag marks that a character appears in a gallery image.
type CharacterTag struct {
	ID          int64         `db:"id" yaml:"id"`
	StoryID     int64         `db:"story_id" yaml:"story_id"`
	CharacterID int64         `db:"character_id" yaml:"character_id"`
	ImageID     int64         `db:"image_id" yaml:"image_id"`
	CreatedAt   database.Time `db:"created_at" yaml:"-"`
	UpdatedAt   database.Time `db:"updated_at" yaml:"-"`
}

// QuickEvent is a short annotation attached to a gallery image, optionally
// linked to a character.
type QuickEvent struct {
	ID          int64         `db:"id" yaml:"id"`
	StoryID     int64         `db:"story_id" yaml:"story_id"`
	ImageID     int64         `db:"image_id" yaml:"image_id"`
	CharacterID *int64        `db:"character_id" yaml:"character_id,omitempty"`
	Text        string        `db:"text" yaml:"text"`
	CreatedAt   database.Time `db:"created_at" yaml:"-"`
	UpdatedAt   database.Time `db:"updated_at" yaml:"-"`
}

// Bundle groups every annotation of a single image. An image with no
// annotations has an empty bundle, which is a valid value rather than an
// error.
type Bundle struct {
	ImageID     int64
	Tags        []CharacterTag
	QuickEvents []QuickEvent
}
