// Package character provides character domain models and repository interfaces.
package character

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	"github.com/at-ishikawa/dramatis/internal/database"
)

// Gender classifies how a character is presented.
type Gender string

const (
	GenderMale         Gender = "male"
	GenderFemale       Gender = "female"
	GenderNotSpecified Gender = "not_specified"
)

// Genders lists every valid gender value.
var Genders = []Gender{GenderMale, GenderFemale, GenderNotSpecified}

// ParseGender returns the Gender matching s. An empty string parses as
// GenderNotSpecified.
func ParseGender(s string) (Gender, error) {
	if s == "" {
		return GenderNotSpecified, nil
	}
	for _, g := range Genders {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown gender: %q", s)
}

func (g Gender) String() string {
	return string(g)
}

// AliasList holds a character's alternate names. It is stored as a single
// comma-delimited column; decoding trims whitespace and drops empty entries.
type AliasList []string

// ParseAliases splits a delimited alias string into a normalized list.
func ParseAliases(s string) AliasList {
	var aliases AliasList
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		aliases = append(aliases, part)
	}
	return aliases
}

// String joins the aliases back into their delimited form.
func (l AliasList) String() string {
	return strings.Join(l, ", ")
}

// Value implements the driver.Valuer interface. The list is normalized
// before encoding so that storing and reloading yields the same list.
func (l AliasList) Value() (driver.Value, error) {
	return ParseAliases(l.String()).String(), nil
}

// Scan implements the sql.Scanner interface.
func (l *AliasList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		*l = ParseAliases(v)
		return nil
	case []byte:
		*l = ParseAliases(string(v))
		return nil
	}
	return fmt.Errorf("unsupported alias source type %T", src)
}

// Character represents a person appearing in a story.
type Character struct {
	ID              int64         `db:"id" yaml:"id"`
	StoryID         int64         `db:"story_id" yaml:"story_id"`
	Name            string        `db:"name" yaml:"name"`
	Aliases         AliasList     `db:"aliases" yaml:"aliases,omitempty"`
	IsMainCharacter bool          `db:"is_main_character" yaml:"is_main_character"`
	AgeValue        *int          `db:"age_value" yaml:"age_value,omitempty"`
	AgeCategory     string        `db:"age_category" yaml:"age_category,omitempty"`
	Gender          Gender        `db:"gender" yaml:"gender"`
	AvatarPath      string        `db:"avatar_path" yaml:"avatar_path,omitempty"`
	CreatedAt       database.Time `db:"created_at" yaml:"-"`
	UpdatedAt       database.Time `db:"updated_at" yaml:"-"`
}

// DisplayAge returns the numeric age when one is recorded, otherwise the
// age category. Keeping the two consistent is up to the caller.
func (c Character) DisplayAge() string {
	if c.AgeValue != nil {
		return strconv.Itoa(*c.AgeValue)
	}
	return c.AgeCategory
}
