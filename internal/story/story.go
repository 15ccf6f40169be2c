// Package story provides story domain models and repository interfaces.
package story

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/at-ishikawa/dramatis/internal/database"
)

// TypeName classifies the medium a story comes from.
type TypeName string

const (
	TypeVisualNovel TypeName = "VISUAL_NOVEL"
	TypeTVSeries    TypeName = "TV_SERIES"
	TypeMovie       TypeName = "MOVIE"
	TypeGame        TypeName = "GAME"
	TypeOther       TypeName = "OTHER"
)

// TypeNames lists every valid story type.
var TypeNames = []TypeName{TypeVisualNovel, TypeTVSeries, TypeMovie, TypeGame, TypeOther}

// ParseTypeName returns the TypeName matching s. An empty string parses as
// TypeOther.
func ParseTypeName(s string) (TypeName, error) {
	if s == "" {
		return TypeOther, nil
	}
	for _, t := range TypeNames {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown story type: %q", s)
}

func (t TypeName) String() string {
	return string(t)
}

// Story represents a single work whose characters are being organized.
type Story struct {
	ID          int64         `db:"id" yaml:"id"`
	Title       string        `db:"title" yaml:"title"`
	Description string        `db:"description" yaml:"description,omitempty"`
	TypeName    TypeName      `db:"type_name" yaml:"type_name"`
	FolderPath  string        `db:"folder_path" yaml:"folder_path"`
	CreatedAt   database.Time `db:"created_at" yaml:"-"`
	UpdatedAt   database.Time `db:"updated_at" yaml:"-"`
}

// FolderName derives a filesystem-safe folder name from a story title.
func FolderName(title string) string {
	name := strings.ToLower(strings.TrimSpace(title))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		}
		return -1
	}, name)
	name = strings.Trim(name, "-")
	if name == "" {
		name = "story"
	}
	return name
}

// FolderPathFor joins the derived folder name onto the library root.
func FolderPathFor(libraryRoot, title string) string {
	return filepath.Join(libraryRoot, FolderName(title))
}

// ImagesDirectory returns the gallery image directory inside the story folder.
func (s Story) ImagesDirectory() string {
	return filepath.Join(s.FolderPath, "images")
}

// AvatarsDirectory returns the avatar directory inside the story folder.
func (s Story) AvatarsDirectory() string {
	return filepath.Join(s.FolderPath, "avatars")
}

// EnsureFolders creates the story folder with its images and avatars
// subdirectories. Image files themselves are never managed here.
func EnsureFolders(s Story) error {
	for _, dir := range []string{s.FolderPath, s.ImagesDirectory(), s.AvatarsDirectory()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
		}
	}
	return nil
}
