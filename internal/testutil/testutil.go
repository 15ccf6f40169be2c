// Package testutil provides shared test helpers for opening throwaway
// databases and creating story fixtures.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/dramatis/internal/character"
	"github.com/at-ishikawa/dramatis/internal/config"
	"github.com/at-ishikawa/dramatis/internal/database"
	"github.com/at-ishikawa/dramatis/internal/story"
)

// SetupTestConfig creates a minimal config file and all required directories for testing.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	dirs := []string{
		"library", filepath.Join("outputs", "dossiers"),
	}
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	configContent := fmt.Sprintf(`library:
  root_directory: %s
database:
  driver: sqlite
  path: %s
outputs:
  dossier_directory: %s
`,
		filepath.Join(tmpDir, "library"),
		filepath.Join(tmpDir, "library", "dramatis.db"),
		filepath.Join(tmpDir, "outputs", "dossiers"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// OpenTestDatabase opens a migrated sqlite database under a temporary
// directory. The connection is closed when the test finishes.
func OpenTestDatabase(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "dramatis.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, database.Migrate(db, database.DriverSQLite))
	return db
}

// StoryOption configures optional fields when creating a story fixture.
type StoryOption func(*story.Story)

// WithStoryType sets the story's type.
func WithStoryType(typeName story.TypeName) StoryOption {
	return func(s *story.Story) {
		s.TypeName = typeName
	}
}

// WithFolderPath overrides the folder path derived from the title.
func WithFolderPath(folderPath string) StoryOption {
	return func(s *story.Story) {
		s.FolderPath = folderPath
	}
}

// CreateStory inserts a story row. The folder path defaults to a slug of the
// title under "library".
func CreateStory(t *testing.T, stories story.StoryRepository, title string, opts ...StoryOption) *story.Story {
	t.Helper()

	s := &story.Story{
		Title:      title,
		TypeName:   story.TypeOther,
		FolderPath: filepath.Join("library", strings.ToLower(strings.ReplaceAll(title, " ", "-"))),
	}
	for _, opt := range opts {
		opt(s)
	}
	require.NoError(t, stories.Create(context.Background(), s))
	return s
}

// CharacterOption configures optional fields when creating a character fixture.
type CharacterOption func(*character.Character)

// WithAliases sets the character's aliases.
func WithAliases(aliases ...string) CharacterOption {
	return func(c *character.Character) {
		c.Aliases = aliases
	}
}

// WithAgeValue sets a numeric age.
func WithAgeValue(age int) CharacterOption {
	return func(c *character.Character) {
		c.AgeValue = &age
	}
}

// WithAgeCategory sets a descriptive age band.
func WithAgeCategory(category string) CharacterOption {
	return func(c *character.Character) {
		c.AgeCategory = category
	}
}

// WithGender sets the character's gender.
func WithGender(gender character.Gender) CharacterOption {
	return func(c *character.Character) {
		c.Gender = gender
	}
}

// AsMainCharacter marks the character as a main character.
func AsMainCharacter() CharacterOption {
	return func(c *character.Character) {
		c.IsMainCharacter = true
	}
}

// CreateCharacter inserts a character row into the given story.
func CreateCharacter(t *testing.T, characters character.CharacterRepository, storyID int64, name string, opts ...CharacterOption) *character.Character {
	t.Helper()

	c := &character.Character{
		StoryID: storyID,
		Name:    name,
		Gender:  character.GenderNotSpecified,
	}
	for _, opt := range opts {
		opt(c)
	}
	require.NoError(t, characters.Create(context.Background(), c))
	return c
}
