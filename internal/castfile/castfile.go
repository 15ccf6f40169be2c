// Package castfile provides import/export between YAML cast files and the
// database. A cast file is a portable snapshot of one story: its characters
// and the relationship graph between them, keyed by character name rather
// than database id.
package castfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/dramatis/internal/story"
)

// File is the on-disk YAML document for one story's cast.
type File struct {
	Title         string               `yaml:"title"`
	Description   string               `yaml:"description,omitempty"`
	TypeName      string               `yaml:"type_name"`
	Characters    []CharacterRecord    `yaml:"characters"`
	Relationships []RelationshipRecord `yaml:"relationships,omitempty"`
}

// CharacterRecord is one character entry in a cast file.
type CharacterRecord struct {
	Name            string   `yaml:"name"`
	Aliases         []string `yaml:"aliases,omitempty"`
	IsMainCharacter bool     `yaml:"is_main_character,omitempty"`
	AgeValue        *int     `yaml:"age_value,omitempty"`
	AgeCategory     string   `yaml:"age_category,omitempty"`
	Gender          string   `yaml:"gender,omitempty"`
}

// RelationshipRecord is one directed edge in a cast file, with endpoints
// referenced by character name.
type RelationshipRecord struct {
	Source      string  `yaml:"source"`
	Target      string  `yaml:"target"`
	Type        string  `yaml:"type"`
	Description string  `yaml:"description,omitempty"`
	Color       string  `yaml:"color,omitempty"`
	Width       float64 `yaml:"width,omitempty"`
}

// Load reads and parses a cast file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal(%s) > %w", path, err)
	}
	return &f, nil
}

// Save writes a cast file as YAML.
func Save(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("yaml.Marshal() > %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return nil
}

// FolderName derives a filesystem-safe folder name from the story title.
func (f *File) FolderName() string {
	return story.FolderName(f.Title)
}

// FolderPath joins the derived folder name onto the library root.
func (f *File) FolderPath(libraryRoot string) string {
	return story.FolderPathFor(libraryRoot, f.Title)
}
