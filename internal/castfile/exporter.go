package castfile

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/dramatis/internal/character"
	"github.com/at-ishikawa/dramatis/internal/graph"
	"github.com/at-ishikawa/dramatis/internal/story"
)

// Exporter reads a story's cast from the database and returns a File.
type Exporter struct {
	stories    story.StoryRepository
	characters character.CharacterRepository
	accessor   *graph.Accessor
}

// NewExporter creates a new Exporter.
func NewExporter(stories story.StoryRepository, characters character.CharacterRepository, accessor *graph.Accessor) *Exporter {
	return &Exporter{
		stories:    stories,
		characters: characters,
		accessor:   accessor,
	}
}

// Export builds a cast file from a story and everything attached to it.
// Relationships are keyed by character name so the file stays portable
// across databases.
func (e *Exporter) Export(ctx context.Context, storyID int64) (*File, error) {
	s, err := e.stories.FindByID(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("stories.FindByID(%d) > %w", storyID, err)
	}
	if s == nil {
		return nil, fmt.Errorf("story %d does not exist", storyID)
	}

	characters, err := e.characters.FindByStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("characters.FindByStory(%d) > %w", storyID, err)
	}

	names := make(map[int64]string, len(characters))
	records := make([]CharacterRecord, 0, len(characters))
	for _, c := range characters {
		names[c.ID] = c.Name
		records = append(records, CharacterRecord{
			Name:            c.Name,
			Aliases:         c.Aliases,
			IsMainCharacter: c.IsMainCharacter,
			AgeValue:        c.AgeValue,
			AgeCategory:     c.AgeCategory,
			Gender:          string(c.Gender),
		})
	}

	edges, err := e.accessor.FindByStory(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("accessor.FindByStory(%d) > %w", storyID, err)
	}
	relationships := make([]RelationshipRecord, 0, len(edges))
	for _, edge := range edges {
		source, ok := names[edge.SourceID]
		if !ok {
			return nil, fmt.Errorf("relationship %d references character %d outside story %d", edge.ID, edge.SourceID, storyID)
		}
		target, ok := names[edge.TargetID]
		if !ok {
			return nil, fmt.Errorf("relationship %d references character %d outside story %d", edge.ID, edge.TargetID, storyID)
		}
		relationships = append(relationships, RelationshipRecord{
			Source:      source,
			Target:      target,
			Type:        edge.Type,
			Description: edge.Description,
			Color:       edge.Color,
			Width:       edge.Width,
		})
	}

	return &File{
		Title:         s.Title,
		Description:   s.Description,
		TypeName:      string(s.TypeName),
		Characters:    records,
		Relationships: relationships,
	}, nil
}
