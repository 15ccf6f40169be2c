package castfile

import (
	"context"
	"fmt"
	"io"

	"github.com/at-ishikawa/dramatis/internal/character"
	"github.com/at-ishikawa/dramatis/internal/graph"
	"github.com/at-ishikawa/dramatis/internal/story"
)

// ImportResult tracks counts for each import operation.
type ImportResult struct {
	StoriesNew           int
	StoriesSkipped       int
	CharactersNew        int
	CharactersSkipped    int
	CharactersUpdated    int
	RelationshipsNew     int
	RelationshipsSkipped int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun         bool
	UpdateExisting bool
}

// Importer reads cast files and writes to the database.
type Importer struct {
	stories     story.StoryRepository
	characters  character.CharacterRepository
	accessor    *graph.Accessor
	writer      io.Writer
	libraryRoot string
}

// NewImporter creates a new Importer. New stories get their folder assigned
// under libraryRoot.
func NewImporter(stories story.StoryRepository, characters character.CharacterRepository, accessor *graph.Accessor, writer io.Writer, libraryRoot string) *Importer {
	return &Importer{
		stories:     stories,
		characters:  characters,
		accessor:    accessor,
		writer:      writer,
		libraryRoot: libraryRoot,
	}
}

// Import upserts the cast file's story, characters, and relationships.
// Existing characters are skipped unless UpdateExisting is set; an edge is
// skipped when one with the same endpoints and type already exists.
func (imp *Importer) Import(ctx context.Context, f *File, opts ImportOptions) (*ImportResult, error) {
	var result ImportResult

	typeName, err := story.ParseTypeName(f.TypeName)
	if err != nil {
		return nil, fmt.Errorf("story.ParseTypeName() > %w", err)
	}

	s, err := imp.stories.FindByTitle(ctx, f.Title)
	if err != nil {
		return nil, fmt.Errorf("stories.FindByTitle(%s) > %w", f.Title, err)
	}
	if s == nil {
		s = &story.Story{
			Title:       f.Title,
			Description: f.Description,
			TypeName:    typeName,
			FolderPath:  f.FolderPath(imp.libraryRoot),
		}
		if !opts.DryRun {
			if err := imp.stories.Create(ctx, s); err != nil {
				return nil, fmt.Errorf("stories.Create(%s) > %w", f.Title, err)
			}
		}
		fmt.Fprintf(imp.writer, "  [NEW]  story %q\n", f.Title)
		result.StoriesNew++
	} else {
		result.StoriesSkipped++
	}

	characterIDs := make(map[string]int64, len(f.Characters))
	characters, err := imp.characters.FindByStory(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("characters.FindByStory() > %w", err)
	}
	for _, c := range characters {
		characterIDs[c.Name] = c.ID
	}

	for _, record := range f.Characters {
		if err := imp.importCharacter(ctx, s.ID, record, opts, characterIDs, &result); err != nil {
			return nil, fmt.Errorf("importCharacter(%s) > %w", record.Name, err)
		}
	}

	if err := imp.importRelationships(ctx, s.ID, f.Relationships, opts, characterIDs, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (imp *Importer) importCharacter(ctx context.Context, storyID int64, record CharacterRecord, opts ImportOptions, characterIDs map[string]int64, result *ImportResult) error {
	gender, err := character.ParseGender(record.Gender)
	if err != nil {
		return fmt.Errorf("character.ParseGender() > %w", err)
	}

	existing, err := imp.characters.FindByName(ctx, storyID, record.Name)
	if err != nil {
		return fmt.Errorf("characters.FindByName() > %w", err)
	}
	if existing != nil {
		characterIDs[record.Name] = existing.ID
		if !opts.UpdateExisting {
			fmt.Fprintf(imp.writer, "  [SKIP]  character %q\n", record.Name)
			result.CharactersSkipped++
			return nil
		}
		existing.Aliases = character.AliasList(record.Aliases)
		existing.IsMainCharacter = record.IsMainCharacter
		existing.AgeValue = record.AgeValue
		existing.AgeCategory = record.AgeCategory
		existing.Gender = gender
		if !opts.DryRun {
			if err := imp.characters.Update(ctx, existing); err != nil {
				return fmt.Errorf("characters.Update() > %w", err)
			}
		}
		fmt.Fprintf(imp.writer, "  [UPDATE]  character %q\n", record.Name)
		result.CharactersUpdated++
		return nil
	}

	c := &character.Character{
		StoryID:         storyID,
		Name:            record.Name,
		Aliases:         character.AliasList(record.Aliases),
		IsMainCharacter: record.IsMainCharacter,
		AgeValue:        record.AgeValue,
		AgeCategory:     record.AgeCategory,
		Gender:          gender,
	}
	if opts.DryRun {
		// Synthetic id so relationship records can still resolve this name.
		characterIDs[record.Name] = -int64(len(characterIDs) + 1)
	} else {
		if err := imp.characters.Create(ctx, c); err != nil {
			return fmt.Errorf("characters.Create() > %w", err)
		}
		characterIDs[record.Name] = c.ID
	}
	fmt.Fprintf(imp.writer, "  [NEW]  character %q\n", record.Name)
	result.CharactersNew++
	return nil
}

func (imp *Importer) importRelationships(ctx context.Context, storyID int64, records []RelationshipRecord, opts ImportOptions, characterIDs map[string]int64, result *ImportResult) error {
	if len(records) == 0 {
		return nil
	}

	type edgeKey struct {
		sourceID int64
		targetID int64
		edgeType string
	}
	existing := make(map[edgeKey]bool)
	edges, err := imp.accessor.FindByStory(ctx, storyID)
	if err != nil {
		return fmt.Errorf("accessor.FindByStory() > %w", err)
	}
	for _, edge := range edges {
		existing[edgeKey{edge.SourceID, edge.TargetID, edge.Type}] = true
	}

	for _, record := range records {
		sourceID, ok := characterIDs[record.Source]
		if !ok {
			return fmt.Errorf("relationship source %q is not in the cast file or database", record.Source)
		}
		targetID, ok := characterIDs[record.Target]
		if !ok {
			return fmt.Errorf("relationship target %q is not in the cast file or database", record.Target)
		}

		if existing[edgeKey{sourceID, targetID, record.Type}] {
			result.RelationshipsSkipped++
			continue
		}

		if !opts.DryRun {
			edge := &graph.Relationship{
				SourceID:    sourceID,
				TargetID:    targetID,
				Type:        record.Type,
				Description: record.Description,
				Color:       record.Color,
				Width:       record.Width,
			}
			if err := imp.accessor.AddEdge(ctx, edge); err != nil {
				return fmt.Errorf("accessor.AddEdge(%s -> %s) > %w", record.Source, record.Target, err)
			}
		}
		fmt.Fprintf(imp.writer, "  [NEW]  relationship %q -> %q (%s)\n", record.Source, record.Target, record.Type)
		result.RelationshipsNew++
	}
	return nil
}
