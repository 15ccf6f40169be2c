// Package dossier assembles printable character profiles from a story's
// cast and relationship graph.
package dossier

import (
	"context"
	"fmt"
	"sort"

	"github.com/at-ishikawa/dramatis/internal/assets"
	"github.com/at-ishikawa/dramatis/internal/character"
	"github.com/at-ishikawa/dramatis/internal/graph"
	"github.com/at-ishikawa/dramatis/internal/story"
)

// Builder reads a story's cast and edges and converts them into template data.
type Builder struct {
	characters character.CharacterRepository
	accessor   *graph.Accessor
}

func NewBuilder(characters character.CharacterRepository, accessor *graph.Accessor) *Builder {
	return &Builder{
		characters: characters,
		accessor:   accessor,
	}
}

// Build collects every character of the story with its outgoing and incoming
// relationships. Main characters sort first, otherwise the cast keeps its
// creation order.
func (b *Builder) Build(ctx context.Context, s *story.Story) (assets.DossierTemplate, error) {
	characters, err := b.characters.FindByStory(ctx, s.ID)
	if err != nil {
		return assets.DossierTemplate{}, fmt.Errorf("characters.FindByStory(%d) > %w", s.ID, err)
	}

	names := make(map[int64]string, len(characters))
	for _, c := range characters {
		names[c.ID] = c.Name
	}

	edges, err := b.accessor.FindByStory(ctx, s.ID)
	if err != nil {
		return assets.DossierTemplate{}, fmt.Errorf("accessor.FindByStory(%d) > %w", s.ID, err)
	}
	outgoing := make(map[int64][]assets.DossierEdge)
	incoming := make(map[int64][]assets.DossierEdge)
	for _, edge := range edges {
		outgoing[edge.SourceID] = append(outgoing[edge.SourceID], assets.DossierEdge{
			Name:        names[edge.TargetID],
			Type:        edge.Type,
			Description: edge.Description,
		})
		incoming[edge.TargetID] = append(incoming[edge.TargetID], assets.DossierEdge{
			Name:        names[edge.SourceID],
			Type:        edge.Type,
			Description: edge.Description,
		})
	}

	sections := make([]assets.DossierCharacter, 0, len(characters))
	for _, c := range characters {
		gender := ""
		if c.Gender != character.GenderNotSpecified {
			gender = string(c.Gender)
		}
		sections = append(sections, assets.DossierCharacter{
			Name:            c.Name,
			Aliases:         c.Aliases,
			IsMainCharacter: c.IsMainCharacter,
			Age:             c.DisplayAge(),
			Gender:          gender,
			Outgoing:        outgoing[c.ID],
			Incoming:        incoming[c.ID],
		})
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].IsMainCharacter && !sections[j].IsMainCharacter
	})

	return assets.DossierTemplate{
		Title:       s.Title,
		Description: s.Description,
		TypeName:    string(s.TypeName),
		Characters:  sections,
	}, nil
}
