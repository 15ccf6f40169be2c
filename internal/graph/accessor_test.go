package graph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/dramatis/internal/character"
	"github.com/at-ishikawa/dramatis/internal/database"
	"github.com/at-ishikawa/dramatis/internal/gallery"
	"github.com/at-ishikawa/dramatis/internal/graph"
	mock_graph "github.com/at-ishikawa/dramatis/internal/mocks/graph"
	"github.com/at-ishikawa/dramatis/internal/story"
	"github.com/at-ishikawa/dramatis/internal/testutil"
)

func TestAccessor_AddEdge(t *testing.T) {
	db := testutil.OpenTestDatabase(t)
	stories := story.NewDBStoryRepository(db)
	characters := character.NewDBCharacterRepository(db)
	accessor := graph.NewAccessor(db, characters)
	ctx := context.Background()

	s := testutil.CreateStory(t, stories, "The Winter Palace")
	john := testutil.CreateCharacter(t, characters, s.ID, "John")
	jane := testutil.CreateCharacter(t, characters, s.ID, "Jane")

	edge := &graph.Relationship{
		SourceID:    john.ID,
		TargetID:    jane.ID,
		Type:        "Friend",
		Description: "childhood friends",
		Color:       "#ff0000",
		Width:       2.5,
	}
	require.NoError(t, accessor.AddEdge(ctx, edge))
	assert.Greater(t, edge.ID, int64(0))

	got, err := accessor.FindByID(ctx, edge.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, john.ID, got.SourceID)
	assert.Equal(t, jane.ID, got.TargetID)
	assert.Equal(t, "Friend", got.Type)
	assert.Equal(t, "childhood friends", got.Description)
	assert.Equal(t, "#ff0000", got.Color)
	assert.Equal(t, 2.5, got.Width)
}

func TestAccessor_AddEdge_ParallelEdges(t *testing.T) {
	db := testutil.OpenTestDatabase(t)
	stories := story.NewDBStoryRepository(db)
	characters := character.NewDBCharacterRepository(db)
	accessor := graph.NewAccessor(db, characters)
	ctx := context.Background()

	s := testutil.CreateStory(t, stories, "The Winter Palace")
	john := testutil.CreateCharacter(t, characters, s.ID, "John")
	jane := testutil.CreateCharacter(t, characters, s.ID, "Jane")

	friend := &graph.Relationship{SourceID: john.ID, TargetID: jane.ID, Type: "Friend"}
	rival := &graph.Relationship{SourceID: john.ID, TargetID: jane.ID, Type: "Rival"}
	require.NoError(t, accessor.AddEdge(ctx, friend))
	require.NoError(t, accessor.AddEdge(ctx, rival))

	edges, err := accessor.FindByStory(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, edges, 2)
}

func TestAccessor_AddEdge_InvalidEndpoints(t *testing.T) {
	db := testutil.OpenTestDatabase(t)
	stories := story.NewDBStoryRepository(db)
	characters := character.NewDBCharacterRepository(db)
	ctx := context.Background()

	first := testutil.CreateStory(t, stories, "First Story")
	second := testutil.CreateStory(t, stories, "Second Story")
	john := testutil.CreateCharacter(t, characters, first.ID, "John")
	stranger := testutil.CreateCharacter(t, characters, second.ID, "Stranger")

	tests := []struct {
		name           string
		edge           graph.Relationship
		allowSelfLoops bool
		wantErr        bool
	}{
		{
			name:    "missing source",
			edge:    graph.Relationship{SourceID: 9999, TargetID: john.ID, Type: "Friend"},
			wantErr: true,
		},
		{
			name:    "missing target",
			edge:    graph.Relationship{SourceID: john.ID, TargetID: 9999, Type: "Friend"},
			wantErr: true,
		},
		{
			name:    "endpoints in different stories",
			edge:    graph.Relationship{SourceID: john.ID, TargetID: stranger.ID, Type: "Friend"},
			wantErr: true,
		},
		{
			name:    "self-loop while disabled",
			edge:    graph.Relationship{SourceID: john.ID, TargetID: john.ID, Type: "Inner voice"},
			wantErr: true,
		},
		{
			name:           "self-loop while enabled",
			edge:           graph.Relationship{SourceID: john.ID, TargetID: john.ID, Type: "Inner voice"},
			allowSelfLoops: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accessor := graph.NewAccessor(db, characters, graph.WithSelfLoops(tt.allowSelfLoops))
			err := accessor.AddEdge(ctx, &tt.edge)
			if tt.wantErr {
				assert.ErrorIs(t, err, graph.ErrInvalidEndpoint)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAccessor_Neighbors(t *testing.T) {
	db := testutil.OpenTestDatabase(t)
	stories := story.NewDBStoryRepository(db)
	characters := character.NewDBCharacterRepository(db)
	accessor := graph.NewAccessor(db, characters)
	ctx := context.Background()

	s := testutil.CreateStory(t, stories, "The Winter Palace")
	john := testutil.CreateCharacter(t, characters, s.ID, "John")
	jane := testutil.CreateCharacter(t, characters, s.ID, "Jane")

	friend := &graph.Relationship{SourceID: john.ID, TargetID: jane.ID, Type: "Friend"}
	colleague := &graph.Relationship{SourceID: jane.ID, TargetID: john.ID, Type: "Colleague"}
	loop := &graph.Relationship{SourceID: john.ID, TargetID: john.ID, Type: "Inner voice"}
	require.NoError(t, accessor.AddEdge(ctx, friend))
	require.NoError(t, accessor.AddEdge(ctx, colleague))
	require.NoError(t, accessor.AddEdge(ctx, loop))

	tests := []struct {
		name          string
		direction     graph.Direction
		wantEdgeIDs   []int64
		wantFarEndIDs []int64
	}{
		{
			name:          "outgoing",
			direction:     graph.DirectionOutgoing,
			wantEdgeIDs:   []int64{friend.ID, loop.ID},
			wantFarEndIDs: []int64{jane.ID, john.ID},
		},
		{
			name:          "incoming",
			direction:     graph.DirectionIncoming,
			wantEdgeIDs:   []int64{colleague.ID, loop.ID},
			wantFarEndIDs: []int64{jane.ID, john.ID},
		},
		{
			name:          "both",
			direction:     graph.DirectionBoth,
			wantEdgeIDs:   []int64{friend.ID, colleague.ID, loop.ID},
			wantFarEndIDs: []int64{jane.ID, jane.ID, john.ID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := accessor.Neighbors(ctx, john.ID, tt.direction)
			require.NoError(t, err)
			require.Len(t, got, len(tt.wantEdgeIDs))
			for i, neighbor := range got {
				assert.Equal(t, tt.wantEdgeIDs[i], neighbor.Relationship.ID)
				assert.Equal(t, tt.wantFarEndIDs[i], neighbor.CharacterID)
			}
		})
	}

	t.Run("unknown direction", func(t *testing.T) {
		_, err := accessor.Neighbors(ctx, john.ID, graph.Direction("sideways"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown direction")
	})

	t.Run("isolated character", func(t *testing.T) {
		got, err := accessor.Neighbors(ctx, jane.ID, graph.DirectionOutgoing)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, colleague.ID, got[0].Relationship.ID)
	})
}

func TestAccessor_FindByStory(t *testing.T) {
	db := testutil.OpenTestDatabase(t)
	stories := story.NewDBStoryRepository(db)
	characters := character.NewDBCharacterRepository(db)
	accessor := graph.NewAccessor(db, characters)
	ctx := context.Background()

	first := testutil.CreateStory(t, stories, "First Story")
	second := testutil.CreateStory(t, stories, "Second Story")
	john := testutil.CreateCharacter(t, characters, first.ID, "John")
	jane := testutil.CreateCharacter(t, characters, first.ID, "Jane")
	hero := testutil.CreateCharacter(t, characters, second.ID, "Hero")
	villain := testutil.CreateCharacter(t, characters, second.ID, "Villain")

	friend := &graph.Relationship{SourceID: john.ID, TargetID: jane.ID, Type: "Friend"}
	nemesis := &graph.Relationship{SourceID: hero.ID, TargetID: villain.ID, Type: "Nemesis"}
	require.NoError(t, accessor.AddEdge(ctx, friend))
	require.NoError(t, accessor.AddEdge(ctx, nemesis))

	got, err := accessor.FindByStory(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, friend.ID, got[0].ID)
}

func TestAccessor_RemoveEdge(t *testing.T) {
	db := testutil.OpenTestDatabase(t)
	stories := story.NewDBStoryRepository(db)
	characters := character.NewDBCharacterRepository(db)
	accessor := graph.NewAccessor(db, characters)
	ctx := context.Background()

	s := testutil.CreateStory(t, stories, "The Winter Palace")
	john := testutil.CreateCharacter(t, characters, s.ID, "John")
	jane := testutil.CreateCharacter(t, characters, s.ID, "Jane")

	friend := &graph.Relationship{SourceID: john.ID, TargetID: jane.ID, Type: "Friend"}
	rival := &graph.Relationship{SourceID: john.ID, TargetID: jane.ID, Type: "Rival"}
	require.NoError(t, accessor.AddEdge(ctx, friend))
	require.NoError(t, accessor.AddEdge(ctx, rival))

	require.NoError(t, accessor.RemoveEdge(ctx, friend.ID))

	gone, err := accessor.FindByID(ctx, friend.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := accessor.FindByID(ctx, rival.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)

	err = accessor.RemoveEdge(ctx, friend.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestAccessor_RemoveCharacter(t *testing.T) {
	db := testutil.OpenTestDatabase(t)
	stories := story.NewDBStoryRepository(db)
	characters := character.NewDBCharacterRepository(db)
	annotations := gallery.NewDBAnnotationRepository(db)
	ctx := context.Background()

	s := testutil.CreateStory(t, stories, "The Winter Palace")
	john := testutil.CreateCharacter(t, characters, s.ID, "John")
	jane := testutil.CreateCharacter(t, characters, s.ID, "Jane")

	require.NoError(t, gallerySetup(ctx, annotations, s.ID, john.ID))

	ctrl := gomock.NewController(t)
	invalidator := mock_graph.NewMockInvalidator(ctrl)
	invalidator.EXPECT().Invalidate(int64(10), int64(11))

	accessor := graph.NewAccessor(db, characters, graph.WithInvalidator(invalidator))
	require.NoError(t, accessor.AddEdge(ctx, &graph.Relationship{
		SourceID: john.ID, TargetID: jane.ID, Type: "Friend",
	}))

	require.NoError(t, accessor.RemoveCharacter(ctx, john.ID))

	gone, err := characters.FindByID(ctx, john.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	var edges int
	require.NoError(t, db.Get(&edges, "SELECT COUNT(*) FROM relationships"))
	assert.Zero(t, edges)

	t.Run("character without annotations skips invalidation", func(t *testing.T) {
		require.NoError(t, accessor.RemoveCharacter(ctx, jane.ID))
	})
}

func TestAccessor_RemoveCharacter_KeepsOtherEndpoint(t *testing.T) {
	db := testutil.OpenTestDatabase(t)
	stories := story.NewDBStoryRepository(db)
	characters := character.NewDBCharacterRepository(db)
	accessor := graph.NewAccessor(db, characters)
	ctx := context.Background()

	s := testutil.CreateStory(t, stories, "Test Story")
	john := testutil.CreateCharacter(t, characters, s.ID, "John",
		testutil.AsMainCharacter(), testutil.WithAgeValue(30))
	jane := testutil.CreateCharacter(t, characters, s.ID, "Jane",
		testutil.WithAgeCategory("ADULT"))

	require.NoError(t, accessor.AddEdge(ctx, &graph.Relationship{
		SourceID: john.ID, TargetID: jane.ID, Type: "Friend",
	}))

	neighbors, err := accessor.Neighbors(ctx, john.ID, graph.DirectionOutgoing)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, jane.ID, neighbors[0].CharacterID)
	assert.Equal(t, "Friend", neighbors[0].Relationship.Type)

	require.NoError(t, accessor.RemoveCharacter(ctx, john.ID))

	var edges int
	require.NoError(t, db.Get(&edges, "SELECT COUNT(*) FROM relationships"))
	assert.Zero(t, edges)

	kept, err := characters.FindByID(ctx, jane.ID)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, "Jane", kept.Name)
	assert.Equal(t, "ADULT", kept.AgeCategory)
}

func gallerySetup(ctx context.Context, annotations *gallery.DBAnnotationRepository, storyID, characterID int64) error {
	if err := annotations.CreateTag(ctx, &gallery.CharacterTag{
		StoryID: storyID, CharacterID: characterID, ImageID: 10,
	}); err != nil {
		return err
	}
	return annotations.CreateQuickEvent(ctx, &gallery.QuickEvent{
		StoryID: storyID, ImageID: 11, CharacterID: &characterID, Text: "at the gate",
	})
}
