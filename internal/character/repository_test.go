package character_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/dramatis/internal/character"
	"github.com/at-ishikawa/dramatis/internal/database"
	"github.com/at-ishikawa/dramatis/internal/gallery"
	"github.com/at-ishikawa/dramatis/internal/graph"
	"github.com/at-ishikawa/dramatis/internal/story"
	"github.com/at-ishikawa/dramatis/internal/testutil"
)

func TestDBCharacterRepository_CreateAndFind(t *testing.T) {
	db := testutil.OpenTestDatabase(t)
	stories := story.NewDBStoryRepository(db)
	repo := character.NewDBCharacterRepository(db)
	ctx := context.Background()

	s := testutil.CreateStory(t, stories, "The Winter Palace")

	age := 34
	c := &character.Character{
		StoryID:         s.ID,
		Name:            "John",
		Aliases:         character.AliasList{"Johnny", "J-Dog"},
		IsMainCharacter: true,
		AgeValue:        &age,
		Gender:          character.GenderMale,
		AvatarPath:      "library/the-winter-palace/avatars/1.png",
	}
	require.NoError(t, repo.Create(ctx, c))
	assert.Greater(t, c.ID, int64(0))

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "John", got.Name)
	assert.Equal(t, character.AliasList{"Johnny", "J-Dog"}, got.Aliases)
	assert.True(t, got.IsMainCharacter)
	require.NotNil(t, got.AgeValue)
	assert.Equal(t, 34, *got.AgeValue)
	assert.Equal(t, character.GenderMale, got.Gender)
	assert.Equal(t, "library/the-winter-palace/avatars/1.png", got.AvatarPath)

	byName, err := repo.FindByName(ctx, s.ID, "John")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, c.ID, byName.ID)

	missing, err := repo.FindByName(ctx, s.ID, "Nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missingID, err := repo.FindByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missingID)
}

func TestDBCharacterRepository_Create_EmptyGender(t *testing.T) {
	db := testutil.OpenTestDatabase(t)
	stories := story.NewDBStoryRepository(db)
	repo := character.NewDBCharacterRepository(db)
	ctx := context.Background()

	s := testutil.CreateStory(t, stories, "The Winter Palace")

	c := &character.Character{StoryID: s.ID, Name: "Jane"}
	require.NoError(t, repo.Create(ctx, c))
	assert.Equal(t, character.GenderNotSpecified, c.Gender)

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, character.GenderNotSpecified, got.Gender)
}

func TestDBCharacterRepository_Create_MissingStory(t *testing.T) {
	db := testutil.OpenTestDatabase(t)
	repo := character.NewDBCharacterRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, &character.Character{StoryID: 9999, Name: "Orphan"})
	assert.ErrorIs(t, err, database.ErrForeignKey)
}

func TestDBCharacterRepository_FindByStory(t *testing.T) {
	db := testutil.OpenTestDatabase(t)
	stories := story.NewDBStoryRepository(db)
	repo := character.NewDBCharacterRepository(db)
	ctx := context.Background()

	first := testutil.CreateStory(t, stories, "First Story")
	second := testutil.CreateStory(t, stories, "Second Story")
	john := testutil.CreateCharacter(t, repo, first.ID, "John")
	jane := testutil.CreateCharacter(t, repo, first.ID, "Jane")
	testutil.CreateCharacter(t, repo, second.ID, "Stranger")

	got, err := repo.FindByStory(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, john.ID, got[0].ID)
	assert.Equal(t, jane.ID, got[1].ID)
}

func TestDBCharacterRepository_Update(t *testing.T) {
	db := testutil.OpenTestDatabase(t)
	stories := story.NewDBStoryRepository(db)
	repo := character.NewDBCharacterRepository(db)
	ctx := context.Background()

	s := testutil.CreateStory(t, stories, "The Winter Palace")
	c := testutil.CreateCharacter(t, repo, s.ID, "John")

	c.Name = "Johnathan"
	c.Aliases = character.AliasList{"Johnny"}
	c.IsMainCharacter = true
	c.AgeCategory = "adult"
	c.Gender = character.GenderMale
	require.NoError(t, repo.Update(ctx, c))

	got, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Johnathan", got.Name)
	assert.Equal(t, character.AliasList{"Johnny"}, got.Aliases)
	assert.True(t, got.IsMainCharacter)
	assert.Nil(t, got.AgeValue)
	assert.Equal(t, "adult", got.AgeCategory)

	err = repo.Update(ctx, &character.Character{ID: 9999, Name: "Ghost"})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestDBCharacterRepository_Delete(t *testing.T) {
	db := testutil.OpenTestDatabase(t)
	stories := story.NewDBStoryRepository(db)
	repo := character.NewDBCharacterRepository(db)
	accessor := graph.NewAccessor(db, repo)
	annotations := gallery.NewDBAnnotationRepository(db)
	ctx := context.Background()

	s := testutil.CreateStory(t, stories, "The Winter Palace")
	john := testutil.CreateCharacter(t, repo, s.ID, "John")
	jane := testutil.CreateCharacter(t, repo, s.ID, "Jane")

	require.NoError(t, accessor.AddEdge(ctx, &graph.Relationship{
		SourceID: john.ID, TargetID: jane.ID, Type: "Friend",
	}))
	require.NoError(t, accessor.AddEdge(ctx, &graph.Relationship{
		SourceID: jane.ID, TargetID: john.ID, Type: "Colleague",
	}))

	require.NoError(t, annotations.CreateTag(ctx, &gallery.CharacterTag{
		StoryID: s.ID, CharacterID: john.ID, ImageID: 10,
	}))
	require.NoError(t, annotations.CreateTag(ctx, &gallery.CharacterTag{
		StoryID: s.ID, CharacterID: john.ID, ImageID: 11,
	}))
	require.NoError(t, annotations.CreateTag(ctx, &gallery.CharacterTag{
		StoryID: s.ID, CharacterID: jane.ID, ImageID: 30,
	}))
	require.NoError(t, annotations.CreateQuickEvent(ctx, &gallery.QuickEvent{
		StoryID: s.ID, ImageID: 11, CharacterID: &john.ID, Text: "John by the window",
	}))
	require.NoError(t, annotations.CreateQuickEvent(ctx, &gallery.QuickEvent{
		StoryID: s.ID, ImageID: 12, CharacterID: &john.ID, Text: "John leaving",
	}))

	imageIDs, err := repo.Delete(ctx, john.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11, 12}, imageIDs)

	got, err := repo.FindByID(ctx, john.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Both incident edges are gone.
	var edges int
	require.NoError(t, db.Get(&edges, "SELECT COUNT(*) FROM relationships"))
	assert.Zero(t, edges)

	// John's tags are gone, Jane's survive.
	var tags int
	require.NoError(t, db.Get(&tags, "SELECT COUNT(*) FROM character_tags"))
	assert.Equal(t, 1, tags)

	// Quick events survive with the character link cleared.
	var linked int
	require.NoError(t, db.Get(&linked, "SELECT COUNT(*) FROM quick_events WHERE character_id IS NOT NULL"))
	assert.Zero(t, linked)
	var events int
	require.NoError(t, db.Get(&events, "SELECT COUNT(*) FROM quick_events"))
	assert.Equal(t, 2, events)

	_, err = repo.Delete(ctx, john.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}
