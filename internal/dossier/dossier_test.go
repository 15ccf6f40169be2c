package dossier_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/dramatis/internal/assets"
	"github.com/at-ishikawa/dramatis/internal/character"
	"github.com/at-ishikawa/dramatis/internal/dossier"
	"github.com/at-ishikawa/dramatis/internal/graph"
	"github.com/at-ishikawa/dramatis/internal/story"
	"github.com/at-ishikawa/dramatis/internal/testutil"
)

func TestBuilder_Build(t *testing.T) {
	db := testutil.OpenTestDatabase(t)
	stories := story.NewDBStoryRepository(db)
	characters := character.NewDBCharacterRepository(db)
	accessor := graph.NewAccessor(db, characters)
	builder := dossier.NewBuilder(characters, accessor)
	ctx := context.Background()

	s := testutil.CreateStory(t, stories, "The Winter Palace")
	jane := testutil.CreateCharacter(t, characters, s.ID, "Jane",
		testutil.WithAgeCategory("adult"))
	john := testutil.CreateCharacter(t, characters, s.ID, "John",
		testutil.AsMainCharacter(),
		testutil.WithAliases("Johnny"),
		testutil.WithAgeValue(34),
		testutil.WithGender(character.GenderMale))
	aide := testutil.CreateCharacter(t, characters, s.ID, "Aide")

	require.NoError(t, accessor.AddEdge(ctx, &graph.Relationship{
		SourceID: john.ID, TargetID: jane.ID, Type: "Friend", Description: "childhood friends",
	}))
	require.NoError(t, accessor.AddEdge(ctx, &graph.Relationship{
		SourceID: jane.ID, TargetID: john.ID, Type: "Rival",
	}))
	require.NoError(t, accessor.AddEdge(ctx, &graph.Relationship{
		SourceID: aide.ID, TargetID: john.ID, Type: "Servant",
	}))

	got, err := builder.Build(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "The Winter Palace", got.Title)
	assert.Equal(t, "OTHER", got.TypeName)

	// Main characters come first; the rest keep creation order.
	require.Len(t, got.Characters, 3)
	assert.Equal(t, "John", got.Characters[0].Name)
	assert.Equal(t, "Jane", got.Characters[1].Name)
	assert.Equal(t, "Aide", got.Characters[2].Name)

	johnSection := got.Characters[0]
	assert.True(t, johnSection.IsMainCharacter)
	assert.Equal(t, []string{"Johnny"}, johnSection.Aliases)
	assert.Equal(t, "34", johnSection.Age)
	assert.Equal(t, "male", johnSection.Gender)
	assert.Equal(t, []assets.DossierEdge{
		{Name: "Jane", Type: "Friend", Description: "childhood friends"},
	}, johnSection.Outgoing)
	assert.Equal(t, []assets.DossierEdge{
		{Name: "Jane", Type: "Rival"},
		{Name: "Aide", Type: "Servant"},
	}, johnSection.Incoming)

	janeSection := got.Characters[1]
	assert.Equal(t, "adult", janeSection.Age)
	assert.Empty(t, janeSection.Gender)
	assert.Equal(t, []assets.DossierEdge{
		{Name: "John", Type: "Rival"},
	}, janeSection.Outgoing)

	aideSection := got.Characters[2]
	assert.Empty(t, aideSection.Incoming)
	assert.Equal(t, []assets.DossierEdge{
		{Name: "John", Type: "Servant"},
	}, aideSection.Outgoing)
}

func TestWriter_Output(t *testing.T) {
	db := testutil.OpenTestDatabase(t)
	stories := story.NewDBStoryRepository(db)
	characters := character.NewDBCharacterRepository(db)
	accessor := graph.NewAccessor(db, characters)
	builder := dossier.NewBuilder(characters, accessor)
	ctx := context.Background()

	s := testutil.CreateStory(t, stories, "The Winter Palace")
	jane := testutil.CreateCharacter(t, characters, s.ID, "Jane")
	john := testutil.CreateCharacter(t, characters, s.ID, "John",
		testutil.AsMainCharacter(),
		testutil.WithAliases("Johnny"))
	require.NoError(t, accessor.AddEdge(ctx, &graph.Relationship{
		SourceID: john.ID, TargetID: jane.ID, Type: "Friend",
	}))

	var progress bytes.Buffer
	writer := dossier.NewWriter(stories, builder, "", &progress)

	outputDirectory := filepath.Join(t.TempDir(), "dossiers")
	got, err := writer.Output(ctx, s.ID, outputDirectory, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outputDirectory, "the-winter-palace.md"), got)
	assert.Contains(t, progress.String(), "Dossier written to: "+got)

	content, err := os.ReadFile(got)
	require.NoError(t, err)
	rendered := string(content)
	assert.Contains(t, rendered, "# The Winter Palace")
	assert.Contains(t, rendered, "## John (main character)")
	assert.Contains(t, rendered, "- Also known as: Johnny")
	assert.Contains(t, rendered, "- Friend of Jane")
	assert.Contains(t, rendered, "## Jane")
	assert.Contains(t, rendered, "- John's Friend")
}

func TestWriter_Output_MissingStory(t *testing.T) {
	db := testutil.OpenTestDatabase(t)
	stories := story.NewDBStoryRepository(db)
	characters := character.NewDBCharacterRepository(db)
	builder := dossier.NewBuilder(characters, graph.NewAccessor(db, characters))
	writer := dossier.NewWriter(stories, builder, "", &bytes.Buffer{})

	_, err := writer.Output(context.Background(), 9999, t.TempDir(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "story 9999 does not exist")
}
