package gallery

import (
	"context"
	"fmt"
)

// Annotations coordinates annotation reads and writes for the active story.
// Every write that touches an image invalidates that image's cached bundle
// before returning, so readers never see annotations that are gone from the
// database or miss ones that were just added.
type Annotations struct {
	repo          AnnotationRepository
	cache         *BundleCache
	loader        *Loader
	activeStoryID int64
}

// NewAnnotations creates an Annotations service over the given repository
// and cache.
func NewAnnotations(repo AnnotationRepository, cache *BundleCache) *Annotations {
	return &Annotations{
		repo:   repo,
		cache:  cache,
		loader: NewLoader(repo, cache, DefaultChunkSize),
	}
}

// SwitchStory makes a story the active one. Switching away from a story
// clears the whole cache, since bundle contents are story-scoped.
func (a *Annotations) SwitchStory(storyID int64) {
	if a.activeStoryID == storyID {
		return
	}
	a.activeStoryID = storyID
	if a.cache != nil {
		a.cache.Clear()
	}
}

// ActiveStory returns the id of the active story, or zero if none is set.
func (a *Annotations) ActiveStory() int64 {
	return a.activeStoryID
}

// Bundles resolves bundles for the given images of the active story.
func (a *Annotations) Bundles(ctx context.Context, imageIDs []int64) (map[int64]Bundle, error) {
	return a.loader.LoadBundles(ctx, a.activeStoryID, imageIDs)
}

// BundleFor resolves a single image's bundle through the individual path.
func (a *Annotations) BundleFor(ctx context.Context, imageID int64) (Bundle, error) {
	return a.repo.BundleFor(ctx, a.activeStoryID, imageID)
}

// TagCharacter records that a character appears in an image.
func (a *Annotations) TagCharacter(ctx context.Context, tag *CharacterTag) error {
	if err := a.repo.CreateTag(ctx, tag); err != nil {
		return fmt.Errorf("repo.CreateTag() > %w", err)
	}
	a.invalidate(tag.ImageID)
	return nil
}

// RemoveTag deletes a character tag.
func (a *Annotations) RemoveTag(ctx context.Context, tagID int64) error {
	imageID, err := a.repo.DeleteTag(ctx, tagID)
	if err != nil {
		return fmt.Errorf("repo.DeleteTag() > %w", err)
	}
	a.invalidate(imageID)
	return nil
}

// AddQuickEvent attaches a quick event to an image.
func (a *Annotations) AddQuickEvent(ctx context.Context, event *QuickEvent) error {
	if err := a.repo.CreateQuickEvent(ctx, event); err != nil {
		return fmt.Errorf("repo.CreateQuickEvent() > %w", err)
	}
	a.invalidate(event.ImageID)
	return nil
}

// RemoveQuickEvent deletes a quick event.
func (a *Annotations) RemoveQuickEvent(ctx context.Context, eventID int64) error {
	imageID, err := a.repo.DeleteQuickEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("repo.DeleteQuickEvent() > %w", err)
	}
	a.invalidate(imageID)
	return nil
}

func (a *Annotations) invalidate(imageID int64) {
	if a.cache != nil {
		a.cache.Invalidate(imageID)
	}
}
