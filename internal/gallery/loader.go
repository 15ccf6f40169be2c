package gallery

import (
	"context"
	"fmt"
)

// DefaultChunkSize bounds how many image ids a single IN clause carries,
// keeping queries under backend parameter limits.
const DefaultChunkSize = 500

// Loader resolves annotation bundles for whole working sets of images. Cached
// bundles are served directly; the rest are fetched with two queries per
// chunk of ids, so a load issues O(chunks) queries no matter how many images
// are in flight.
type Loader struct {
	repo      AnnotationRepository
	cache     *BundleCache
	chunkSize int
}

// NewLoader creates a Loader. A nil cache disables caching; a non-positive
// chunkSize falls back to DefaultChunkSize.
func NewLoader(repo AnnotationRepository, cache *BundleCache, chunkSize int) *Loader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Loader{
		repo:      repo,
		cache:     cache,
		chunkSize: chunkSize,
	}
}

// LoadBundles returns one bundle per distinct requested image id. Duplicate
// ids are collapsed; ids with no annotations map to empty bundles. The
// context is checked between chunks, so a cancelled load stops at the next
// chunk boundary and everything already cached stays valid.
func (l *Loader) LoadBundles(ctx context.Context, storyID int64, imageIDs []int64) (map[int64]Bundle, error) {
	result := make(map[int64]Bundle, len(imageIDs))
	if len(imageIDs) == 0 {
		return result, nil
	}

	seen := make(map[int64]bool, len(imageIDs))
	var misses []int64
	for _, id := range imageIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		if l.cache != nil {
			if bundle, ok := l.cache.Get(id); ok {
				result[id] = bundle
				continue
			}
		}
		misses = append(misses, id)
	}

	for start := 0; start < len(misses); start += l.chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + l.chunkSize
		if end > len(misses) {
			end = len(misses)
		}
		chunk := misses[start:end]

		tags, err := l.repo.FindTagsByImages(ctx, storyID, chunk)
		if err != nil {
			return nil, fmt.Errorf("repo.FindTagsByImages() > %w", err)
		}
		events, err := l.repo.FindQuickEventsByImages(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("repo.FindQuickEventsByImages() > %w", err)
		}

		tagsByImage := make(map[int64][]CharacterTag, len(chunk))
		for _, tag := range tags {
			tagsByImage[tag.ImageID] = append(tagsByImage[tag.ImageID], tag)
		}
		eventsByImage := make(map[int64][]QuickEvent, len(chunk))
		for _, event := range events {
			eventsByImage[event.ImageID] = append(eventsByImage[event.ImageID], event)
		}

		for _, id := range chunk {
			bundle := Bundle{
				ImageID:     id,
				Tags:        tagsByImage[id],
				QuickEvents: eventsByImage[id],
			}
			if l.cache != nil {
				l.cache.Put(id, bundle)
			}
			result[id] = bundle
		}
	}

	return result, nil
}
