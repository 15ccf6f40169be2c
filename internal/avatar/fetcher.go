// Package avatar downloads character portraits into a story's avatar folder.
package avatar

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/at-ishikawa/dramatis/internal/character"
	"github.com/at-ishikawa/dramatis/internal/story"
)

type Fetcher struct {
	httpClient       *resty.Client
	maxRetryAttempts uint
}

func NewFetcher(retryAttempts uint) *Fetcher {
	client := resty.New()
	client.SetHeader("Accept", "image/*")

	return &Fetcher{
		httpClient:       client,
		maxRetryAttempts: retryAttempts,
	}
}

func (f *Fetcher) Close() error {
	return f.httpClient.Close()
}

// isRetryableStatus reports whether a fetch should be retried. Server errors
// and rate limits are transient; anything else is a bad URL.
func isRetryableStatus(statusCode int) bool {
	return statusCode >= 500 || statusCode == 429
}

// Fetch downloads rawURL into the story's avatars directory and returns the
// saved path. The file is named after the character id so fetching again
// replaces the previous portrait.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, s *story.Story, c *character.Character) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("url.Parse(%s) > %w", rawURL, err)
	}

	var data []byte
	if err := retry.Do(
		func() error {
			response, err := f.httpClient.R().
				SetContext(ctx).
				Get(rawURL)
			if err != nil {
				return err
			}
			if response.IsError() {
				if !isRetryableStatus(response.StatusCode()) {
					return retry.Unrecoverable(fmt.Errorf("response error %d", response.StatusCode()))
				}
				return fmt.Errorf("response error %d", response.StatusCode())
			}
			body := response.String()
			if body == "" {
				return fmt.Errorf("empty response body")
			}
			data = []byte(body)
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return "", fmt.Errorf("httpClient.Get(%s) > %w", rawURL, err)
	}

	directory := s.AvatarsDirectory()
	if err := os.MkdirAll(directory, 0755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", directory, err)
	}

	ext := path.Ext(parsed.Path)
	if ext == "" {
		ext = ".png"
	}
	avatarPath := filepath.Join(directory, fmt.Sprintf("%d%s", c.ID, ext))
	if err := os.WriteFile(avatarPath, data, 0644); err != nil {
		return "", fmt.Errorf("os.WriteFile(%s) > %w", avatarPath, err)
	}

	return avatarPath, nil
}
