package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/flightglobe/internal/adapters/geojson"
	"github.com/samirrijal/flightglobe/internal/core/ports"
)

// Fetcher downloads the raw border dataset.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Announcer tells API replicas that a new dataset is live.
type Announcer interface {
	PublishBoundariesRefreshed(ctx context.Context, polylines int) error
}

// stagingTTL bounds how long an unpromoted download lingers in the cache.
const stagingTTL = 3600

// BoundaryActivities holds the activity implementations for the boundary
// refresh workflow.
type BoundaryActivities struct {
	Fetcher   Fetcher
	Cache     ports.CacheService
	Announcer Announcer // optional
}

// FetchBoundaries downloads the dataset into a staging key and returns it.
func (a *BoundaryActivities) FetchBoundaries(ctx context.Context, cacheKey string) (string, error) {
	data, err := a.Fetcher.Fetch(ctx)
	if err != nil {
		return "", err
	}
	staging := cacheKey + ":staging"
	if err := a.Cache.Set(ctx, staging, data, stagingTTL); err != nil {
		return "", fmt.Errorf("stage boundaries: %w", err)
	}
	activity.GetLogger(ctx).Info("boundaries staged", "key", staging, "bytes", len(data))
	return staging, nil
}

// ValidateBoundaries parses the staged dataset and returns its line count.
// A dataset that does not parse or has no lines is not retried.
func (a *BoundaryActivities) ValidateBoundaries(ctx context.Context, stagingKey string) (int, error) {
	data, err := a.Cache.Get(ctx, stagingKey)
	if err != nil {
		return 0, fmt.Errorf("read staged boundaries: %w", err)
	}
	lines, err := geojson.Parse(data)
	if err != nil {
		return 0, temporal.NewNonRetryableApplicationError("invalid boundary dataset", "InvalidDataset", err)
	}
	if len(lines) == 0 {
		return 0, temporal.NewNonRetryableApplicationError("boundary dataset has no line features", "InvalidDataset", nil)
	}
	return len(lines), nil
}

// PromoteBoundaries copies the staged dataset to the live key without expiry.
func (a *BoundaryActivities) PromoteBoundaries(ctx context.Context, stagingKey, cacheKey string) error {
	data, err := a.Cache.Get(ctx, stagingKey)
	if err != nil {
		return fmt.Errorf("read staged boundaries: %w", err)
	}
	if err := a.Cache.Set(ctx, cacheKey, data, 0); err != nil {
		return fmt.Errorf("promote boundaries: %w", err)
	}
	return a.Cache.Delete(ctx, stagingKey)
}

// DiscardBoundaries drops a staged dataset (saga compensation).
func (a *BoundaryActivities) DiscardBoundaries(ctx context.Context, stagingKey string) error {
	if err := a.Cache.Delete(ctx, stagingKey); err != nil {
		return fmt.Errorf("discard %s: %w", stagingKey, err)
	}
	activity.GetLogger(ctx).Info("staged boundaries discarded", "key", stagingKey)
	return nil
}

// AnnounceBoundaries notifies API replicas. Without an announcer replicas
// pick the dataset up on their next restart.
func (a *BoundaryActivities) AnnounceBoundaries(ctx context.Context, lines int) error {
	if a.Announcer == nil {
		activity.GetLogger(ctx).Info("no announcer configured", "lines", lines)
		return nil
	}
	return a.Announcer.PublishBoundariesRefreshed(ctx, lines)
}
