package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// BoundaryRefreshInput is the input for the boundary refresh workflow.
type BoundaryRefreshInput struct {
	CacheKey string
}

// BoundaryRefreshResult reports what was promoted.
type BoundaryRefreshResult struct {
	Lines int
}

// BoundaryRefreshWorkflow downloads the country-border dataset, validates
// it and promotes it to the live cache key. A dataset that fails validation
// is discarded and the live key is left untouched.
func BoundaryRefreshWorkflow(ctx workflow.Context, input BoundaryRefreshInput) (BoundaryRefreshResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting boundary refresh", "key", input.CacheKey)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 5 * time.Second,
			MaximumAttempts: 3,
		},
	})

	var staging string
	if err := workflow.ExecuteActivity(ctx, "FetchBoundaries", input.CacheKey).Get(ctx, &staging); err != nil {
		return BoundaryRefreshResult{}, err
	}

	var lines int
	if err := workflow.ExecuteActivity(ctx, "ValidateBoundaries", staging).Get(ctx, &lines); err != nil {
		logger.Warn("dataset rejected, discarding", "error", err)
		_ = workflow.ExecuteActivity(ctx, "DiscardBoundaries", staging).Get(ctx, nil)
		return BoundaryRefreshResult{}, err
	}

	if err := workflow.ExecuteActivity(ctx, "PromoteBoundaries", staging, input.CacheKey).Get(ctx, nil); err != nil {
		_ = workflow.ExecuteActivity(ctx, "DiscardBoundaries", staging).Get(ctx, nil)
		return BoundaryRefreshResult{}, err
	}

	// Replicas still reload on restart if the announcement is lost.
	if err := workflow.ExecuteActivity(ctx, "AnnounceBoundaries", lines).Get(ctx, nil); err != nil {
		logger.Warn("announce failed", "error", err)
	}

	logger.Info("Boundary refresh complete", "lines", lines)
	return BoundaryRefreshResult{Lines: lines}, nil
}
