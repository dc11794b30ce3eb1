package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ViewTracker decides whether a read of an issue counts as a new view.
// Each viewer counts once per window. Without Redis every read counts.
type ViewTracker struct {
	client *redis.Client
	window time.Duration
	logger *zap.Logger
}

func NewViewTracker(client *redis.Client, window time.Duration, logger *zap.Logger) *ViewTracker {
	if window <= 0 {
		window = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewTracker{client: client, window: window, logger: logger}
}

func (v *ViewTracker) ShouldCount(ctx context.Context, issueID, viewer string) bool {
	if v == nil || v.client == nil || viewer == "" {
		return true
	}
	key := "issue-view:" + issueID + ":" + viewer
	first, err := v.client.SetNX(ctx, key, 1, v.window).Result()
	if err != nil {
		v.logger.Warn("view dedupe unavailable", zap.String("issue_id", issueID), zap.Error(err))
		return true
	}
	return first
}
