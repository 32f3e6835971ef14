package app

import (
	"context"

	"github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/metrics"
)

type HypeCounter struct {
	db db.HypeDatabase
}

func NewHypeCounter(database db.HypeDatabase) *HypeCounter {
	return &HypeCounter{db: database}
}

// Toggle flips the user's hype on the post and returns the new state with the post's hype count.
func (hc *HypeCounter) Toggle(ctx context.Context, postId, userId string) (bool, int64, error) {
	hyped, count, err := hc.db.ToggleHype(ctx, postId, userId)
	if err != nil {
		return false, 0, err
	}
	state := "unhyped"
	if hyped {
		state = "hyped"
	}
	metrics.HypeToggles.WithLabelValues(state).Inc()
	return hyped, count, nil
}

func (hc *HypeCounter) Status(ctx context.Context, postId, userId string) (bool, error) {
	hype, err := hc.db.GetHype(ctx, postId, userId)
	if err != nil {
		return false, err
	}
	return hype != nil, nil
}
