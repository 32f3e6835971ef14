package app

import (
	"context"
	"sort"

	"github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/logging"
	"github.com/groundsync/groundsync-be/metrics"
	"github.com/groundsync/groundsync-be/model"
)

type LocationRegistry struct {
	db db.LocationDatabase
}

func NewLocationRegistry(database db.LocationDatabase) *LocationRegistry {
	return &LocationRegistry{db: database}
}

// List returns every location ordered by name.
func (lr *LocationRegistry) List(ctx context.Context) ([]*model.Location, error) {
	locations, err := lr.db.GetLocations(ctx)
	if err != nil {
		return nil, err
	}
	if locations == nil {
		locations = []*model.Location{}
	}
	sort.SliceStable(locations, func(i, j int) bool {
		return locations[i].Name < locations[j].Name
	})
	return locations, nil
}

// Ensure returns the id of the location with exactly this name, creating it when absent. The type
// of an existing location is left as it was first written.
func (lr *LocationRegistry) Ensure(ctx context.Context, name string, category string) (string, error) {
	if category == "" {
		category = model.DefaultLocationType
	}
	id, created, err := lr.db.EnsureLocation(ctx, name, category)
	if err != nil {
		return "", err
	}
	if created {
		metrics.LocationsCreated.Inc()
		logging.Info().Str("location", id).Str("name", name).Str("type", category).Msg("location created")
	}
	return id, nil
}
