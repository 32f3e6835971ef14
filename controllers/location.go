package controllers

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/groundsync/groundsync-be/app"
	"github.com/groundsync/groundsync-be/logging"
	"github.com/groundsync/groundsync-be/model"
	"github.com/groundsync/groundsync-be/util"
)

const DefaultLocationCacheInterval = time.Minute * 20

type locationCache struct {
	locations []*model.Location
	byName    map[string]*model.Location // lower-cased name
	builtAt   time.Time
}

func buildLocationCache(locations []*model.Location) *locationCache {
	byName := make(map[string]*model.Location, len(locations))
	for _, location := range locations {
		key := strings.ToLower(location.Name)
		// first in name order wins when names differ only in case
		if _, ok := byName[key]; !ok {
			byName[key] = location
		}
	}
	return &locationCache{
		locations: locations,
		byName:    byName,
		builtAt:   time.Now(),
	}
}

// LocationController serves the location list from memory. The list is rebuilt on a ticker and
// after every location the server creates.
type LocationController struct {
	registry   *app.LocationRegistry
	validator  *app.LocationValidator
	cached     *locationCache
	cachedLock sync.RWMutex
	ticker     *time.Ticker
	done       chan struct{}
	closeOnce  sync.Once
}

func NewLocationController(c context.Context, registry *app.LocationRegistry, validator *app.LocationValidator, interval time.Duration) (*LocationController, error) {
	if interval <= 0 {
		interval = DefaultLocationCacheInterval
	}
	controller := &LocationController{
		registry:  registry,
		validator: validator,
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
	}
	if err := controller.updateCache(c); err != nil {
		controller.ticker.Stop()
		return nil, err
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.Error().Interface("panic", r).Msg("recovered while attempting to update cached locations")
			}
		}()
		for {
			select {
			case <-controller.ticker.C:
				controller.attemptToUpdateCache(context.Background())
			case <-controller.done:
				return
			}
		}
	}()

	return controller, nil
}

func (lc *LocationController) Close() {
	lc.closeOnce.Do(func() {
		lc.ticker.Stop()
		close(lc.done)
	})
}

func (lc *LocationController) GetLocations() []*model.Location {
	lc.cachedLock.RLock()
	defer lc.cachedLock.RUnlock()
	locations := make([]*model.Location, len(lc.cached.locations))
	copy(locations, lc.cached.locations)
	return locations
}

// FindKnown returns the cached location whose name matches ignoring case.
func (lc *LocationController) FindKnown(name string) *model.Location {
	lc.cachedLock.RLock()
	defer lc.cachedLock.RUnlock()
	return lc.cached.byName[strings.ToLower(strings.TrimSpace(name))]
}

// Validate reports a known name as valid without asking the geocoder.
func (lc *LocationController) Validate(c context.Context, name string) *app.ValidationResult {
	if known := lc.FindKnown(name); known != nil {
		return &app.ValidationResult{Name: known.Name, Status: app.ValidationValid}
	}
	return lc.validator.Validate(c, name)
}

func (lc *LocationController) Ensure(c context.Context, name string, category string) (string, *util.HTTPError) {
	id, err := lc.registry.Ensure(c, name, category)
	if err != nil {
		return "", util.BuildDbHTTPErr(err)
	}
	lc.attemptToUpdateCache(c)
	return id, nil
}

func (lc *LocationController) attemptToUpdateCache(c context.Context) {
	if err := lc.updateCache(c); err != nil {
		logging.Error().Err(err).Msg("an error occurred while updating the cached locations")
	}
}

func (lc *LocationController) updateCache(c context.Context) error {
	locations, err := lc.registry.List(c)
	if err != nil {
		return err
	}
	newCache := buildLocationCache(locations)

	lc.cachedLock.Lock()
	defer lc.cachedLock.Unlock()
	lc.cached = newCache
	return nil
}
