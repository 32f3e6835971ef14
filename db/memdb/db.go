// Package memdb is an in-process implementation of db.Database. A single mutex stands in for
// the transactions of the hosted backends, so every write that touches two records is atomic.
package memdb

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	appDb "github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/model"
)

var _ appDb.Database = (*MemDB)(nil)

type MemDB struct {
	mu    sync.Mutex
	clock appDb.Clock
	newId func() string

	locations     []*model.Location
	locationIndex map[string]*model.Location
	locationNames map[string]string

	posts     []*model.Post
	postIndex map[string]*model.Post

	follows     map[string]*model.Follow
	discussions map[string][]*model.Discussion
	hypes       map[string]map[string]*model.Hype
	users       map[string]*model.User

	watchers map[string]map[*watcher]struct{}
}

type Option func(*MemDB)

// WithClock replaces the timestamp source used for new records.
func WithClock(clock appDb.Clock) Option {
	return func(mdb *MemDB) {
		mdb.clock = clock
	}
}

// WithIdGenerator replaces the uuid based id generator.
func WithIdGenerator(newId func() string) Option {
	return func(mdb *MemDB) {
		mdb.newId = newId
	}
}

func New(opts ...Option) *MemDB {
	mdb := &MemDB{
		clock:         time.Now,
		newId:         uuid.NewString,
		locationIndex: make(map[string]*model.Location),
		locationNames: make(map[string]string),
		postIndex:     make(map[string]*model.Post),
		follows:       make(map[string]*model.Follow),
		discussions:   make(map[string][]*model.Discussion),
		hypes:         make(map[string]map[string]*model.Hype),
		users:         make(map[string]*model.User),
		watchers:      make(map[string]map[*watcher]struct{}),
	}
	for _, opt := range opts {
		opt(mdb)
	}
	return mdb
}

func (mdb *MemDB) Close() error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	for _, postWatchers := range mdb.watchers {
		for w := range postWatchers {
			w.stopLocked()
		}
	}
	mdb.watchers = make(map[string]map[*watcher]struct{})
	return nil
}

func (mdb *MemDB) GetLocations(ctx context.Context) ([]*model.Location, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	locations := make([]*model.Location, len(mdb.locations))
	for i, location := range mdb.locations {
		copied := *location
		locations[i] = &copied
	}
	return locations, nil
}

func (mdb *MemDB) EnsureLocation(ctx context.Context, name string, locationType string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	if id, ok := mdb.locationNames[name]; ok {
		return id, false, nil
	}
	location := &model.Location{
		Id:        mdb.newId(),
		Name:      name,
		Type:      locationType,
		PostCount: 0,
		CreatedAt: mdb.clock(),
	}
	mdb.locations = append(mdb.locations, location)
	mdb.locationIndex[location.Id] = location
	mdb.locationNames[name] = location.Id
	return location.Id, true, nil
}

func (mdb *MemDB) CountLocations(ctx context.Context) (int64, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	return int64(len(mdb.locations)), nil
}

func (mdb *MemDB) CreateUser(ctx context.Context, user *model.User) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	if _, ok := mdb.users[user.Id]; ok {
		return nil
	}
	copied := *user
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = mdb.clock()
	}
	mdb.users[user.Id] = &copied
	return nil
}

func (mdb *MemDB) GetUser(ctx context.Context, id string) (*model.User, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	user, ok := mdb.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}
