package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/groundsync/groundsync-be/db/memdb"
)

var testEpoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// tickingClock advances one second per reading so records get distinct, increasing timestamps.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestCore(t *testing.T, opts *Opts) (*Core, *memdb.MemDB) {
	t.Helper()
	clock := &tickingClock{now: testEpoch}
	database := memdb.New(memdb.WithClock(clock.Now))
	t.Cleanup(func() { _ = database.Close() })
	return New(database, opts), database
}

func mustEnsure(t *testing.T, core *Core, name, category string) string {
	t.Helper()
	id, err := core.Locations.Ensure(context.Background(), name, category)
	if err != nil {
		t.Fatalf("Ensure(%q) error = %v", name, err)
	}
	return id
}
