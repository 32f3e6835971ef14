package planetscale

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	appDb "github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/model"
	"github.com/upper/db/v4"
)

type DiscussionDB struct {
	sess db.Session
	hub  *discussionHub
}

func newDiscussionDB(sess db.Session) *DiscussionDB {
	return &DiscussionDB{
		sess: sess,
		hub:  &discussionHub{watchers: make(map[string]map[*discussionWatcher]struct{})},
	}
}

func (ddb *DiscussionDB) CreateDiscussion(ctx context.Context, req *appDb.CreateDiscussion) (string, error) {
	id := uuid.NewString()
	err := ddb.sess.TxContext(ctx, func(sess db.Session) error {
		exists, err := sess.WithContext(ctx).Collection("post").Find("id = ?", req.PostId).Exists()
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("post %v: %w", req.PostId, appDb.ErrNotFound)
		}
		_, err = sess.SQL().
			InsertInto("discussion").
			Columns("id", "post_id", "user_id", "user_name", "content", "media_url", "media_type").
			Values(id, req.PostId, req.UserId, req.UserName, req.Content, req.MediaUrl, req.MediaType).
			ExecContext(ctx)
		return err
	}, nil)
	if err != nil {
		return "", err
	}
	ddb.hub.notify(req.PostId)
	return id, nil
}

func (ddb *DiscussionDB) GetDiscussions(ctx context.Context, postId string) ([]*model.Discussion, error) {
	discussions := []*model.Discussion{}
	err := ddb.sess.WithContext(ctx).
		Collection("discussion").
		Find("post_id = ?", postId).
		All(&discussions)
	return discussions, err
}

// WatchDiscussions only observes discussions written through this process; MySQL has no change
// feed for other writers.
func (ddb *DiscussionDB) WatchDiscussions(ctx context.Context, postId string) (appDb.DiscussionWatcher, error) {
	w := &discussionWatcher{
		ctx:     ctx,
		ddb:     ddb,
		postId:  postId,
		changed: make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	ddb.hub.add(w)
	return w, nil
}

type discussionHub struct {
	mu       sync.Mutex
	watchers map[string]map[*discussionWatcher]struct{}
}

func (h *discussionHub) add(w *discussionWatcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watchers[w.postId] == nil {
		h.watchers[w.postId] = make(map[*discussionWatcher]struct{})
	}
	h.watchers[w.postId][w] = struct{}{}
}

func (h *discussionHub) remove(w *discussionWatcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.watchers[w.postId], w)
}

func (h *discussionHub) notify(postId string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watchers[postId] {
		select {
		case w.changed <- struct{}{}:
		default:
		}
	}
}

func (h *discussionHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, postWatchers := range h.watchers {
		for w := range postWatchers {
			w.stopOnce.Do(func() { close(w.stopped) })
		}
	}
	h.watchers = make(map[string]map[*discussionWatcher]struct{})
}

type discussionWatcher struct {
	ctx      context.Context
	ddb      *DiscussionDB
	postId   string
	changed  chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	started  bool
}

func (w *discussionWatcher) Next() ([]*model.Discussion, error) {
	select {
	case <-w.stopped:
		return nil, appDb.ErrWatchStopped
	default:
	}
	if w.started {
		select {
		case <-w.changed:
		case <-w.stopped:
			return nil, appDb.ErrWatchStopped
		case <-w.ctx.Done():
			return nil, w.ctx.Err()
		}
	}
	w.started = true
	// Changes committed before the read below are part of the snapshot.
	select {
	case <-w.changed:
	default:
	}
	return w.ddb.GetDiscussions(w.ctx, w.postId)
}

func (w *discussionWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopped) })
	w.ddb.hub.remove(w)
}
