package memdb

import (
	"context"
	"fmt"
	"sync"

	appDb "github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/model"
)

func (mdb *MemDB) CreateDiscussion(ctx context.Context, req *appDb.CreateDiscussion) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	if _, ok := mdb.postIndex[req.PostId]; !ok {
		return "", fmt.Errorf("post %v: %w", req.PostId, appDb.ErrNotFound)
	}
	discussion := &model.Discussion{
		Id:        mdb.newId(),
		PostId:    req.PostId,
		UserId:    req.UserId,
		UserName:  req.UserName,
		Content:   req.Content,
		MediaUrl:  req.MediaUrl,
		MediaType: req.MediaType,
		CreatedAt: mdb.clock(),
	}
	mdb.discussions[req.PostId] = append(mdb.discussions[req.PostId], discussion)
	for w := range mdb.watchers[req.PostId] {
		w.notifyLocked()
	}
	return discussion.Id, nil
}

func (mdb *MemDB) GetDiscussions(ctx context.Context, postId string) ([]*model.Discussion, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	return mdb.discussionsLocked(postId), nil
}

func (mdb *MemDB) discussionsLocked(postId string) []*model.Discussion {
	discussions := make([]*model.Discussion, len(mdb.discussions[postId]))
	for i, discussion := range mdb.discussions[postId] {
		copied := *discussion
		discussions[i] = &copied
	}
	return discussions
}

func (mdb *MemDB) WatchDiscussions(ctx context.Context, postId string) (appDb.DiscussionWatcher, error) {
	w := &watcher{
		ctx:     ctx,
		mdb:     mdb,
		postId:  postId,
		changed: make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	if mdb.watchers[postId] == nil {
		mdb.watchers[postId] = make(map[*watcher]struct{})
	}
	mdb.watchers[postId][w] = struct{}{}
	return w, nil
}

// watcher coalesces changes that happen between two calls to Next into one snapshot.
type watcher struct {
	ctx      context.Context
	mdb      *MemDB
	postId   string
	changed  chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	started  bool
}

func (w *watcher) Next() ([]*model.Discussion, error) {
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

	w.mdb.mu.Lock()
	defer w.mdb.mu.Unlock()
	// The snapshot covers every change notified so far.
	w.drainLocked()
	return w.mdb.discussionsLocked(w.postId), nil
}

func (w *watcher) drainLocked() {
	select {
	case <-w.changed:
	default:
	}
}

func (w *watcher) Stop() {
	w.mdb.mu.Lock()
	defer w.mdb.mu.Unlock()
	w.stopLocked()
	delete(w.mdb.watchers[w.postId], w)
}

func (w *watcher) stopLocked() {
	w.stopOnce.Do(func() {
		close(w.stopped)
	})
}

func (w *watcher) notifyLocked() {
	select {
	case w.changed <- struct{}{}:
	default:
	}
}
