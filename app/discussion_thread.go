package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/logging"
	"github.com/groundsync/groundsync-be/metrics"
	"github.com/groundsync/groundsync-be/model"
)

const DefaultUploadTimeout = 15 * time.Second

// BlobStore stores uploaded media and returns a public download URL for it.
type BlobStore interface {
	Put(ctx context.Context, path string, contentType string, data io.Reader) (url string, err error)
}

type MediaUpload struct {
	FileName    string
	ContentType string
	Data        io.Reader
}

type AddDiscussion struct {
	PostId   string
	UserId   string
	UserName string
	Content  string
	Media    *MediaUpload
}

type DiscussionThread struct {
	db            db.DiscussionDatabase
	blobs         BlobStore
	uploadTimeout time.Duration
	now           func() time.Time
}

func NewDiscussionThread(database db.DiscussionDatabase, blobs BlobStore, uploadTimeout time.Duration) *DiscussionThread {
	if uploadTimeout <= 0 {
		uploadTimeout = DefaultUploadTimeout
	}
	return &DiscussionThread{
		db:            database,
		blobs:         blobs,
		uploadTimeout: uploadTimeout,
		now:           time.Now,
	}
}

// Add uploads the optional media and then writes the discussion. Nothing is written when the
// upload fails or outlives the upload timeout.
func (dt *DiscussionThread) Add(ctx context.Context, req *AddDiscussion) (string, error) {
	create := &db.CreateDiscussion{
		PostId:   req.PostId,
		UserId:   req.UserId,
		UserName: req.UserName,
		Content:  req.Content,
	}
	if req.Media != nil {
		url, err := dt.upload(ctx, req.PostId, req.Media)
		if err != nil {
			return "", err
		}
		mediaType := string(model.MediaTypeFor(req.Media.ContentType))
		create.MediaUrl = &url
		create.MediaType = &mediaType
	}
	return dt.db.CreateDiscussion(ctx, create)
}

func (dt *DiscussionThread) upload(ctx context.Context, postId string, media *MediaUpload) (string, error) {
	if dt.blobs == nil {
		return "", ErrNoBlobStore
	}
	path := MediaPath(postId, media.FileName, dt.now())

	uploadCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	type result struct {
		url string
		err error
	}
	done := make(chan result, 1)
	go func() {
		url, err := dt.blobs.Put(uploadCtx, path, media.ContentType, media.Data)
		done <- result{url, err}
	}()

	timer := time.NewTimer(dt.uploadTimeout)
	defer timer.Stop()
	select {
	case res := <-done:
		if res.err != nil {
			metrics.MediaUploads.WithLabelValues("failure").Inc()
			return "", fmt.Errorf("uploading %v: %w", path, res.err)
		}
		metrics.MediaUploads.WithLabelValues("success").Inc()
		return res.url, nil
	case <-timer.C:
		metrics.MediaUploads.WithLabelValues("timeout").Inc()
		logging.Warn().Str("path", path).Dur("timeout", dt.uploadTimeout).Msg("abandoning media upload")
		return "", ErrUploadTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// MediaPath is the blob path of a discussion attachment.
func MediaPath(postId, fileName string, at time.Time) string {
	return fmt.Sprintf("discussion_media/%s/%d_%s", postId, at.UnixMilli(), fileName)
}

// List returns the post's discussions, oldest first.
func (dt *DiscussionThread) List(ctx context.Context, postId string) ([]*model.Discussion, error) {
	discussions, err := dt.db.GetDiscussions(ctx, postId)
	if err != nil {
		return nil, err
	}
	if discussions == nil {
		return []*model.Discussion{}, nil
	}
	SortDiscussionsOldestFirst(discussions)
	return discussions, nil
}

// Subscribe calls fn with the full ordered list of the post's discussions, first with the current
// list and then after every change. Deliveries are serialized. Once the returned unsubscribe func
// returns, fn is not called again. unsubscribe must not be called from inside fn.
func (dt *DiscussionThread) Subscribe(ctx context.Context, postId string, fn func([]*model.Discussion)) (unsubscribe func(), err error) {
	watcher, err := dt.db.WatchDiscussions(ctx, postId)
	if err != nil {
		return nil, err
	}
	sub := &subscription{postId: postId, watcher: watcher}
	metrics.DiscussionSubscriptions.Inc()
	go sub.run(fn)
	return sub.unsubscribe, nil
}

type subscription struct {
	postId  string
	watcher db.DiscussionWatcher

	mu       sync.Mutex
	stopped  bool
	stopOnce sync.Once
}

func (s *subscription) run(fn func([]*model.Discussion)) {
	defer metrics.DiscussionSubscriptions.Dec()
	defer s.watcher.Stop()
	for {
		discussions, err := s.watcher.Next()
		if err != nil {
			if !errors.Is(err, db.ErrWatchStopped) && !errors.Is(err, context.Canceled) {
				logging.Error().Err(err).Str("post", s.postId).Msg("discussion subscription ended")
			}
			return
		}
		SortDiscussionsOldestFirst(discussions)

		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		fn(discussions)
		s.mu.Unlock()
	}
}

func (s *subscription) unsubscribe() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		s.watcher.Stop()
	})
}

// SortDiscussionsOldestFirst orders discussions by creation time. Discussions without a timestamp
// come first and ties keep their input order.
func SortDiscussionsOldestFirst(discussions []*model.Discussion) {
	sort.SliceStable(discussions, func(i, j int) bool {
		return unixMillis(discussions[i].CreatedAt) < unixMillis(discussions[j].CreatedAt)
	})
}

func unixMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
