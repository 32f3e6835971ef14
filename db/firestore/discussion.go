package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	appDb "github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/model"
	"google.golang.org/api/iterator"
)

type DiscussionDB struct {
	client *firestore.Client
}

func (ddb *DiscussionDB) CreateDiscussion(ctx context.Context, req *appDb.CreateDiscussion) (string, error) {
	ref, _, err := ddb.client.Collection(discussionsCollection).Add(ctx, map[string]interface{}{
		"postId":    req.PostId,
		"userId":    req.UserId,
		"userName":  req.UserName,
		"content":   req.Content,
		"mediaUrl":  req.MediaUrl,
		"mediaType": req.MediaType,
		"createdAt": firestore.ServerTimestamp,
	})
	if err != nil {
		return "", translateErr(err)
	}
	return ref.ID, nil
}

func (ddb *DiscussionDB) discussionsQuery(postId string) firestore.Query {
	return ddb.client.Collection(discussionsCollection).Where("postId", "==", postId)
}

func (ddb *DiscussionDB) GetDiscussions(ctx context.Context, postId string) ([]*model.Discussion, error) {
	docs, err := ddb.discussionsQuery(postId).Documents(ctx).GetAll()
	if err != nil {
		return nil, translateErr(err)
	}
	return discussionsFromDocs(docs)
}

func (ddb *DiscussionDB) WatchDiscussions(ctx context.Context, postId string) (appDb.DiscussionWatcher, error) {
	ctx, cancel := context.WithCancel(ctx)
	return &discussionWatcher{
		ctx:    ctx,
		cancel: cancel,
		it:     ddb.discussionsQuery(postId).Snapshots(ctx),
	}, nil
}

func discussionsFromDocs(docs []*firestore.DocumentSnapshot) ([]*model.Discussion, error) {
	discussions := make([]*model.Discussion, 0, len(docs))
	for _, doc := range docs {
		var discussion model.Discussion
		if err := doc.DataTo(&discussion); err != nil {
			return nil, fmt.Errorf("decoding discussion %v: %w", doc.Ref.ID, err)
		}
		discussion.Id = doc.Ref.ID
		discussions = append(discussions, &discussion)
	}
	return discussions, nil
}

// discussionWatcher adapts a snapshot iterator. The iterator must not be stopped concurrently
// with Next, so Stop only cancels and Next releases the iterator once it observes the error.
type discussionWatcher struct {
	ctx    context.Context
	cancel context.CancelFunc
	it     *firestore.QuerySnapshotIterator
}

func (w *discussionWatcher) Next() ([]*model.Discussion, error) {
	snap, err := w.it.Next()
	if err != nil {
		w.it.Stop()
		if w.ctx.Err() != nil || errors.Is(err, iterator.Done) {
			return nil, appDb.ErrWatchStopped
		}
		return nil, translateErr(err)
	}
	docs, err := snap.Documents.GetAll()
	if err != nil {
		return nil, translateErr(err)
	}
	return discussionsFromDocs(docs)
}

func (w *discussionWatcher) Stop() {
	w.cancel()
}
