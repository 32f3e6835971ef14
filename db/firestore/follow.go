package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/groundsync/groundsync-be/model"
)

type FollowDB struct {
	client *firestore.Client
}

// CreateFollow overwrites any existing follow for the pair, which makes re-following a no-op.
func (fdb *FollowDB) CreateFollow(ctx context.Context, follow *model.Follow) error {
	_, err := fdb.client.Collection(followsCollection).Doc(follow.Key()).Set(ctx, map[string]interface{}{
		"userId":     follow.UserId,
		"locationId": follow.LocationId,
		"createdAt":  firestore.ServerTimestamp,
	})
	return translateErr(err)
}

func (fdb *FollowDB) DeleteFollow(ctx context.Context, userId, locationId string) error {
	_, err := fdb.client.Collection(followsCollection).Doc(model.FollowKey(userId, locationId)).Delete(ctx)
	return translateErr(err)
}

func (fdb *FollowDB) GetFollowsForUser(ctx context.Context, userId string) ([]*model.Follow, error) {
	docs, err := fdb.client.Collection(followsCollection).
		Where("userId", "==", userId).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, translateErr(err)
	}
	follows := make([]*model.Follow, 0, len(docs))
	for _, doc := range docs {
		var follow model.Follow
		if err := doc.DataTo(&follow); err != nil {
			return nil, err
		}
		follows = append(follows, &follow)
	}
	return follows, nil
}
