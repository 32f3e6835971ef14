package planetscale

import (
	"context"

	appDb "github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/model"
	"github.com/upper/db/v4"
)

type FollowDB struct {
	sess db.Session
}

// CreateFollow swallows the duplicate key error of an existing follow.
func (fdb *FollowDB) CreateFollow(ctx context.Context, follow *model.Follow) error {
	_, err := fdb.sess.SQL().
		InsertInto("follow").
		Columns("user_id", "location_id").
		Values(follow.UserId, follow.LocationId).
		ExecContext(ctx)
	if err != nil && !appDb.IsDupKeyErr(err) {
		return err
	}
	return nil
}

func (fdb *FollowDB) DeleteFollow(ctx context.Context, userId, locationId string) error {
	return fdb.sess.WithContext(ctx).
		Collection("follow").
		Find("user_id = ? AND location_id = ?", userId, locationId).
		Delete()
}

func (fdb *FollowDB) GetFollowsForUser(ctx context.Context, userId string) ([]*model.Follow, error) {
	follows := []*model.Follow{}
	err := fdb.sess.WithContext(ctx).
		Collection("follow").
		Find("user_id = ?", userId).
		All(&follows)
	return follows, err
}
