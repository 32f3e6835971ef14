package planetscale

import (
	"context"

	"github.com/google/uuid"
	appDb "github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/logging"
	"github.com/groundsync/groundsync-be/model"
	"github.com/upper/db/v4"
)

type LocationDB struct {
	sess db.Session
}

func (ldb *LocationDB) GetLocations(ctx context.Context) ([]*model.Location, error) {
	var locations []*model.Location
	if err := ldb.sess.SQL().
		Select("id", "name", "type", "post_count", "created_at").
		From("location").
		OrderBy("name").
		IteratorContext(ctx).
		All(&locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (ldb *LocationDB) getLocationIdByName(ctx context.Context, name string) (string, error) {
	var location model.Location
	if err := ldb.sess.SQL().
		Select("id").
		From("location").
		Where("name = ?", name).
		IteratorContext(ctx).
		One(&location); err != nil {
		if err == db.ErrNoMoreRows {
			return "", nil
		}
		return "", err
	}
	return location.Id, nil
}

// EnsureLocation relies on the UNIQUE(name) index: a concurrent creator loses the insert with a
// duplicate key error and reads back the winner's id.
func (ldb *LocationDB) EnsureLocation(ctx context.Context, name string, locationType string) (string, bool, error) {
	id, err := ldb.getLocationIdByName(ctx, name)
	if err != nil || id != "" {
		return id, false, err
	}

	id = uuid.NewString()
	_, err = ldb.sess.SQL().
		InsertInto("location").
		Columns("id", "name", "type", "post_count").
		Values(id, name, locationType, 0).
		ExecContext(ctx)
	if err != nil {
		if !appDb.IsDupKeyErr(err) {
			return "", false, err
		}
		logging.Debug().Str("location", name).Msg("lost location create race, reading existing")
		id, err = ldb.getLocationIdByName(ctx, name)
		if err == nil && id == "" {
			err = appDb.ErrNotFound
		}
		return id, false, err
	}
	return id, true, nil
}

func (ldb *LocationDB) CountLocations(ctx context.Context) (int64, error) {
	count, err := ldb.sess.WithContext(ctx).Collection("location").Find().Count()
	return int64(count), err
}
