package planetscale

import (
	"context"

	appDb "github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/model"
	"github.com/upper/db/v4"
)

type UserDB struct {
	sess db.Session
}

func (udb *UserDB) CreateUser(ctx context.Context, user *model.User) error {
	_, err := udb.sess.SQL().
		InsertInto("person").
		Columns("firebase_id", "display_name", "email", "photo_url").
		Values(user.Id, user.Name, user.Email, user.PhotoUrl).
		ExecContext(ctx)
	if err != nil && !appDb.IsDupKeyErr(err) {
		return err
	}
	return nil
}

func (udb *UserDB) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := udb.sess.SQL().
		Select("*").
		From("person").
		Where("firebase_id = ?", id).
		IteratorContext(ctx).
		One(&user); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
