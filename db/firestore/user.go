package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/groundsync/groundsync-be/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type UserDB struct {
	client *firestore.Client
}

func (udb *UserDB) CreateUser(ctx context.Context, user *model.User) error {
	_, err := udb.client.Collection(usersCollection).Doc(user.Id).Create(ctx, map[string]interface{}{
		"uid":       user.Id,
		"name":      user.Name,
		"email":     user.Email,
		"photoURL":  user.PhotoUrl,
		"createdAt": firestore.ServerTimestamp,
	})
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	return translateErr(err)
}

func (udb *UserDB) GetUser(ctx context.Context, id string) (*model.User, error) {
	doc, err := udb.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, translateErr(err)
	}
	var user model.User
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}
	return &user, nil
}
