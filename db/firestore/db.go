// Package firestore implements db.Database on Cloud Firestore through the Firebase Admin SDK.
//
// Collections:
//
//	locations/{id}                 name, type, postCount, createdAt
//	location_names/{sha256(name)}  locationId (uniqueness guard for ensure)
//	posts/{id}                     see model.Post
//	posts/{id}/hypes/{userId}      createdAt
//	follows/{userId_locationId}    userId, locationId, createdAt
//	discussions/{id}               see model.Discussion
//	users/{uid}                    see model.User
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	firebase "firebase.google.com/go/v4"
	appDb "github.com/groundsync/groundsync-be/db"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	locationsCollection     = "locations"
	locationNamesCollection = "location_names"
	postsCollection         = "posts"
	hypesCollection         = "hypes"
	followsCollection       = "follows"
	discussionsCollection   = "discussions"
	usersCollection         = "users"
)

var _ appDb.Database = (*FirestoreDB)(nil)

type FirestoreDB struct {
	*LocationDB
	*PostDB
	*FollowDB
	*DiscussionDB
	*UserDB
	client *firestore.Client
}

func GetDatabase(ctx context.Context, app *firebase.App) (appDb.Database, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing firestore client: %w", err)
	}
	return NewFromClient(client), nil
}

func NewFromClient(client *firestore.Client) *FirestoreDB {
	return &FirestoreDB{
		LocationDB:   &LocationDB{client},
		PostDB:       &PostDB{client},
		FollowDB:     &FollowDB{client},
		DiscussionDB: &DiscussionDB{client},
		UserDB:       &UserDB{client},
		client:       client,
	}
}

func (fdb *FirestoreDB) Close() error {
	return fdb.client.Close()
}

// translateErr maps firestore status codes onto the db sentinels so callers never see grpc codes.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%v: %w", err, appDb.ErrNotFound)
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%v: %w", err, appDb.ErrPermissionDenied)
	}
	return err
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func count(ctx context.Context, query firestore.Query) (int64, error) {
	res, err := query.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, translateErr(err)
	}
	raw, ok := res["all"]
	if !ok {
		return 0, fmt.Errorf("count aggregation missing from result")
	}
	value, ok := raw.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count aggregation type %T", raw)
	}
	return value.GetIntegerValue(), nil
}
