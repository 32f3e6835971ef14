package app

import (
	"context"

	"github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/model"
)

type FollowGraph struct {
	db    db.FollowDatabase
	posts *PostStore
}

func NewFollowGraph(database db.FollowDatabase, posts *PostStore) *FollowGraph {
	return &FollowGraph{db: database, posts: posts}
}

// Follow is idempotent.
func (fg *FollowGraph) Follow(ctx context.Context, userId, locationId string) error {
	return fg.db.CreateFollow(ctx, &model.Follow{
		UserId:     userId,
		LocationId: locationId,
	})
}

// Unfollow is idempotent.
func (fg *FollowGraph) Unfollow(ctx context.Context, userId, locationId string) error {
	return fg.db.DeleteFollow(ctx, userId, locationId)
}

func (fg *FollowGraph) ListFollowed(ctx context.Context, userId string) ([]string, error) {
	follows, err := fg.db.GetFollowsForUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(follows))
	for i, follow := range follows {
		ids[i] = follow.LocationId
	}
	return ids, nil
}

// Feed returns the posts of the locations the user follows, newest first.
func (fg *FollowGraph) Feed(ctx context.Context, userId string) ([]*model.Post, error) {
	ids, err := fg.ListFollowed(ctx, userId)
	if err != nil {
		return nil, err
	}
	return fg.posts.GetPosts(ctx, &db.PostsListQuery{LocationIds: ids})
}
