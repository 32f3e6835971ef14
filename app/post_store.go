package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/metrics"
	"github.com/groundsync/groundsync-be/model"
)

type PostStore struct {
	db db.PostDatabase
}

func NewPostStore(database db.PostDatabase) *PostStore {
	return &PostStore{db: database}
}

// Create stores the post and bumps the location's post count atomically. It fails with
// db.ErrNotFound when the location does not exist.
func (ps *PostStore) Create(ctx context.Context, req *db.CreatePost) (string, error) {
	if req.Title == "" {
		req.Title = model.DefaultPostTitle
	}
	id, err := ps.db.CreatePost(ctx, req)
	if err != nil {
		return "", err
	}
	metrics.PostsCreated.Inc()
	return id, nil
}

func (ps *PostStore) Get(ctx context.Context, id string) (*model.Post, error) {
	post, err := ps.db.GetPostById(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, fmt.Errorf("post %v: %w", id, db.ErrNotFound)
	}
	return post, nil
}

// GetPosts returns all posts for a nil query and nothing for a query without location ids. Only
// the first db.MaxLocationsPerQuery ids are honoured. Posts come back newest first.
func (ps *PostStore) GetPosts(ctx context.Context, query *db.PostsListQuery) ([]*model.Post, error) {
	if query != nil {
		if len(query.LocationIds) == 0 {
			return []*model.Post{}, nil
		}
		if len(query.LocationIds) > db.MaxLocationsPerQuery {
			query = &db.PostsListQuery{LocationIds: query.LocationIds[:db.MaxLocationsPerQuery]}
		}
	}
	posts, err := ps.db.GetPosts(ctx, query)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		return []*model.Post{}, nil
	}
	SortPostsNewestFirst(posts)
	return posts, nil
}

// SortPostsNewestFirst orders posts by creation time, newest first. Posts without a timestamp sort
// as if created at the epoch and ties keep their input order.
func SortPostsNewestFirst(posts []*model.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return unixMillis(posts[i].CreatedAt) > unixMillis(posts[j].CreatedAt)
	})
}
