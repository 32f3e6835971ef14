package memdb

import (
	"context"
	"fmt"

	appDb "github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/model"
)

func (mdb *MemDB) CreatePost(ctx context.Context, req *appDb.CreatePost) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	location, ok := mdb.locationIndex[req.LocationId]
	if !ok {
		return "", fmt.Errorf("location %v: %w", req.LocationId, appDb.ErrNotFound)
	}
	post := &model.Post{
		Id:           mdb.newId(),
		UserId:       req.UserId,
		LocationId:   req.LocationId,
		LocationName: req.LocationName,
		Category:     req.Category,
		Title:        req.Title,
		Content:      req.Content,
		AuthorName:   req.AuthorName,
		CreatedAt:    mdb.clock(),
	}
	mdb.posts = append(mdb.posts, post)
	mdb.postIndex[post.Id] = post
	location.PostCount++
	return post.Id, nil
}

func (mdb *MemDB) GetPostById(ctx context.Context, id string) (*model.Post, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	post, ok := mdb.postIndex[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (mdb *MemDB) GetPosts(ctx context.Context, query *appDb.PostsListQuery) ([]*model.Post, error) {
	var wanted map[string]bool
	if query != nil {
		wanted = make(map[string]bool, len(query.LocationIds))
		for _, id := range query.LocationIds {
			wanted[id] = true
		}
	}

	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	posts := []*model.Post{}
	for _, post := range mdb.posts {
		if wanted != nil && !wanted[post.LocationId] {
			continue
		}
		copied := *post
		posts = append(posts, &copied)
	}
	return posts, nil
}

func (mdb *MemDB) CountPosts(ctx context.Context) (int64, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	return int64(len(mdb.posts)), nil
}

func (mdb *MemDB) ToggleHype(ctx context.Context, postId, userId string) (bool, int64, error) {
	if err := ctx.Err(); err != nil {
		return false, 0, err
	}
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	post, ok := mdb.postIndex[postId]
	if !ok {
		return false, 0, fmt.Errorf("post %v: %w", postId, appDb.ErrNotFound)
	}
	postHypes := mdb.hypes[postId]
	if _, hyped := postHypes[userId]; hyped {
		delete(postHypes, userId)
		post.HypeCount--
		return false, post.HypeCount, nil
	}
	if postHypes == nil {
		postHypes = make(map[string]*model.Hype)
		mdb.hypes[postId] = postHypes
	}
	postHypes[userId] = &model.Hype{PostId: postId, UserId: userId, CreatedAt: mdb.clock()}
	post.HypeCount++
	return true, post.HypeCount, nil
}

func (mdb *MemDB) GetHype(ctx context.Context, postId, userId string) (*model.Hype, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	hype, ok := mdb.hypes[postId][userId]
	if !ok {
		return nil, nil
	}
	copied := *hype
	return &copied, nil
}

func (mdb *MemDB) CreateFollow(ctx context.Context, follow *model.Follow) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	copied := *follow
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = mdb.clock()
	}
	mdb.follows[follow.Key()] = &copied
	return nil
}

func (mdb *MemDB) DeleteFollow(ctx context.Context, userId, locationId string) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	delete(mdb.follows, model.FollowKey(userId, locationId))
	return nil
}

func (mdb *MemDB) GetFollowsForUser(ctx context.Context, userId string) ([]*model.Follow, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	follows := []*model.Follow{}
	for _, follow := range mdb.follows {
		if follow.UserId == userId {
			copied := *follow
			follows = append(follows, &copied)
		}
	}
	return follows, nil
}
