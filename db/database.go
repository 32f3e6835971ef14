package db

import (
	"context"
	"time"

	"github.com/groundsync/groundsync-be/model"
)

// MaxLocationsPerQuery bounds the location ids accepted by a single "in" query.
const MaxLocationsPerQuery = 10

type Database interface {
	LocationDatabase
	PostDatabase
	FollowDatabase
	DiscussionDatabase
	HypeDatabase
	UserDatabase
	Close() error
}

type LocationDatabase interface {
	GetLocations(ctx context.Context) ([]*model.Location, error)
	// EnsureLocation returns the id of the location named name, creating it if absent.
	// An existing location is returned unchanged.
	EnsureLocation(ctx context.Context, name string, locationType string) (id string, created bool, err error)
	CountLocations(ctx context.Context) (int64, error)
}

type CreatePost struct {
	UserId       string
	LocationId   string
	LocationName string
	Category     string
	Title        string
	Content      string
	AuthorName   string
}

// PostsListQuery filters posts by location. Results are not ordered.
type PostsListQuery struct {
	LocationIds []string
}

type PostDatabase interface {
	// CreatePost inserts the post and increments the location's post count in one transaction.
	CreatePost(ctx context.Context, req *CreatePost) (postId string, err error)
	GetPostById(ctx context.Context, id string) (*model.Post, error)
	// GetPosts returns every post when query is nil.
	GetPosts(ctx context.Context, query *PostsListQuery) ([]*model.Post, error)
	CountPosts(ctx context.Context) (int64, error)
}

type FollowDatabase interface {
	CreateFollow(ctx context.Context, follow *model.Follow) error
	DeleteFollow(ctx context.Context, userId, locationId string) error
	GetFollowsForUser(ctx context.Context, userId string) ([]*model.Follow, error)
}

type CreateDiscussion struct {
	PostId    string
	UserId    string
	UserName  string
	Content   string
	MediaUrl  *string
	MediaType *string
}

// DiscussionWatcher yields the full, unordered set of discussions of a post. The first call
// to Next returns the current set, later calls block until the set changes.
type DiscussionWatcher interface {
	Next() ([]*model.Discussion, error)
	Stop()
}

type DiscussionDatabase interface {
	CreateDiscussion(ctx context.Context, req *CreateDiscussion) (discussionId string, err error)
	GetDiscussions(ctx context.Context, postId string) ([]*model.Discussion, error)
	WatchDiscussions(ctx context.Context, postId string) (DiscussionWatcher, error)
}

type HypeDatabase interface {
	// ToggleHype flips the user's hype on the post and adjusts the post's hype count in one
	// transaction. It returns the state after the toggle.
	ToggleHype(ctx context.Context, postId, userId string) (hyped bool, hypeCount int64, err error)
	GetHype(ctx context.Context, postId, userId string) (*model.Hype, error)
}

type UserDatabase interface {
	// CreateUser is a no-op when the user already exists.
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// Clock returns the time assigned to new records by backends that stamp on the client.
type Clock func() time.Time
