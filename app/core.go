// Package app holds the domain operations of the feed: locations, posts, follows, discussions,
// hypes and location validation. Everything here works against the db.Database interfaces, so the
// same code runs on Firestore, MySQL and the in-memory store.
package app

import (
	"time"

	"github.com/groundsync/groundsync-be/db"
)

type Opts struct {
	Geocoder      Geocoder
	Blobs         BlobStore
	UploadTimeout time.Duration
}

type Core struct {
	Locations   *LocationRegistry
	Posts       *PostStore
	Follows     *FollowGraph
	Discussions *DiscussionThread
	Hypes       *HypeCounter
	Validator   *LocationValidator
	Seeder      *Seeder
}

func New(database db.Database, opts *Opts) *Core {
	if opts == nil {
		opts = &Opts{}
	}
	locations := NewLocationRegistry(database)
	posts := NewPostStore(database)
	return &Core{
		Locations:   locations,
		Posts:       posts,
		Follows:     NewFollowGraph(database, posts),
		Discussions: NewDiscussionThread(database, opts.Blobs, opts.UploadTimeout),
		Hypes:       NewHypeCounter(database),
		Validator:   NewLocationValidator(opts.Geocoder),
		Seeder:      NewSeeder(database, locations, posts),
	}
}
