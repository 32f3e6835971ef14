package model

import (
	"strings"
	"time"
)

type Post struct {
	Id           string    `db:"id" firestore:"-" json:"id"`
	UserId       string    `db:"user_id" firestore:"userId" json:"userId"`
	LocationId   string    `db:"location_id" firestore:"locationId" json:"locationId"`
	LocationName string    `db:"location_name" firestore:"locationName" json:"locationName"` // snapshot at creation
	Category     string    `db:"category" firestore:"category" json:"category"`
	Title        string    `db:"title" firestore:"title" json:"title"`
	Content      string    `db:"content" firestore:"content" json:"content"`
	AuthorName   string    `db:"author_name" firestore:"authorName" json:"authorName"` // snapshot at creation
	CreatedAt    time.Time `db:"created_at" firestore:"createdAt" json:"createdAt"`
	Likes        int64     `db:"likes" firestore:"likes" json:"likes"`
	HypeCount    int64     `db:"hype_count" firestore:"hypeCount" json:"hypeCount"`
}

const DefaultPostTitle = "Untitled"

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// MediaTypeFor classifies an upload by its content type.
func MediaTypeFor(contentType string) MediaType {
	if strings.HasPrefix(contentType, "image") {
		return MediaTypeImage
	}
	return MediaTypeVideo
}

// Discussion is a comment on a post. Discussions are never edited or deleted.
type Discussion struct {
	Id        string    `db:"id" firestore:"-" json:"id"`
	PostId    string    `db:"post_id" firestore:"postId" json:"postId"`
	UserId    string    `db:"user_id" firestore:"userId" json:"userId"`
	UserName  string    `db:"user_name" firestore:"userName" json:"userName"`
	Content   string    `db:"content" firestore:"content" json:"content"`
	MediaUrl  *string   `db:"media_url" firestore:"mediaUrl" json:"mediaUrl"`
	MediaType *string   `db:"media_type" firestore:"mediaType" json:"mediaType"`
	CreatedAt time.Time `db:"created_at" firestore:"createdAt" json:"createdAt"`
}

type Hype struct {
	PostId    string    `db:"post_id" firestore:"-" json:"postId"`
	UserId    string    `db:"user_id" firestore:"-" json:"userId"`
	CreatedAt time.Time `db:"created_at" firestore:"createdAt" json:"createdAt"`
}
