package model

import "time"

type Location struct {
	Id        string    `db:"id" firestore:"-" json:"id"`
	Name      string    `db:"name" firestore:"name" json:"name"`
	Type      string    `db:"type" firestore:"type" json:"type"`
	PostCount int64     `db:"post_count" firestore:"postCount" json:"postCount"`
	CreatedAt time.Time `db:"created_at" firestore:"createdAt" json:"createdAt"`
}

// DefaultLocationType is used when a location is created without a category.
const DefaultLocationType = "Other"
