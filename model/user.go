package model

import "time"

// User holds the local user data relevant to the application (outside of firebase auth)
type User struct {
	Id        string    `db:"firebase_id" firestore:"uid" json:"id"`
	Name      string    `db:"display_name" firestore:"name" json:"name"`
	Email     string    `db:"email" firestore:"email" json:"email"`
	PhotoUrl  string    `db:"photo_url" firestore:"photoURL" json:"photoUrl"`
	CreatedAt time.Time `db:"created_at" firestore:"createdAt" json:"createdAt"`
}
