package model

import (
	"strings"
	"time"
)

type Follow struct {
	UserId     string    `db:"user_id" firestore:"userId" json:"userId"`
	LocationId string    `db:"location_id" firestore:"locationId" json:"locationId"`
	CreatedAt  time.Time `db:"created_at" firestore:"createdAt" json:"createdAt"`
}

// Key is the composite identity of a follow. At most one follow exists per key.
func (f *Follow) Key() string {
	return FollowKey(f.UserId, f.LocationId)
}

var followKeyEscaper = strings.NewReplacer("%", "%25", "_", "%5F")

// FollowKey joins the ids with "_" after escaping it inside them, so distinct pairs never share a key.
func FollowKey(userId, locationId string) string {
	return followKeyEscaper.Replace(userId) + "_" + followKeyEscaper.Replace(locationId)
}
