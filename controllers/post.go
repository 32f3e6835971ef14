package controllers

import (
	"context"
	"strings"

	"github.com/groundsync/groundsync-be/app"
	"github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/logging"
	"github.com/groundsync/groundsync-be/util"
)

type CreatePostReq struct {
	UserId       string
	AuthorName   string
	LocationName string
	Category     string
	Title        string
	Content      string
}

type PostController struct {
	locations *LocationController
	posts     *app.PostStore
}

func NewPostController(locations *LocationController, posts *app.PostStore) *PostController {
	return &PostController{locations: locations, posts: posts}
}

// CreatePost resolves the location, creating it when the name is new and passes validation, and
// then stores the post. A name matching a known location ignoring case reuses that location.
func (pc *PostController) CreatePost(c context.Context, req *CreatePostReq) (string, *util.HTTPError) {
	name := strings.TrimSpace(req.LocationName)
	if known := pc.locations.FindKnown(name); known != nil {
		name = known.Name
	} else {
		result := pc.locations.validator.Validate(c, name)
		if err := result.Err(); err != nil {
			logging.Info().Str("name", name).Str("status", string(result.Status)).Msg("rejected new location")
			return "", util.BuildDbHTTPErr(err)
		}
	}

	locationId, httpErr := pc.locations.Ensure(c, name, req.Category)
	if httpErr != nil {
		return "", httpErr
	}

	id, err := pc.posts.Create(c, &db.CreatePost{
		UserId:       req.UserId,
		LocationId:   locationId,
		LocationName: name,
		Category:     req.Category,
		Title:        req.Title,
		Content:      req.Content,
		AuthorName:   req.AuthorName,
	})
	if err != nil {
		return "", util.BuildDbHTTPErr(err)
	}
	// refresh post counts shown in the location list
	go pc.locations.attemptToUpdateCache(context.Background())
	return id, nil
}
