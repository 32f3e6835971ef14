package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/groundsync/groundsync-be/app"
	"github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/middleware"
	"github.com/groundsync/groundsync-be/util"
)

type followRoutes struct {
	follows *app.FollowGraph
}

func AddFollowRoutes(group *gin.RouterGroup, follows *app.FollowGraph, userDB db.UserDatabase, verifier middleware.TokenVerifier) {
	routes := followRoutes{follows: follows}
	subs := group.Group("/follows", middleware.Auth(userDB, verifier, &middleware.AuthConfig{}))
	subs.GET("", util.HandlerWrapper(routes.getFollowed, &util.HandlerOpts{}))
	subs.PUT("/:locationId", util.HandlerWrapper(routes.follow, &util.HandlerOpts{}))
	subs.DELETE("/:locationId", util.HandlerWrapper(routes.unfollow, &util.HandlerOpts{}))
}

func (fr *followRoutes) getFollowed(c *gin.Context) (interface{}, *util.HTTPError) {
	ids, err := fr.follows.ListFollowed(c, middleware.MustGetUser(c).Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return ids, nil
}

func (fr *followRoutes) follow(c *gin.Context) (interface{}, *util.HTTPError) {
	locationId, httpErr := util.ParseId(c.Param("locationId"))
	if httpErr != nil {
		return nil, httpErr
	}
	if err := fr.follows.Follow(c, middleware.MustGetUser(c).Id, locationId); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return nil, nil
}

func (fr *followRoutes) unfollow(c *gin.Context) (interface{}, *util.HTTPError) {
	locationId, httpErr := util.ParseId(c.Param("locationId"))
	if httpErr != nil {
		return nil, httpErr
	}
	if err := fr.follows.Unfollow(c, middleware.MustGetUser(c).Id, locationId); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return nil, nil
}
