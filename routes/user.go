package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/middleware"
	"github.com/groundsync/groundsync-be/model"
	"github.com/groundsync/groundsync-be/util"
)

type userRoutes struct {
	db db.UserDatabase
}

func AddUserRoutes(group *gin.RouterGroup, userDatabase db.UserDatabase, verifier middleware.TokenVerifier) {
	routes := userRoutes{userDatabase}
	users := group.Group("/users", middleware.Auth(userDatabase, verifier, &middleware.AuthConfig{}))
	users.PUT("", util.HandlerWrapper(routes.createUser, &util.HandlerOpts{}))
	users.GET("/me", util.HandlerWrapper(routes.getMe, &util.HandlerOpts{}))
}

type createUserReq struct {
	Name     string `json:"name" binding:"max=100"`
	PhotoUrl string `json:"photoUrl" binding:"omitempty,url"`
}

// createUser stores a profile for the caller. Existing profiles are never overwritten, so this
// returns whatever is stored.
func (ur userRoutes) createUser(c *gin.Context) (interface{}, *util.HTTPError) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	user := middleware.UserFromToken(middleware.MustGetToken(c))
	if name := util.SanitizeText(req.Name); name != "" {
		user.Name = name
	}
	if req.PhotoUrl != "" {
		user.PhotoUrl = req.PhotoUrl
	}
	if err := ur.db.CreateUser(c, user); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return ur.getStoredUser(c, user.Id)
}

func (ur userRoutes) getMe(c *gin.Context) (interface{}, *util.HTTPError) {
	return ur.getStoredUser(c, middleware.MustGetUser(c).Id)
}

func (ur userRoutes) getStoredUser(c *gin.Context, id string) (*model.User, *util.HTTPError) {
	user, err := ur.db.GetUser(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if user == nil {
		return nil, util.BuildDbHTTPErr(db.ErrNotFound)
	}
	return user, nil
}
