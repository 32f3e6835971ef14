package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/groundsync/groundsync-be/app"
	"github.com/groundsync/groundsync-be/controllers"
	"github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/middleware"
	"github.com/groundsync/groundsync-be/util"
)

type postRoutes struct {
	core       *app.Core
	controller *controllers.PostController
}

func AddPostRoutes(group *gin.RouterGroup, core *app.Core, controller *controllers.PostController, userDB db.UserDatabase, verifier middleware.TokenVerifier) {
	routes := postRoutes{core: core, controller: controller}
	public := group.Group("/posts", middleware.Auth(userDB, verifier, &middleware.AuthConfig{SessionNotRequired: true}))
	public.GET("", util.HandlerWrapper(routes.getPosts, &util.HandlerOpts{}))
	public.GET("/:id", util.HandlerWrapper(routes.getPostById, &util.HandlerOpts{}))

	posts := group.Group("/posts", middleware.Auth(userDB, verifier, &middleware.AuthConfig{}))
	posts.POST("", util.HandlerWrapper(routes.createPost, &util.HandlerOpts{SuccessStatus: http.StatusCreated}))
	posts.GET("/:id/hype", util.HandlerWrapper(routes.getHype, &util.HandlerOpts{}))
	posts.POST("/:id/hype", util.HandlerWrapper(routes.toggleHype, &util.HandlerOpts{}))
}

type createPostReq struct {
	LocationName string `json:"locationName" binding:"required,max=200"`
	Category     string `json:"category" binding:"max=50"`
	Title        string `json:"title" binding:"max=200"`
	Content      string `json:"content" binding:"required,max=5000"`
}

func (pr *postRoutes) createPost(c *gin.Context) (interface{}, *util.HTTPError) {
	var req createPostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	locationName := util.SanitizeText(req.LocationName)
	content := util.SanitizeText(req.Content)
	if locationName == "" || content == "" {
		return nil, &util.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "location name and content are required",
		}
	}

	user := middleware.MustGetUser(c)
	id, httpErr := pr.controller.CreatePost(c, &controllers.CreatePostReq{
		UserId:       user.Id,
		AuthorName:   user.Name,
		LocationName: locationName,
		Category:     util.SanitizeText(req.Category),
		Title:        util.SanitizeText(req.Title),
		Content:      content,
	})
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{
		"id": id,
	}, nil
}

func (pr *postRoutes) getPostById(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	post, err := pr.core.Posts.Get(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return post, nil
}

// getPosts serves the caller's feed for ?following=true, the posts of ?locations=a,b, or every post.
func (pr *postRoutes) getPosts(c *gin.Context) (interface{}, *util.HTTPError) {
	following, httpErr := util.ParseBoolQuery(c.Query("following"))
	if httpErr != nil {
		return nil, httpErr
	}
	if following {
		userId := middleware.GetUserIdMaybe(c)
		if userId == "" {
			return nil, &util.HTTPError{
				Status:  http.StatusUnauthorized,
				Message: "sign in to see the locations you follow",
			}
		}
		posts, err := pr.core.Follows.Feed(c, userId)
		if err != nil {
			return nil, util.BuildDbHTTPErr(err)
		}
		return posts, nil
	}

	var query *db.PostsListQuery
	if rawIds, ok := c.GetQuery("locations"); ok {
		query = &db.PostsListQuery{LocationIds: util.ParseLocationIds(rawIds)}
	}
	posts, err := pr.core.Posts.GetPosts(c, query)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return posts, nil
}

func (pr *postRoutes) toggleHype(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	hyped, count, err := pr.core.Hypes.Toggle(c, id, middleware.MustGetUser(c).Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{
		"hyped":     hyped,
		"hypeCount": count,
	}, nil
}

func (pr *postRoutes) getHype(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	hyped, err := pr.core.Hypes.Status(c, id, middleware.MustGetUser(c).Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{
		"hyped": hyped,
	}, nil
}
