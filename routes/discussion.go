package routes

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/groundsync/groundsync-be/app"
	"github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/logging"
	"github.com/groundsync/groundsync-be/middleware"
	"github.com/groundsync/groundsync-be/model"
	"github.com/groundsync/groundsync-be/util"
)

const (
	MaxMediaBytes = 25 << 20

	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = livePongWait * 9 / 10
)

type discussionRoutes struct {
	core     *app.Core
	upgrader websocket.Upgrader
}

func AddDiscussionRoutes(group *gin.RouterGroup, core *app.Core, userDB db.UserDatabase, verifier middleware.TokenVerifier, allowedOrigins []string) {
	routes := discussionRoutes{
		core: core,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
	public := group.Group("/posts/:id/discussions", middleware.Auth(userDB, verifier, &middleware.AuthConfig{SessionNotRequired: true}))
	public.GET("", util.HandlerWrapper(routes.getDiscussions, &util.HandlerOpts{}))
	public.GET("/live", routes.liveDiscussions)

	discussions := group.Group("/posts/:id/discussions", middleware.Auth(userDB, verifier, &middleware.AuthConfig{}))
	discussions.POST("", util.HandlerWrapper(routes.addDiscussion, &util.HandlerOpts{SuccessStatus: http.StatusCreated}))
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || len(allowed) == 0 || allowed[origin]
	}
}

func (dr *discussionRoutes) getDiscussions(c *gin.Context) (interface{}, *util.HTTPError) {
	postId, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	discussions, err := dr.core.Discussions.List(c, postId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return discussions, nil
}

// addDiscussion takes a multipart form with a "content" field and an optional "media" file.
func (dr *discussionRoutes) addDiscussion(c *gin.Context) (interface{}, *util.HTTPError) {
	postId, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxMediaBytes+1<<20)

	user := middleware.MustGetUser(c)
	req := &app.AddDiscussion{
		PostId:   postId,
		UserId:   user.Id,
		UserName: user.Name,
		Content:  util.SanitizeText(c.PostForm("content")),
	}

	fileHeader, err := c.FormFile("media")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: "could not read media: " + err.Error()}
	default:
		if fileHeader.Size > MaxMediaBytes {
			return nil, &util.HTTPError{Status: http.StatusRequestEntityTooLarge, Message: "media is too large"}
		}
		file, err := fileHeader.Open()
		if err != nil {
			return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: "could not read media: " + err.Error()}
		}
		defer file.Close()
		req.Media = &app.MediaUpload{
			FileName:    filepath.Base(fileHeader.Filename),
			ContentType: fileHeader.Header.Get("Content-Type"),
			Data:        file,
		}
	}
	if req.Content == "" && req.Media == nil {
		return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: "a discussion needs content or media"}
	}

	id, err := dr.core.Discussions.Add(c, req)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{
		"id": id,
	}, nil
}

type liveMessage struct {
	Discussions []*model.Discussion `json:"discussions"`
}

// liveDiscussions streams the full ordered discussion list over a websocket whenever it changes.
// Updates the client is too slow to read are replaced by the newest list.
func (dr *discussionRoutes) liveDiscussions(c *gin.Context) {
	postId, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		util.HandleHTTPErrorRes(c, httpErr)
		return
	}
	if _, err := dr.core.Posts.Get(c, postId); err != nil {
		util.HandleHTTPErrorRes(c, util.BuildDbHTTPErr(err))
		return
	}

	conn, err := dr.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	updates := make(chan []*model.Discussion, 1)
	unsubscribe, err := dr.core.Discussions.Subscribe(ctx, postId, func(discussions []*model.Discussion) {
		for {
			select {
			case updates <- discussions:
				return
			default:
				select {
				case <-updates:
				default:
				}
			}
		}
	})
	if err != nil {
		logging.Error().Err(err).Str("post", postId).Msg("failed to subscribe to discussions")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscription failed"),
			time.Now().Add(liveWriteWait))
		return
	}
	defer unsubscribe()

	// the read loop only exists to notice the client going away
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(livePongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(livePingPeriod)
	defer ping.Stop()
	for {
		select {
		case discussions := <-updates:
			payload, err := json.Marshal(&liveMessage{Discussions: discussions})
			if err != nil {
				logging.Error().Err(err).Msg("failed to encode discussions")
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
