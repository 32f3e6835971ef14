package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/logging"
	"github.com/groundsync/groundsync-be/model"
)

const (
	TOKEN_KEY = "authToken"
	USER_KEY  = "user"

	// tokenQueryParam carries the ID token for websocket upgrades, where browsers cannot set headers.
	tokenQueryParam = "token"
)

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type AuthConfig struct {
	// SessionNotRequired lets anonymous requests through. A present but invalid token is still rejected.
	SessionNotRequired bool
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
	c.Abort()
}

func bearerToken(c *gin.Context) (string, bool) {
	authorizationHeader := c.GetHeader("Authorization")
	if authorizationHeader == "" {
		if token := c.Query(tokenQueryParam); token != "" {
			return token, true
		}
		return "", false
	}
	if !strings.HasPrefix(authorizationHeader, "Bearer ") || len(authorizationHeader) < 8 {
		return "", true
	}
	return authorizationHeader[7:], true
}

// Auth verifies the Firebase ID token and loads the caller's profile, creating it from the token
// claims on first sight.
func Auth(userDB db.UserDatabase, verifier TokenVerifier, config *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, ok := bearerToken(c)
		if !ok {
			if config.SessionNotRequired {
				return
			}
			abortUnauthorized(c, "no authorization header")
			return
		}
		if rawToken == "" {
			abortUnauthorized(c, "incorrectly formatted authorization header")
			return
		}
		token, err := verifier.VerifyIDToken(c, rawToken)
		if err != nil {
			logging.Debug().Err(err).Msg("rejected id token")
			abortUnauthorized(c, "invalid token")
			return
		}
		c.Set(TOKEN_KEY, token)

		user, err := userDB.GetUser(c, token.UID)
		if err != nil {
			logging.Error().Err(err).Str("uid", token.UID).Msg("failed to load user")
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "database error",
			})
			c.Abort()
			return
		}
		if user == nil {
			user = UserFromToken(token)
			if err := userDB.CreateUser(c, user); err != nil {
				logging.Error().Err(err).Str("uid", token.UID).Msg("failed to create user")
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "database error",
				})
				c.Abort()
				return
			}
		}
		c.Set(USER_KEY, user)
	}
}

// UserFromToken builds a profile from the standard Firebase claims.
func UserFromToken(token *auth.Token) *model.User {
	claim := func(key string) string {
		val, _ := token.Claims[key].(string)
		return val
	}
	return &model.User{
		Id:       token.UID,
		Name:     claim("name"),
		Email:    claim("email"),
		PhotoUrl: claim("picture"),
	}
}

func GetToken(c *gin.Context) *auth.Token {
	token, ok := c.Get(TOKEN_KEY)
	if !ok {
		return nil
	}
	return token.(*auth.Token)
}

func MustGetToken(c *gin.Context) *auth.Token {
	token := GetToken(c)
	if token == nil {
		panic("no auth token in context; route is missing the Auth middleware")
	}
	return token
}

func MustGetUser(c *gin.Context) *model.User {
	user, ok := c.Get(USER_KEY)
	if !ok {
		panic("no user in context; route is missing the Auth middleware")
	}
	return user.(*model.User)
}

// GetUserIdMaybe returns "" for anonymous requests.
func GetUserIdMaybe(c *gin.Context) string {
	user, ok := c.Get(USER_KEY)
	if !ok {
		return ""
	}
	return user.(*model.User).Id
}
