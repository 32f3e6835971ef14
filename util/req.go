package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/groundsync/groundsync-be/app"
	"github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/logging"
)

type HTTPError struct {
	Status  int
	Message string
}

func (he *HTTPError) Error() string {
	return fmt.Sprintf("%v (statusCode=%v)", he.Message, he.Status)
}

var (
	DbHTTPErr = HTTPError{
		Message: "database error",
		Status:  http.StatusInternalServerError,
	}
	MalformedIdHTTPErr = HTTPError{
		Message: "id malformed",
		Status:  http.StatusBadRequest,
	}
)

// BuildDbHTTPErr maps an error returned by the store or the app layer onto a response. Unknown
// errors are logged and reported as a generic database error.
func BuildDbHTTPErr(err error) *HTTPError {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return &HTTPError{Status: http.StatusNotFound, Message: "not found"}
	case errors.Is(err, db.ErrPermissionDenied):
		return &HTTPError{Status: http.StatusForbidden, Message: "permission denied"}
	case errors.Is(err, app.ErrValidationFailure):
		return &HTTPError{Status: http.StatusUnprocessableEntity, Message: err.Error()}
	case errors.Is(err, app.ErrUploadTimeout):
		return &HTTPError{Status: http.StatusGatewayTimeout, Message: "upload timed out, try a smaller file"}
	case errors.Is(err, app.ErrNoBlobStore):
		return &HTTPError{Status: http.StatusNotImplemented, Message: "media uploads are not enabled"}
	case errors.Is(err, context.Canceled):
		return &HTTPError{Status: 499, Message: "request cancelled"}
	}
	logging.Error().Err(err).Msg("database error occurred")
	httpErr := DbHTTPErr
	return &httpErr
}

func BuildJSONBindHTTPErr(err error) *HTTPError {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fieldErr := validationErrs[0]
		return &HTTPError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("%v failed on the '%v' rule", fieldErr.Field(), fieldErr.Tag()),
		}
	}
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Message: err.Error(),
	}
}

// HandleHTTPErrorRes handles creating the appropriate response for the HTTP error.
// Break the route after calling this function.
func HandleHTTPErrorRes(c *gin.Context, err *HTTPError) {
	c.JSON(err.Status, gin.H{
		"success": false,
		"message": err.Message,
	})
}

type HandlerOpts struct {
	// SuccessStatus defaults to 200.
	SuccessStatus int
}

type Handler func(c *gin.Context) (interface{}, *HTTPError)

// HandlerWrapper writes the handler's result in the {success, data} envelope, or its error as
// {success: false, message}.
func HandlerWrapper(handler Handler, opts *HandlerOpts) gin.HandlerFunc {
	status := http.StatusOK
	if opts != nil && opts.SuccessStatus != 0 {
		status = opts.SuccessStatus
	}
	return func(c *gin.Context) {
		data, httpErr := handler(c)
		if httpErr != nil {
			_ = c.Error(httpErr)
			HandleHTTPErrorRes(c, httpErr)
			return
		}
		res := gin.H{"success": true}
		if data != nil {
			res["data"] = data
		}
		c.JSON(status, res)
	}
}
