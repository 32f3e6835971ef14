package util

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/groundsync/groundsync-be/app"
	"github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
	logging.Init(logging.Config{Level: "disabled"})
}

func TestBuildDbHTTPErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("post p1: %w", db.ErrNotFound), http.StatusNotFound},
		{"permission denied", db.ErrPermissionDenied, http.StatusForbidden},
		{"validation", fmt.Errorf("%w: nope", app.ErrValidationFailure), http.StatusUnprocessableEntity},
		{"upload timeout", app.ErrUploadTimeout, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildDbHTTPErr(tt.err); got.Status != tt.want {
				t.Errorf("Status = %d, want %d", got.Status, tt.want)
			}
		})
	}

	if msg := BuildDbHTTPErr(errors.New("secret detail")).Message; msg != "database error" {
		t.Errorf("unknown errors leak %q", msg)
	}
}

func TestParseLocationIds(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{"a, b,,a ,c", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		if got := ParseLocationIds(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseLocationIds(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseBoolQuery(t *testing.T) {
	if got, err := ParseBoolQuery("true"); err != nil || !got {
		t.Errorf("ParseBoolQuery(true) = %v, %v", got, err)
	}
	if got, err := ParseBoolQuery(""); err != nil || got {
		t.Errorf("ParseBoolQuery(\"\") = %v, %v", got, err)
	}
	if _, err := ParseBoolQuery("maybe"); err == nil || err.Status != http.StatusBadRequest {
		t.Errorf("ParseBoolQuery(maybe) error = %v, want 400", err)
	}
}

func TestSanitizeText(t *testing.T) {
	got := SanitizeText(`  <script>alert(1)</script>Clean the <b>city</b> & park  `)
	if strings.Contains(got, "<script>") {
		t.Errorf("script survived: %q", got)
	}
	if got != "Clean the <b>city</b> & park" {
		t.Errorf("SanitizeText() = %q", got)
	}
}

func TestHandlerWrapper(t *testing.T) {
	r := gin.New()
	r.GET("/ok", HandlerWrapper(func(c *gin.Context) (interface{}, *HTTPError) {
		return gin.H{"id": "p1"}, nil
	}, &HandlerOpts{SuccessStatus: http.StatusCreated}))
	r.GET("/fail", HandlerWrapper(func(c *gin.Context) (interface{}, *HTTPError) {
		return nil, &HTTPError{Status: http.StatusTeapot, Message: "short and stout"}
	}, nil))

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/ok", http.StatusCreated, `{"data":{"id":"p1"},"success":true}`},
		{"/fail", http.StatusTeapot, `{"message":"short and stout","success":false}`},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != tt.wantStatus {
			t.Errorf("%v status = %d, want %d", tt.path, w.Code, tt.wantStatus)
		}
		if w.Body.String() != tt.wantBody {
			t.Errorf("%v body = %s, want %s", tt.path, w.Body.String(), tt.wantBody)
		}
	}
}
