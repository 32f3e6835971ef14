package routes

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/groundsync/groundsync-be/app"
	"github.com/groundsync/groundsync-be/controllers"
	"github.com/groundsync/groundsync-be/db/memdb"
	"github.com/groundsync/groundsync-be/logging"
	"github.com/groundsync/groundsync-be/model"
)

func init() {
	gin.SetMode(gin.TestMode)
	logging.Init(logging.Config{Level: "disabled"})
}

type fakeVerifier map[string]string

func (fv fakeVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	uid, ok := fv[idToken]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &auth.Token{UID: uid, Claims: map[string]interface{}{"name": "Name of " + uid}}, nil
}

type fakeGeocoder struct{}

func (fakeGeocoder) Search(ctx context.Context, query string, limit int) ([]*model.PlaceCandidate, error) {
	if query == "Paris" {
		return []*model.PlaceCandidate{{Class: "place", Type: "city"}}, nil
	}
	return nil, nil
}

type fakeBlobStore struct{}

func (fakeBlobStore) Put(ctx context.Context, path string, contentType string, data io.Reader) (string, error) {
	return "https://blobs.test/" + path, nil
}

type testServer struct {
	router *gin.Engine
	core   *app.Core
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	database := memdb.New()
	core := app.New(database, &app.Opts{Geocoder: fakeGeocoder{}, Blobs: fakeBlobStore{}})
	ctx := context.Background()
	if err := core.Seeder.Seed(ctx); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	locations, err := controllers.NewLocationController(ctx, core.Locations, core.Validator, time.Hour)
	if err != nil {
		t.Fatalf("NewLocationController() error = %v", err)
	}
	t.Cleanup(func() {
		locations.Close()
		_ = database.Close()
	})
	verifier := fakeVerifier{"token-1": "u1", "token-2": "u2"}

	r := gin.New()
	AddHealthCheckRoutes(&r.RouterGroup)
	AddLocationRoutes(&r.RouterGroup, locations)
	AddPostRoutes(&r.RouterGroup, core, controllers.NewPostController(locations, core.Posts), database, verifier)
	AddDiscussionRoutes(&r.RouterGroup, core, database, verifier, nil)
	AddFollowRoutes(&r.RouterGroup, core.Follows, database, verifier)
	AddUserRoutes(&r.RouterGroup, database, verifier)
	AddMetricsRoutes(&r.RouterGroup)
	return &testServer{router: r, core: core}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (ts *testServer) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (int, *envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%v %v: decoding %s: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, &env
}

func (ts *testServer) doJSON(t *testing.T, method, path, token string, payload interface{}) (int, *envelope) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encoding payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}
	return ts.do(t, method, path, token, body, "application/json")
}

func decodeData(t *testing.T, env *envelope, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, into); err != nil {
		t.Fatalf("decoding data %s: %v", env.Data, err)
	}
}

func (ts *testServer) createPost(t *testing.T, token, location, content string) string {
	t.Helper()
	status, env := ts.doJSON(t, http.MethodPost, "/posts", token, gin.H{
		"locationName": location,
		"content":      content,
	})
	if status != http.StatusCreated {
		t.Fatalf("POST /posts status = %d (%v)", status, env.Message)
	}
	var created struct {
		Id string `json:"id"`
	}
	decodeData(t, env, &created)
	return created.Id
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	if status, env := ts.doJSON(t, http.MethodGet, "/health", "", nil); status != http.StatusOK || !env.Success {
		t.Fatalf("GET /health = %d %+v", status, env)
	}
}

func TestLocations(t *testing.T) {
	ts := newTestServer(t)

	status, env := ts.doJSON(t, http.MethodGet, "/locations", "", nil)
	if status != http.StatusOK {
		t.Fatalf("GET /locations status = %d", status)
	}
	var locations []*model.Location
	decodeData(t, env, &locations)
	if len(locations) != 4 || locations[0].Name != "Gandhi Park" {
		t.Fatalf("unexpected locations %+v", locations)
	}

	tests := []struct {
		query string
		want  app.ValidationStatus
	}{
		{"jorhat", app.ValidationValid},
		{"Paris", app.ValidationValid},
		{"xyz123nowhere", app.ValidationInvalid},
	}
	for _, tt := range tests {
		status, env := ts.doJSON(t, http.MethodGet, "/locations/validate?name="+tt.query, "", nil)
		if status != http.StatusOK {
			t.Fatalf("validate %v status = %d", tt.query, status)
		}
		var result app.ValidationResult
		decodeData(t, env, &result)
		if result.Status != tt.want {
			t.Errorf("validate %v = %v, want %v", tt.query, result.Status, tt.want)
		}
	}
	if status, _ := ts.doJSON(t, http.MethodGet, "/locations/validate", "", nil); status != http.StatusBadRequest {
		t.Errorf("validate without name status = %d, want 400", status)
	}
}

func TestCreatePost(t *testing.T) {
	ts := newTestServer(t)

	if status, _ := ts.doJSON(t, http.MethodPost, "/posts", "", gin.H{"locationName": "Jorhat", "content": "hi"}); status != http.StatusUnauthorized {
		t.Errorf("anonymous create status = %d, want 401", status)
	}
	if status, _ := ts.doJSON(t, http.MethodPost, "/posts", "token-1", gin.H{"locationName": "Jorhat"}); status != http.StatusBadRequest {
		t.Errorf("create without content status = %d, want 400", status)
	}
	if status, _ := ts.doJSON(t, http.MethodPost, "/posts", "token-1", gin.H{"locationName": "Atlantis", "content": "hi"}); status != http.StatusUnprocessableEntity {
		t.Errorf("create in unverifiable location status = %d, want 422", status)
	}

	id := ts.createPost(t, "token-1", "Paris", "<script>x</script>bonjour")
	status, env := ts.doJSON(t, http.MethodGet, "/posts/"+id, "", nil)
	if status != http.StatusOK {
		t.Fatalf("GET /posts/%v status = %d", id, status)
	}
	var post model.Post
	decodeData(t, env, &post)
	if post.Content != "bonjour" || post.AuthorName != "Name of u1" || post.LocationName != "Paris" {
		t.Errorf("unexpected post %+v", post)
	}

	if status, _ := ts.doJSON(t, http.MethodGet, "/posts/missing", "", nil); status != http.StatusNotFound {
		t.Errorf("GET missing post status = %d, want 404", status)
	}
}

func TestGetPostsFilters(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	locations, err := ts.core.Locations.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var jorhat string
	for _, location := range locations {
		if location.Name == "Jorhat" {
			jorhat = location.Id
		}
	}

	countPosts := func(path, token string) int {
		t.Helper()
		status, env := ts.doJSON(t, http.MethodGet, path, token, nil)
		if status != http.StatusOK {
			t.Fatalf("GET %v status = %d (%v)", path, status, env.Message)
		}
		var posts []*model.Post
		decodeData(t, env, &posts)
		return len(posts)
	}

	if got := countPosts("/posts", ""); got != 4 {
		t.Errorf("all posts = %d, want 4", got)
	}
	if got := countPosts("/posts?locations=", ""); got != 0 {
		t.Errorf("empty location filter = %d, want 0", got)
	}
	if got := countPosts("/posts?locations="+jorhat, ""); got != 1 {
		t.Errorf("jorhat posts = %d, want 1", got)
	}
	if got := countPosts("/posts?following=true", "token-1"); got != 0 {
		t.Errorf("feed without follows = %d, want 0", got)
	}
	if status, _ := ts.doJSON(t, http.MethodPut, "/follows/"+jorhat, "token-1", nil); status != http.StatusOK {
		t.Fatalf("PUT /follows status = %d", status)
	}
	if got := countPosts("/posts?following=true", "token-1"); got != 1 {
		t.Errorf("feed = %d, want 1", got)
	}
	if status, _ := ts.doJSON(t, http.MethodGet, "/posts?following=true", "", nil); status != http.StatusUnauthorized {
		t.Errorf("anonymous feed status = %d, want 401", status)
	}
}

func TestFollows(t *testing.T) {
	ts := newTestServer(t)

	for i := 0; i < 2; i++ {
		if status, _ := ts.doJSON(t, http.MethodPut, "/follows/loc-1", "token-1", nil); status != http.StatusOK {
			t.Fatalf("PUT /follows status = %d", status)
		}
	}
	status, env := ts.doJSON(t, http.MethodGet, "/follows", "token-1", nil)
	if status != http.StatusOK {
		t.Fatalf("GET /follows status = %d", status)
	}
	var ids []string
	decodeData(t, env, &ids)
	if len(ids) != 1 || ids[0] != "loc-1" {
		t.Fatalf("follows = %v, want [loc-1]", ids)
	}

	if status, _ := ts.doJSON(t, http.MethodDelete, "/follows/loc-1", "token-1", nil); status != http.StatusOK {
		t.Fatalf("DELETE /follows status = %d", status)
	}
	_, env = ts.doJSON(t, http.MethodGet, "/follows", "token-1", nil)
	decodeData(t, env, &ids)
	if len(ids) != 0 {
		t.Fatalf("follows after delete = %v", ids)
	}
}

func TestHype(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createPost(t, "token-1", "Jorhat", "hype me")

	type hypeState struct {
		Hyped     bool  `json:"hyped"`
		HypeCount int64 `json:"hypeCount"`
	}
	toggle := func(token string) hypeState {
		t.Helper()
		status, env := ts.doJSON(t, http.MethodPost, "/posts/"+id+"/hype", token, nil)
		if status != http.StatusOK {
			t.Fatalf("toggle status = %d (%v)", status, env.Message)
		}
		var state hypeState
		decodeData(t, env, &state)
		return state
	}

	if got := toggle("token-1"); !got.Hyped || got.HypeCount != 1 {
		t.Errorf("first toggle = %+v", got)
	}
	if got := toggle("token-2"); !got.Hyped || got.HypeCount != 2 {
		t.Errorf("second user toggle = %+v", got)
	}
	if got := toggle("token-1"); got.Hyped || got.HypeCount != 1 {
		t.Errorf("untoggle = %+v", got)
	}

	_, env := ts.doJSON(t, http.MethodGet, "/posts/"+id+"/hype", "token-2", nil)
	var state hypeState
	decodeData(t, env, &state)
	if !state.Hyped {
		t.Errorf("GET hype for u2 = %+v, want hyped", state)
	}
	if status, _ := ts.doJSON(t, http.MethodPost, "/posts/missing/hype", "token-1", nil); status != http.StatusNotFound {
		t.Errorf("toggle on missing post status = %d, want 404", status)
	}
}

func multipartBody(t *testing.T, content string, fileName string, fileType string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("content", content); err != nil {
		t.Fatal(err)
	}
	if fileName != "" {
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{`form-data; name="media"; filename="` + fileName + `"`}
		header["Content-Type"] = []string{fileType}
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte("fake image bytes")); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func TestDiscussions(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createPost(t, "token-1", "Jorhat", "discuss")
	path := "/posts/" + id + "/discussions"

	body, contentType := multipartBody(t, "", "", "")
	if status, _ := ts.do(t, http.MethodPost, path, "token-1", body, contentType); status != http.StatusBadRequest {
		t.Errorf("empty discussion status = %d, want 400", status)
	}

	body, contentType = multipartBody(t, "first", "", "")
	if status, env := ts.do(t, http.MethodPost, path, "token-1", body, contentType); status != http.StatusCreated {
		t.Fatalf("POST discussion status = %d (%v)", status, env.Message)
	}
	body, contentType = multipartBody(t, "", "photo.png", "image/png")
	if status, env := ts.do(t, http.MethodPost, path, "token-2", body, contentType); status != http.StatusCreated {
		t.Fatalf("POST media discussion status = %d (%v)", status, env.Message)
	}

	status, env := ts.doJSON(t, http.MethodGet, path, "", nil)
	if status != http.StatusOK {
		t.Fatalf("GET discussions status = %d", status)
	}
	var discussions []*model.Discussion
	decodeData(t, env, &discussions)
	if len(discussions) != 2 {
		t.Fatalf("got %d discussions, want 2", len(discussions))
	}
	if discussions[0].Content != "first" || discussions[0].MediaUrl != nil {
		t.Errorf("discussions[0] = %+v", discussions[0])
	}
	media := discussions[1]
	if media.MediaType == nil || *media.MediaType != "image" || media.MediaUrl == nil ||
		!strings.HasPrefix(*media.MediaUrl, "https://blobs.test/discussion_media/"+id+"/") {
		t.Errorf("discussions[1] = %+v", media)
	}
	if media.UserName != "Name of u2" {
		t.Errorf("UserName = %q", media.UserName)
	}
}

func TestLiveDiscussions(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createPost(t, "token-1", "Jorhat", "live")
	server := httptest.NewServer(ts.router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/posts/" + id + "/discussions/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	read := func() []*model.Discussion {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		var msg liveMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decoding %s: %v", payload, err)
		}
		return msg.Discussions
	}

	if initial := read(); len(initial) != 0 {
		t.Fatalf("initial snapshot has %d discussions", len(initial))
	}
	body, contentType := multipartBody(t, "hello live", "", "")
	if status, _ := ts.do(t, http.MethodPost, "/posts/"+id+"/discussions", "token-2", body, contentType); status != http.StatusCreated {
		t.Fatalf("POST discussion status = %d", status)
	}
	updated := read()
	if len(updated) != 1 || updated[0].Content != "hello live" {
		t.Fatalf("update = %+v", updated)
	}

	missing := "ws" + strings.TrimPrefix(server.URL, "http") + "/posts/missing/discussions/live"
	if _, resp, err := websocket.DefaultDialer.Dial(missing, nil); err == nil {
		t.Error("Dial() to a missing post succeeded")
	} else if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("Dial() to a missing post: %v", err)
	}
}

func TestUsers(t *testing.T) {
	ts := newTestServer(t)

	status, env := ts.doJSON(t, http.MethodPut, "/users", "token-1", gin.H{"name": "Chosen Name"})
	if status != http.StatusOK {
		t.Fatalf("PUT /users status = %d (%v)", status, env.Message)
	}
	status, env = ts.doJSON(t, http.MethodGet, "/users/me", "token-1", nil)
	if status != http.StatusOK {
		t.Fatalf("GET /users/me status = %d", status)
	}
	var user model.User
	decodeData(t, env, &user)
	if user.Id != "u1" {
		t.Errorf("user = %+v", user)
	}
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "groundsync_posts_created_total") {
		t.Fatalf("GET /metrics = %d", w.Code)
	}
}
