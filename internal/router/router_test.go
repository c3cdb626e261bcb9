package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repos/testutil"
	"agora/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type apiClient struct {
	t   *testing.T
	r   *gin.Engine
	svc *services.Services
}

func newClient(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, err := services.New(testutil.DB(t), testutil.Logger(t), services.Options{})
	require.NoError(t, err)
	return &apiClient{t: t, r: New(svc, testutil.Logger(t), []string{"http://localhost:3000"}), svc: svc}
}

func (a *apiClient) do(method, path string, body interface{}, as uint) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != 0 {
		req.Header.Set(middleware.UserHeader, strconv.FormatUint(uint64(as), 10))
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (a *apiClient) register(name string) uint {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/auth/register", gin.H{"username": name, "password": "secret"}, 0)
	require.Equal(a.t, http.StatusCreated, w.Code, env.Error)
	var u struct {
		ID    uint     `json:"id"`
		Roles []string `json:"roles"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &u))
	assert.Contains(a.t, u.Roles, "USER")
	return u.ID
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestRegisterAndLogin(t *testing.T) {
	api := newClient(t)
	api.register("alice")

	w, _ := api.do(http.MethodPost, "/api/auth/register", gin.H{"username": "alice", "password": "x"}, 0)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = api.do(http.MethodPost, "/api/auth/register", gin.H{"username": "bob"}, 0)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodPost, "/api/auth/login", gin.H{"username": "alice", "password": "secret"}, 0)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = api.do(http.MethodPost, "/api/auth/login", gin.H{"username": "alice", "password": "wrong"}, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = api.do(http.MethodPost, "/api/auth/login", gin.H{"username": "nobody", "password": "secret"}, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCommunityLifecycleOverHTTP(t *testing.T) {
	api := newClient(t)
	alice := api.register("alice")

	w, _ := api.do(http.MethodPost, "/api/communities", gin.H{"name": "chess"}, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := api.do(http.MethodPost, "/api/communities", gin.H{"name": "chess", "description": "64 squares"}, alice)
	require.Equal(t, http.StatusCreated, w.Code, env.Error)
	chess := decode[struct {
		ID    uint   `json:"id"`
		State string `json:"state"`
	}](t, env)
	assert.Equal(t, "PENDING", chess.State)

	approvePath := "/api/admin/communities/" + strconv.Itoa(int(chess.ID)) + "/approve"
	w, _ = api.do(http.MethodPost, approvePath, nil, alice)
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, err := api.svc.Users.AssignRole(context.Background(), alice, int(models.TagPortalAdmin))
	require.NoError(t, err)

	w, env = api.do(http.MethodPost, approvePath, nil, alice)
	require.Equal(t, http.StatusOK, w.Code, env.Error)
	assert.Equal(t, "APPROVED", decode[struct {
		State string `json:"state"`
	}](t, env).State)

	w, env = api.do(http.MethodGet, "/api/communities/approved", nil, 0)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]json.RawMessage](t, env), 1)

	w, env = api.do(http.MethodGet, "/api/communities?name=chess", nil, 0)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]json.RawMessage](t, env), 1)

	w, _ = api.do(http.MethodGet, "/api/communities?name=go", nil, 0)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostsOverHTTP(t *testing.T) {
	api := newClient(t)
	ctx := context.Background()
	alice := api.register("alice")
	bob := api.register("bob")

	c, err := api.svc.Communities.Create(ctx, "chess", "")
	require.NoError(t, err)
	_, err = api.svc.Communities.Approve(ctx, c.ID)
	require.NoError(t, err)
	base := "/api/communities/" + strconv.Itoa(int(c.ID))

	w, env := api.do(http.MethodPost, base+"/posts", gin.H{"text": "**1. e4** is best by test"}, alice)
	require.Equal(t, http.StatusCreated, w.Code, env.Error)
	root := decode[struct {
		ID   uint   `json:"id"`
		HTML string `json:"html"`
	}](t, env)
	assert.Contains(t, root.HTML, "<strong>1. e4</strong>")
	postPath := "/api/posts/" + strconv.Itoa(int(root.ID))

	w, env = api.do(http.MethodPost, postPath+"/replies", gin.H{"text": "<script>alert(1)</script>c5"}, bob)
	require.Equal(t, http.StatusCreated, w.Code, env.Error)
	assert.NotContains(t, decode[struct {
		HTML string `json:"html"`
	}](t, env).HTML, "<script>")

	w, _ = api.do(http.MethodPost, postPath+"/like", nil, bob)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, env = api.do(http.MethodGet, postPath, nil, 0)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[struct {
		Liked   bool              `json:"liked"`
		Replies []json.RawMessage `json:"replies"`
	}](t, env)
	assert.True(t, detail.Liked)
	assert.Len(t, detail.Replies, 1)

	w, _ = api.do(http.MethodPut, postPath, gin.H{"text": "edited"}, bob)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = api.do(http.MethodDelete, postPath, nil, alice)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = api.do(http.MethodGet, base+"/posts", nil, 0)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]json.RawMessage](t, env), 2)

	w, _ = api.do(http.MethodGet, "/api/posts/abc", nil, 0)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = api.do(http.MethodGet, "/api/posts/999", nil, 0)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 待审核社区不能发帖
	pending, err := api.svc.Communities.Create(ctx, "go", "")
	require.NoError(t, err)
	w, _ = api.do(http.MethodPost, "/api/communities/"+strconv.Itoa(int(pending.ID))+"/posts", gin.H{"text": "hi"}, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMessagesAndContactsOverHTTP(t *testing.T) {
	api := newClient(t)
	alice := api.register("alice")
	bob := api.register("bob")

	w, env := api.do(http.MethodPost, "/api/messages", gin.H{"receiver_id": bob, "text": "rematch?"}, alice)
	require.Equal(t, http.StatusCreated, w.Code, env.Error)

	w, env = api.do(http.MethodGet, "/api/messages/inbox", nil, bob)
	require.Equal(t, http.StatusOK, w.Code)
	inbox := decode[[]struct {
		SenderID uint   `json:"sender_id"`
		Text     string `json:"text"`
	}](t, env)
	require.Len(t, inbox, 1)
	assert.Equal(t, alice, inbox[0].SenderID)

	contactPath := "/api/contacts/" + strconv.Itoa(int(bob))
	w, _ = api.do(http.MethodPost, contactPath, nil, alice)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = api.do(http.MethodPost, contactPath, nil, alice)
	assert.Equal(t, http.StatusConflict, w.Code)
	w, _ = api.do(http.MethodDelete, contactPath, nil, alice)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	api := newClient(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/communities", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	api.r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDAndUserHeader(t *testing.T) {
	api := newClient(t)

	w, _ := api.do(http.MethodGet, "/api/tags", nil, 0)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(middleware.UserHeader, "not-a-number")
	rec := httptest.NewRecorder()
	api.r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	w, _ = api.do(http.MethodGet, "/api/me", nil, 404)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
