package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Payphone-Digital/taskflow/config"
	"github.com/Payphone-Digital/taskflow/internal/constants"
	"github.com/Payphone-Digital/taskflow/internal/dto"
	apperrors "github.com/Payphone-Digital/taskflow/internal/errors"
	"github.com/Payphone-Digital/taskflow/internal/middleware"
	"github.com/Payphone-Digital/taskflow/internal/service"
	"github.com/Payphone-Digital/taskflow/internal/testutil"
	"github.com/Payphone-Digital/taskflow/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterGinValidators(); err != nil {
		panic(err)
	}
}

type testServer struct {
	engine *gin.Engine
	users  *testutil.UserStore
	tasks  *testutil.TaskStore
}

func newTestServer() *testServer {
	users := testutil.NewUserStore()
	tasks := testutil.NewTaskStore()
	tokens := service.NewTokenService(config.JWTConfig{
		AccessSecret:  "handler-access",
		RefreshSecret: "handler-refresh",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	})

	authHandler := NewAuthHandler(service.NewAuthService(users, tokens, service.WithHashCost(bcrypt.MinCost)))
	taskHandler := NewTaskHandler(service.NewTaskService(tasks))
	gate := middleware.NewJWTMiddleware(tokens, nil).RequireAuth()

	r := gin.New()
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/refresh", authHandler.Refresh)
	r.POST("/auth/logout", gate, authHandler.Logout)
	r.GET("/auth/me", gate, authHandler.Me)

	t := r.Group("/tasks", gate)
	t.GET("", taskHandler.List)
	t.POST("", taskHandler.Create)
	t.GET("/:id", taskHandler.Get)
	t.PATCH("/:id", taskHandler.Update)
	t.DELETE("/:id", taskHandler.Delete)
	t.POST("/:id/toggle", taskHandler.Toggle)

	return &testServer{engine: r, users: users, tasks: tasks}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(constants.HeaderContentType, "application/json")
	if token != "" {
		req.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(t *testing.T, email string) dto.AuthResponse {
	t.Helper()
	w := s.do(http.MethodPost, "/auth/register", "", gin.H{"email": email, "password": "Abcdef1!", "name": "A"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["error"].(string)
	return msg
}

func TestRegister(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodPost, "/auth/register", "", gin.H{"email": "a@x.com", "password": "Abcdef1!", "name": "A"})
	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["accessToken"])
	assert.NotEmpty(t, body["refreshToken"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "a@x.com", user["email"])
	assert.Contains(t, user, "createdAt")
	assert.NotContains(t, user, "password")

	w = s.do(http.MethodPost, "/auth/register", "", gin.H{"email": "a@x.com", "password": "Abcdef1!", "name": "B"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already registered", errorMessage(t, w))
}

func TestRegister_Validation(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name string
		body any
		want string
	}{
		{
			name: "all fields invalid",
			body: gin.H{"email": "bad", "password": "short", "name": "  "},
			want: "Valid email is required, Password must be at least 8 characters, Name is required",
		},
		{
			name: "weak password",
			body: gin.H{"email": "a@x.com", "password": "alllowercase1!", "name": "A"},
			want: constants.MsgPasswordWeak,
		},
		{
			name: "malformed json",
			body: `{"email":`,
			want: constants.MsgInvalidRequest,
		},
		{
			name: "wrong type",
			body: `{"email": 42, "password": "Abcdef1!", "name": "A"}`,
			want: constants.MsgInvalidJSONFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, errorMessage(t, w))
		})
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer()
	s.register(t, "a@x.com")

	w := s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "nobody@x.com", "password": "Abcdef1!"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User doesn't exist, please register", errorMessage(t, w))

	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "a@x.com", "password": "Wrong1!x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", errorMessage(t, w))

	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, constants.MsgPasswordRequired, errorMessage(t, w))

	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "a@x.com", "password": "Abcdef1!"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefresh(t *testing.T) {
	s := newTestServer()
	session := s.register(t, "a@x.com")

	w := s.do(http.MethodPost, "/auth/refresh", "", gin.H{"refreshToken": session.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["accessToken"])
	assert.NotContains(t, resp, "refreshToken")

	for name, body := range map[string]any{
		"empty body":   nil,
		"garbage body": "not json",
		"empty token":  gin.H{"refreshToken": ""},
		"access token": gin.H{"refreshToken": session.AccessToken},
	} {
		t.Run(name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/auth/refresh", "", body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Invalid or expired refresh token", errorMessage(t, w))
		})
	}
}

func TestRefresh_StoreFailure(t *testing.T) {
	s := newTestServer()
	session := s.register(t, "a@x.com")
	s.users.Err = apperrors.WrapError(apperrors.ErrInternal, errors.New("db down"))

	w := s.do(http.MethodPost, "/auth/refresh", "", gin.H{"refreshToken": session.RefreshToken})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, constants.MsgRefreshFailed, errorMessage(t, w))
}

func TestLogin_SessionConflict(t *testing.T) {
	s := newTestServer()
	s.register(t, "a@x.com")
	s.users.SwapErr = apperrors.ErrSessionConflict

	w := s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "a@x.com", "password": "Abcdef1!"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.ErrSessionConflict.Message, errorMessage(t, w))
}

func TestLogoutAndMe(t *testing.T) {
	s := newTestServer()
	session := s.register(t, "a@x.com")

	w := s.do(http.MethodGet, "/auth/me", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me dto.MeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, session.User.ID, me.User.ID)

	w = s.do(http.MethodPost, "/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/logout", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, w.Body.String())

	w = s.do(http.MethodPost, "/auth/refresh", "", gin.H{"refreshToken": session.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.users.Delete(session.User.ID)
	w = s.do(http.MethodGet, "/auth/me", session.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTasks_CRUD(t *testing.T) {
	s := newTestServer()
	token := s.register(t, "a@x.com").AccessToken

	w := s.do(http.MethodPost, "/tasks", token, gin.H{"title": "  Ship it ", "description": "soon"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Ship it", created.Title)
	assert.Equal(t, constants.TaskStatusPending, created.Status)

	w = s.do(http.MethodGet, "/tasks/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPatch, "/tasks/"+created.ID, token, gin.H{"status": constants.TaskStatusInProgress})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Ship it"`)
	assert.Contains(t, w.Body.String(), `"status":"IN_PROGRESS"`)

	w = s.do(http.MethodPost, "/tasks/"+created.ID+"/toggle", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"COMPLETED"`)

	w = s.do(http.MethodDelete, "/tasks/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Task deleted successfully"}`, w.Body.String())

	w = s.do(http.MethodGet, "/tasks/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", errorMessage(t, w))
}

func TestTasks_Validation(t *testing.T) {
	s := newTestServer()
	token := s.register(t, "a@x.com").AccessToken

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   string
	}{
		{"missing title", http.MethodPost, "/tasks", gin.H{"description": "x"}, constants.MsgTitleRequired},
		{"blank title", http.MethodPost, "/tasks", gin.H{"title": "   "}, constants.MsgTitleRequired},
		{"bad status", http.MethodPost, "/tasks", gin.H{"title": "t", "status": "DONE"}, constants.MsgInvalidStatus},
		{"bad id", http.MethodGet, "/tasks/not-a-uuid", nil, constants.MsgInvalidTaskID},
		{"bad toggle id", http.MethodPost, "/tasks/123/toggle", nil, constants.MsgInvalidTaskID},
		{"empty update title", http.MethodPatch, "/tasks/6f1c2a9e-3b4d-4e5f-8a7b-9c0d1e2f3a4b", gin.H{"title": " "}, constants.MsgTitleEmpty},
		{"bad page", http.MethodGet, "/tasks?page=0", nil, constants.MsgInvalidPage},
		{"bad limit", http.MethodGet, "/tasks?limit=101", nil, constants.MsgInvalidLimit},
		{"bad query", http.MethodGet, "/tasks?page=x&limit=0&status=done", nil, "Invalid page number, Invalid limit, Invalid status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(tt.method, tt.path, token, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, errorMessage(t, w))
		})
	}
}

func TestTasks_ListAndIsolation(t *testing.T) {
	s := newTestServer()
	alice := s.register(t, "alice@x.com").AccessToken
	bob := s.register(t, "bob@x.com").AccessToken

	var firstID string
	for _, title := range []string{"one", "two", "three"} {
		w := s.do(http.MethodPost, "/tasks", alice, gin.H{"title": title})
		require.Equal(t, http.StatusCreated, w.Code)
		if firstID == "" {
			var task dto.TaskResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
			firstID = task.ID
		}
	}

	w := s.do(http.MethodGet, "/tasks?page=1&limit=2", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.TaskListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Tasks, 2)
	assert.Equal(t, "three", list.Tasks[0].Title)
	assert.Equal(t, dto.Pagination{Page: 1, Limit: 2, Total: 3, TotalPages: 2}, list.Pagination)

	w = s.do(http.MethodGet, "/tasks", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tasks":[],"pagination":{"page":1,"limit":10,"total":0,"totalPages":0}}`, w.Body.String())

	w = s.do(http.MethodGet, "/tasks/"+firstID, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodDelete, "/tasks/"+firstID, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTasks_RequireAuth(t *testing.T) {
	s := newTestServer()

	w := s.do(http.MethodPost, "/tasks", "", gin.H{"title": "t"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, constants.MsgAccessTokenMissing, errorMessage(t, w))
}

func TestTasks_StoreFailureHidesCause(t *testing.T) {
	s := newTestServer()
	token := s.register(t, "a@x.com").AccessToken
	s.tasks.Err = apperrors.WrapError(apperrors.ErrInternal, errors.New("pq: relation does not exist"))

	w := s.do(http.MethodGet, "/tasks", token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, constants.MsgFetchTasksFailed, errorMessage(t, w))
}

func TestHealthCheck(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("refused") }

	tests := []struct {
		name     string
		db       PingFunc
		redis    PingFunc
		want     int
		redisSts string
	}{
		{"all healthy", ok, ok, http.StatusOK, statusHealthy},
		{"redis disabled", ok, nil, http.StatusOK, statusDisabled},
		{"redis down", ok, down, http.StatusOK, statusUnhealthy},
		{"database down", down, ok, http.StatusServiceUnavailable, statusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewHealthHandler(tt.db, tt.redis).HealthCheck)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.want, w.Code)

			var resp HealthCheckResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.redisSts, resp.Checks["redis"].Status)
			assert.False(t, resp.Timestamp.IsZero())
		})
	}
}
