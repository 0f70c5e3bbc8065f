package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"edujobs_backend/internal/auth"
	"edujobs_backend/internal/middleware"
	"edujobs_backend/internal/models"
	"edujobs_backend/internal/ratelimit"
	"edujobs_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubResolver maps tokens to accounts or errors.
type stubResolver struct {
	users map[string]*models.User
	errs  map[string]error
}

func (s *stubResolver) Authenticate(_ context.Context, token string) (*models.User, error) {
	if err, ok := s.errs[token]; ok {
		return nil, err
	}
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, apperrors.ErrInvalidToken
}

func newResolver() *stubResolver {
	student := &models.User{Role: auth.RoleStudent}
	student.ID = "student-1"
	admin := &models.User{Role: auth.RoleAdmin}
	admin.ID = "admin-1"
	return &stubResolver{
		users: map[string]*models.User{"student-token": student, "admin-token": admin},
		errs: map[string]error{
			"expired-token": apperrors.ErrTokenExpired,
			"stale-token":   apperrors.ErrPasswordChanged,
		},
	}
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(apperrors.Middleware(false))
	handlers = append(handlers, func(c *gin.Context) {
		user, ok := middleware.Resolve(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"user": ""})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user.ID})
	})
	r.GET("/", handlers...)
	return r
}

type errorBody struct {
	Status string `json:"status"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func do(t *testing.T, r http.Handler, req *http.Request) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body errorBody
	if w.Code >= 400 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestAuthenticate_TokenSources(t *testing.T) {
	r := newRouter(middleware.Authenticate(newResolver()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w, body := do(t, r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.ErrNoToken.Message, body.Error.Message)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer student-token")
	w, _ = do(t, r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"student-1"}`, w.Body.String())

	// The cookie wins over the header.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: "admin-token"})
	req.Header.Set("Authorization", "Bearer student-token")
	w, _ = do(t, r, req)
	assert.JSONEq(t, `{"user":"admin-1"}`, w.Body.String())
}

func TestAuthenticate_Failures(t *testing.T) {
	r := newRouter(middleware.Authenticate(newResolver()))

	cases := map[string]*apperrors.AppError{
		"expired-token": apperrors.ErrTokenExpired,
		"stale-token":   apperrors.ErrPasswordChanged,
		"junk":          apperrors.ErrInvalidToken,
	}
	for token, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w, body := do(t, r, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, token)
		assert.Equal(t, want.Message, body.Error.Message, token)
		assert.Equal(t, "fail", body.Status, token)
	}
}

func TestOptionalAuth_NeverRejects(t *testing.T) {
	r := newRouter(middleware.OptionalAuth(newResolver()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	w, _ := do(t, r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":""}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer student-token")
	w, _ = do(t, r, req)
	assert.JSONEq(t, `{"user":"student-1"}`, w.Body.String())
}

func TestRequireRolesAndPermissions(t *testing.T) {
	resolver := newResolver()
	table := auth.DefaultPermissionTable()

	byRole := newRouter(middleware.Authenticate(resolver), middleware.RequireRoles(auth.RoleAdmin, auth.RoleManager))
	byPerm := newRouter(middleware.Authenticate(resolver), middleware.RequirePermission(table, auth.PermManageUsers))
	anyPerm := newRouter(middleware.Authenticate(resolver),
		middleware.RequireAnyPermission(table, auth.PermManageCourses, auth.PermRead))

	for _, r := range []*gin.Engine{byRole, byPerm} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer student-token")
		w, body := do(t, r, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, string(apperrors.CodeForbidden), body.Error.Code)

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		w, _ = do(t, r, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer student-token")
	w, _ := do(t, anyPerm, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Without an authenticated account the guard answers 401.
	noAuth := newRouter(middleware.RequireRoles(auth.RoleAdmin))
	w, _ = do(t, noAuth, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	limiter := ratelimit.New(time.Minute, 2).WithClock(func() time.Time { return now })
	r := newRouter(middleware.RateLimit(limiter))

	for i := 0; i < 2; i++ {
		w, _ := do(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w, body := do(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, string(apperrors.CodeTooManyRequests), body.Error.Code)

	now = now.Add(time.Minute)
	w, _ = do(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDAndCORS(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.CORS([]string{"http://localhost:3000"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	const id = "6f1c7f0e-2a8b-4a53-9b8e-0d1c2e3f4a5b"
	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set(middleware.RequestIDHeader, id)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, id, w.Header().Get(middleware.RequestIDHeader))
}
