package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-dashboard/internal/handler"
	"github.com/jwalitptl/hospital-dashboard/internal/model"
	"github.com/jwalitptl/hospital-dashboard/internal/repository/mocks"
	"github.com/jwalitptl/hospital-dashboard/internal/repository/rest"
	"github.com/jwalitptl/hospital-dashboard/internal/service/auth"
	"github.com/jwalitptl/hospital-dashboard/internal/service/rbac"
	"github.com/jwalitptl/hospital-dashboard/internal/session"
	apperrors "github.com/jwalitptl/hospital-dashboard/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuth(users *mocks.UserRepository) *AuthMiddleware {
	svc := auth.NewService(users, session.NewMemoryStore(0), rbac.NewProjector(nil), nil, nil)
	return NewAuthMiddleware(svc)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.Response {
	t.Helper()
	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func protectedEngine(m *AuthMiddleware, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{m.Authenticate()}, extra...)
	chain = append(chain, func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(sess.UserType))
	})
	r.GET("/x", chain...)
	return r
}

func TestAuthenticateMissingHeaderRedirects(t *testing.T) {
	r := protectedEngine(newAuth(&mocks.UserRepository{}))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, rbac.LoginPath, resp.Redirect)
}

func TestAuthenticateBackendRejectsToken(t *testing.T) {
	users := &mocks.UserRepository{}
	users.On("Profile", mock.Anything, "expired").Return(nil, &rest.Error{StatusCode: http.StatusUnauthorized, Message: "Invalid token."})
	r := protectedEngine(newAuth(users))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Token expired")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, rbac.LoginPath, decode(t, w).Redirect)
}

func TestAuthenticateSetsSession(t *testing.T) {
	users := &mocks.UserRepository{}
	users.On("Profile", mock.Anything, "good").Return(&model.Profile{ID: "3", UserType: "nurse", RoleLevel: "basic"}, nil)
	r := protectedEngine(newAuth(users))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Token good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nurse", decode(t, w).Data)
}

func TestRequireRegion(t *testing.T) {
	users := &mocks.UserRepository{}
	users.On("Profile", mock.Anything, "nurse").Return(&model.Profile{ID: "3", UserType: "nurse", RoleLevel: "basic"}, nil)
	users.On("Profile", mock.Anything, "admin").Return(&model.Profile{ID: "4", UserType: "admin", RoleLevel: "senior"}, nil)
	m := newAuth(users)
	r := protectedEngine(m, m.RequireRegion(rbac.ButtonCancel))

	for token, want := range map[string]int{"nurse": http.StatusForbidden, "admin": http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Token "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, token)
	}
}

func TestErrorHandlerRendersAppError(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(apperrors.Write("Slot already taken", http.StatusConflict, nil))
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("unexpected"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "Slot already taken", resp.Message)
	assert.Equal(t, "write", resp.Kind)
	assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRateLimitPerCaller(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RPS: 0.001, Burst: 1})
	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if token != "" {
			req.Header.Set("Authorization", "Token "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("a"))
	assert.Equal(t, http.StatusTooManyRequests, send("a"))
	assert.Equal(t, http.StatusOK, send("b"), "other callers have their own bucket")
}

func TestRecoveryAnswers500(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://dashboard.hospital.test"}
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://dashboard.hospital.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dashboard.hospital.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
