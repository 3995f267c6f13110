package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/pkg/ratelimit"
	"github.com/sangkips/tableorder-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryIdempotencyRepo struct {
	mu   sync.Mutex
	keys map[string]*entity.IdempotencyKey
}

func newMemoryIdempotencyRepo() *memoryIdempotencyRepo {
	return &memoryIdempotencyRepo{keys: make(map[string]*entity.IdempotencyKey)}
}

func (r *memoryIdempotencyRepo) GetByKey(ctx context.Context, key, scope string) (*entity.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[scope+"|"+key], nil
}

func (r *memoryIdempotencyRepo) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[ikey.Scope+"|"+ikey.Key] = ikey
	return nil
}

func (r *memoryIdempotencyRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func (r *memoryIdempotencyRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

func serve(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// withSession stands in for SessionMiddleware
func withSession(sessionID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionID != "" {
			c.Set("session_id", sessionID)
		}
		c.Next()
	}
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.New(ratelimit.Config{Requests: 2, Period: time.Minute})
	router := gin.New()
	router.Use(RateLimit(limiter))
	router.GET("/menu", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, http.MethodGet, "/menu", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/menu", nil).Code)

	w = serve(router, http.MethodGet, "/menu", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitKey(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "10.0.0.7:5000"
	assert.Equal(t, "ip:10.0.0.7", RateLimitKey(c))

	c.Set("session_id", "9876543210_table_3")
	assert.Equal(t, "session:9876543210_table_3", RateLimitKey(c))

	id := uuid.New()
	c.Set("user_id", id)
	assert.Equal(t, "user:"+id.String(), RateLimitKey(c))
}

func TestIdempotency_ReplaysSuccessfulResponse(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	calls := 0

	router := gin.New()
	router.Use(withSession("9876543210_table_3"), Idempotency(IdempotencyConfig{Repo: repo}))
	router.POST("/orders", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})

	headers := map[string]string{IdempotencyKeyHeader: "cart-1"}
	first := serve(router, http.MethodPost, "/orders", headers)
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get("X-Idempotency-Replayed"))

	second := serve(router, http.MethodPost, "/orders", headers)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	// a different key runs the handler again
	third := serve(router, http.MethodPost, "/orders", map[string]string{IdempotencyKeyHeader: "cart-2"})
	assert.Equal(t, http.StatusCreated, third.Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotency_ScopesKeysPerSession(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	handler := func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"ok": true}) }

	tableOne := gin.New()
	tableOne.Use(withSession("9876543210_table_1"), Idempotency(IdempotencyConfig{Repo: repo}))
	tableOne.POST("/orders", handler)

	tableTwo := gin.New()
	tableTwo.Use(withSession("9123456780_table_2"), Idempotency(IdempotencyConfig{Repo: repo}))
	tableTwo.POST("/orders", handler)

	headers := map[string]string{IdempotencyKeyHeader: "same-key"}
	serve(tableOne, http.MethodPost, "/orders", headers)
	w := serve(tableTwo, http.MethodPost, "/orders", headers)

	assert.Empty(t, w.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, 2, repo.count())
}

func TestIdempotency_FailedResponsesAreNotStored(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	router := gin.New()
	router.Use(withSession("9876543210_table_3"), Idempotency(IdempotencyConfig{Repo: repo}))
	router.POST("/bill/pay", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "No unpaid orders"})
	})

	w := serve(router, http.MethodPost, "/bill/pay", map[string]string{IdempotencyKeyHeader: "pay-1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, repo.count())
}

func TestIdempotency_MissingKeyAndScope(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	required := gin.New()
	required.Use(withSession("9876543210_table_3"), Idempotency(IdempotencyConfig{Repo: repo, Required: true}))
	required.POST("/orders", ok)
	required.GET("/orders", ok)

	assert.Equal(t, http.StatusBadRequest, serve(required, http.MethodPost, "/orders", nil).Code)
	assert.Equal(t, http.StatusOK, serve(required, http.MethodGet, "/orders", nil).Code)

	optional := gin.New()
	optional.Use(withSession("9876543210_table_3"), Idempotency(IdempotencyConfig{Repo: repo}))
	optional.POST("/orders", ok)
	assert.Equal(t, http.StatusOK, serve(optional, http.MethodPost, "/orders", nil).Code)

	anonymous := gin.New()
	anonymous.Use(withSession(""), Idempotency(IdempotencyConfig{Repo: repo}))
	anonymous.POST("/orders", ok)
	w := serve(anonymous, http.MethodPost, "/orders", map[string]string{IdempotencyKeyHeader: "k"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthAndPermissions(t *testing.T) {
	jwtManager := utils.NewJWTManager("test-secret", time.Hour, 24*time.Hour, time.Hour)
	userID := uuid.New()
	accessToken, err := jwtManager.GenerateAccessToken(userID, "staff@example.com", []string{"staff"}, []string{"manage_orders"})
	require.NoError(t, err)
	sessionToken, _, err := jwtManager.GenerateSessionToken("9876543210", 3, "9876543210_table_3")
	require.NoError(t, err)

	router := gin.New()
	admin := router.Group("/admin", AuthMiddleware(jwtManager))
	admin.GET("/orders", RequirePermission("manage_orders"), func(c *gin.Context) {
		c.String(http.StatusOK, c.MustGet("user_id").(uuid.UUID).String())
	})
	admin.GET("/settings", RequirePermission("manage_settings"), func(c *gin.Context) { c.Status(http.StatusOK) })
	admin.POST("/staff", RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusCreated) })
	router.GET("/bill", SessionMiddleware(jwtManager), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("session_id"))
	})

	bearer := func(token string) map[string]string {
		return map[string]string{"Authorization": "Bearer " + token}
	}

	w := serve(router, http.MethodGet, "/admin/orders", bearer(accessToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodGet, "/admin/settings", bearer(accessToken)).Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPost, "/admin/staff", bearer(accessToken)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/admin/orders", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/admin/orders", bearer(sessionToken)).Code)

	w = serve(router, http.MethodGet, "/bill", bearer(sessionToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "9876543210_table_3", w.Body.String())
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/bill", bearer(accessToken)).Code)
}

func TestLoggerMiddleware_RequestID(t *testing.T) {
	router := gin.New()
	router.Use(LoggerMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := serve(router, http.MethodGet, "/ping", map[string]string{"X-Request-ID": "req-42"})
	assert.Equal(t, "req-42", w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	w = serve(router, http.MethodGet, "/ping", nil)
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
}

func TestWithRequired(t *testing.T) {
	headers := withRequired([]string{"content-type", "X-Custom"})

	assert.Contains(t, headers, "Accept")
	assert.Contains(t, headers, "Origin")
	assert.Contains(t, headers, "content-type")
	assert.Contains(t, headers, "X-Custom")
	assert.Contains(t, headers, "Authorization")
	assert.Contains(t, headers, "Idempotency-Key")
	assert.NotContains(t, headers, "Content-Type")
}
