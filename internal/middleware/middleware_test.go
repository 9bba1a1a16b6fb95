package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/javajoker/sneakers-backend/internal/models"
	"github.com/javajoker/sneakers-backend/internal/repository/memory"
	"github.com/javajoker/sneakers-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(I18nMiddleware("en"))
	handlers = append(handlers, func(c *gin.Context) {
		principal, _ := CurrentPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"user": principal.UserID.String(), "role": principal.Role, "lang": utils.GetLangFromContext(c)})
	})
	r.GET("/whoami", handlers...)
	return r
}

func whoami(t *testing.T, r *gin.Engine, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "/whoami", nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	r := newEngine(AuthRequired())

	assert.Equal(t, http.StatusUnauthorized, whoami(t, r, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, whoami(t, r, map[string]string{"Authorization": "Token abc"}).Code)
	assert.Equal(t, http.StatusUnauthorized, whoami(t, r, map[string]string{"Authorization": "Bearer not-a-jwt"}).Code)

	userID := uuid.New()
	token, err := utils.GenerateJWT(userID, string(models.UserRoleSeller), 1)
	require.NoError(t, err)

	w := whoami(t, r, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestAuthRejectsUnknownRole(t *testing.T) {
	r := newEngine(AuthRequired())

	token, err := utils.GenerateJWT(uuid.New(), "superuser", 1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, whoami(t, r, map[string]string{"Authorization": "Bearer " + token}).Code)
}

func TestSellerRequired(t *testing.T) {
	r := newEngine(AuthRequired(), SellerRequired())

	for role, want := range map[models.UserRole]int{
		models.UserRoleUser:   http.StatusForbidden,
		models.UserRoleSeller: http.StatusOK,
		models.UserRoleAdmin:  http.StatusOK,
	} {
		token, err := utils.GenerateJWT(uuid.New(), string(role), 1)
		require.NoError(t, err)
		assert.Equal(t, want, whoami(t, r, map[string]string{"Authorization": "Bearer " + token}).Code, role)
	}
}

func TestResolveLang(t *testing.T) {
	assert.Equal(t, "en", resolveLang("", "en"))
	assert.Equal(t, "zh_TW", resolveLang("zh-TW,zh;q=0.9,en;q=0.8", "en"))
	assert.Equal(t, "en", resolveLang("en-GB", "zh_TW"))
	assert.Equal(t, "zh_TW", resolveLang("fr-FR", "zh_TW"))
	assert.Equal(t, "zh_TW", resolveLang("zh-Hant", "en"))
	assert.Equal(t, "en", resolveLang("en-AU", "zh_TW"))
}

func TestExtractResource(t *testing.T) {
	id := uuid.New().String()
	assert.Equal(t, "orders", extractResourceType("/api/v1/orders/"+id))
	assert.Equal(t, id, extractResourceID("/api/v1/orders/"+id))
	assert.Equal(t, "", extractResourceID("/api/v1/orders"))
}

func TestRateLimiterChargesEachKeySeparately(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 1, func(c *gin.Context) string {
		return c.GetHeader("X-Client")
	})
	r := newEngine(rl.Middleware())

	assert.Equal(t, http.StatusOK, whoami(t, r, map[string]string{"X-Client": "a"}).Code)
	assert.Equal(t, http.StatusTooManyRequests, whoami(t, r, map[string]string{"X-Client": "a"}).Code)
	assert.Equal(t, http.StatusOK, whoami(t, r, map[string]string{"X-Client": "b"}).Code)

	rl.evictIdle(time.Now().Add(2 * visitorIdleTTL))
	assert.Equal(t, http.StatusOK, whoami(t, r, map[string]string{"X-Client": "a"}).Code)
}

func TestByPrincipalKeysOnUser(t *testing.T) {
	userID := uuid.New()
	token, err := utils.GenerateJWT(userID, string(models.UserRoleSeller), 1)
	require.NoError(t, err)

	var key string
	r := newEngine(AuthRequired(), func(c *gin.Context) { key = ByPrincipal(c) })
	whoami(t, r, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, "user:"+userID.String(), key)
}

func TestAuditLogMiddleware(t *testing.T) {
	store := memory.NewStore()
	userID := uuid.New()
	token, err := utils.GenerateJWT(userID, string(models.UserRoleUser), 1)
	require.NoError(t, err)

	r := gin.New()
	r.Use(AuditLogMiddleware(store.Repositories().AuditLogs))
	r.GET("/api/v1/orders", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.PATCH("/api/v1/orders/:id", AuthRequired(), func(c *gin.Context) { c.Status(http.StatusAccepted) })

	send := func(method, path, body string, header map[string]string) {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		for k, v := range header {
			req.Header.Set(k, v)
		}
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	orderID := uuid.New()
	send(http.MethodGet, "/api/v1/orders", "", nil)
	send(http.MethodPost, "/api/v1/auth/login", `{"email":"a@b.c","password":"secret"}`, nil)
	send(http.MethodPatch, "/api/v1/orders/"+orderID.String(), `{"status":"completed"}`,
		map[string]string{"Authorization": "Bearer " + token})

	require.Eventually(t, func() bool { return len(store.AuditLogs()) == 2 }, time.Second, 10*time.Millisecond)

	var login, patch *models.AuditLog
	for _, entry := range store.AuditLogs() {
		entry := entry
		switch entry.ResourceType {
		case "auth":
			login = &entry
		case "orders":
			patch = &entry
		}
	}
	require.NotNil(t, login)
	require.NotNil(t, patch)

	assert.NotContains(t, login.NewValues, "password")
	assert.Nil(t, login.UserID)

	assert.Equal(t, "PATCH /api/v1/orders/:id", patch.Action)
	assert.Equal(t, http.StatusAccepted, patch.StatusCode)
	require.NotNil(t, patch.UserID)
	assert.Equal(t, userID, *patch.UserID)
	require.NotNil(t, patch.ResourceID)
	assert.Equal(t, orderID, *patch.ResourceID)
	assert.Equal(t, "completed", patch.NewValues["status"])
}

func TestAuditLogJournalsSizeOfUndecodableBody(t *testing.T) {
	store := memory.NewStore()
	r := gin.New()
	r.Use(AuditLogMiddleware(store.Repositories().AuditLogs))
	r.POST("/api/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	body := `{"email":"a@b.c","password":"secret"`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Eventually(t, func() bool { return len(store.AuditLogs()) == 1 }, time.Second, 10*time.Millisecond)
	entry := store.AuditLogs()[0]
	assert.Equal(t, models.JSONB{"bodyBytes": len(body)}, entry.NewValues)
	assert.Equal(t, http.StatusBadRequest, entry.StatusCode)
}
