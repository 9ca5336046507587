package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hamsterhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected", Auth(), func(c *gin.Context) {
		id, ok := MemberID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"member_id": id})
	})
	return r
}

func TestAuthAcceptsValidToken(t *testing.T) {
	service.InitJWTWithSecret("test-secret")
	token, err := service.IssueToken(7, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	authRouter(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"member_id":7`)
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	service.InitJWTWithSecret("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	authRouter(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsMangledToken(t *testing.T) {
	service.InitJWTWithSecret("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w := httptest.NewRecorder()
	authRouter(t).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimitNoopWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	redisClient = nil

	r := gin.New()
	r.GET("/limited", RateLimit(1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
