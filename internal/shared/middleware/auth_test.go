package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elib-backend/pkg/jwt"
)

func authTestRouter(manager *jwt.Manager) (*gin.Engine, *uuid.UUID) {
	gin.SetMode(gin.TestMode)
	var seen uuid.UUID

	r := gin.New()
	r.GET("/protected", Auth(manager), func(c *gin.Context) {
		id, ok := CallerID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		seen = id
		c.Status(http.StatusOK)
	})
	return r, &seen
}

func TestAuth(t *testing.T) {
	manager := jwt.NewManager("unit-test-secret", 1)

	t.Run("valid bearer token passes the caller id through", func(t *testing.T) {
		userID := uuid.New()
		token, err := manager.GenerateAccessToken(userID.String(), "ada@example.com")
		require.NoError(t, err)

		r, seen := authTestRouter(manager)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, *seen)
	})

	t.Run("missing header is 401", func(t *testing.T) {
		r, _ := authTestRouter(manager)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-bearer scheme is 401", func(t *testing.T) {
		r, _ := authTestRouter(manager)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret is 401", func(t *testing.T) {
		token, err := jwt.NewManager("other-secret", 1).GenerateAccessToken(uuid.NewString(), "")
		require.NoError(t, err)

		r, _ := authTestRouter(manager)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-uuid subject is 401", func(t *testing.T) {
		token, err := manager.GenerateAccessToken("not-a-uuid", "")
		require.NoError(t, err)

		r, _ := authTestRouter(manager)
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
