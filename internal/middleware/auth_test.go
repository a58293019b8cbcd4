package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(secret))
	r.GET("/me", func(c *gin.Context) {
		userID, _ := GetUserIDFromContext(c)
		c.String(http.StatusOK, userID)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	const secret = "test-secret"
	valid, err := NewToken(secret, "user-1", time.Hour)
	require.NoError(t, err)
	expired, err := NewToken(secret, "user-1", -time.Hour)
	require.NoError(t, err)
	foreign, err := NewToken("other-secret", "user-1", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusOK, wantBody: "user-1"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + valid, wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantBody: "Token has expired"},
		{name: "wrong secret", header: "Bearer " + foreign, wantStatus: http.StatusUnauthorized},
	}

	router := newAuthRouter(secret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestParseToken(t *testing.T) {
	token, err := NewToken("s3cret", "user-42", time.Minute)
	require.NoError(t, err)

	userID, err := ParseToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)

	_, err = ParseToken("other", token)
	assert.Error(t, err)

	noSubject, err := NewToken("s3cret", "", time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("s3cret", noSubject)
	assert.ErrorIs(t, err, errMissingSubject)
}
