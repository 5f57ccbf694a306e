package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prepace_backend/internal/model"
	"prepace_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		claims := util.GetUserFromContext(c)
		util.Success(c, gin.H{"userId": claims.UserID})
	})
	r.GET("/protected", handlers...)
	return r
}

func tokenFor(t *testing.T, user *model.User, secret string, ttl time.Duration) string {
	t.Helper()
	token, err := util.GenerateJWT(user, secret, ttl)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	user := &model.User{BaseModel: model.BaseModel{ID: 42}, Email: "a@b.c", Role: model.RoleUser}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + tokenFor(t, user, "another-secret-another-secret-12345", time.Hour), http.StatusUnauthorized},
		{"expired", "Bearer " + tokenFor(t, user, testSecret, -time.Minute), http.StatusUnauthorized},
		{"valid", "Bearer " + tokenFor(t, user, testSecret, time.Hour), http.StatusOK},
	}

	r := newTestRouter(AuthMiddleware(testSecret))
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	r := newTestRouter(AuthMiddleware(testSecret), RoleMiddleware(model.RoleAdmin))

	userToken := tokenFor(t, &model.User{BaseModel: model.BaseModel{ID: 1}, Role: model.RoleUser}, testSecret, time.Hour)
	adminToken := tokenFor(t, &model.User{BaseModel: model.BaseModel{ID: 2}, Role: model.RoleAdmin}, testSecret, time.Hour)

	for token, want := range map[string]int{userToken: http.StatusForbidden, adminToken: http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("expected %d, got %d", want, w.Code)
		}
	}
}
