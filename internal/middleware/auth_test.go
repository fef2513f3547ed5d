package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/audit"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
)

type tokenFunc func(string) (*domain.Claims, error)

func (f tokenFunc) ValidateAccessToken(token string) (*domain.Claims, error) { return f(token) }

func TestRequireAuthAndRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	vetID := uuid.New()
	tokens := tokenFunc(func(raw string) (*domain.Claims, error) {
		switch raw {
		case "vet":
			return &domain.Claims{UserID: vetID, Role: domain.RoleVeterinarian}, nil
		case "admin":
			return &domain.Claims{UserID: uuid.New(), Role: domain.RoleAdmin}, nil
		case "cashier":
			return &domain.Claims{UserID: uuid.New(), Role: domain.RoleCashier}, nil
		}
		return nil, errors.New("bad token")
	})

	var seen audit.Actor
	r := gin.New()
	r.Use(RequestContext(), RequireAuth(tokens))
	r.GET("/clinical", RequireRole(domain.RoleVeterinarian), func(c *gin.Context) {
		seen = audit.ActorFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"invalid", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer cashier", http.StatusForbidden},
		{"admin passes", "Bearer admin", http.StatusOK},
		{"vet passes", "bearer vet", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/clinical", nil)
			req.Header.Set(HeaderRequestID, "req-42")
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
		})
	}

	require.NotNil(t, seen.UserID)
	assert.Equal(t, vetID, *seen.UserID)
	assert.Equal(t, "veterinarian", seen.Role)
	assert.Equal(t, "req-42", seen.RequestID)
}
