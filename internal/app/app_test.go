package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/app"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/config"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/service"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/testutil"
	"github.com/dmehra2102/prod-golang-projects/vetcare/pkg/metrics"
)

const password = "correct-horse-battery"

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "vetcare-test", Environment: "test", Version: "test"},
		JWT: config.JWTConfig{
			Secret:          "test-secret-test-secret-test-secret",
			AccessTokenTTL:  time.Minute,
			RefreshTokenTTL: time.Hour,
			Issuer:          "vetcare-test",
		},
		Tracing: config.TracingConfig{ServiceName: "vetcare-test"},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173"},
			AllowedMethods: []string{"GET", "POST", "PATCH", "PUT", "DELETE"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 1000, AuthRequestsPerMinute: 3},
		Audit:     config.AuditConfig{BufferSize: 16, ShutdownTimeout: 5 * time.Second},
	}
}

type client struct {
	t   *testing.T
	app *app.App
}

func newClient(t *testing.T) *client {
	t.Helper()
	a, err := app.New(testConfig(), testutil.DB(t), metrics.NewCollector("test"), testutil.Logger(t))
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return &client{t: t, app: a}
}

func (c *client) user(rut string, role domain.Role) {
	c.t.Helper()
	_, err := c.app.Auth.CreateUser(context.Background(), &service.CreateUserCommand{
		RUT: rut, FullName: "Staff " + string(role), Password: password, Role: role,
	})
	require.NoError(c.t, err)
}

func (c *client) do(method, path, token string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.app.Router.ServeHTTP(w, req)
	return w
}

func (c *client) login(rut string) string {
	c.t.Helper()
	w := c.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"rut": rut, "password": password})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	var pair domain.TokenPair
	decode(c.t, w, &pair)
	return pair.AccessToken
}

// decode unwraps the data envelope into out.
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out), string(env.Data))
}

type idOnly struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Stock  int64  `json:"stock"`
}

func TestConsultationDiscountOverHTTP(t *testing.T) {
	c := newClient(t)
	c.user("12345678-5", domain.RoleAdmin)
	c.user("11111111-1", domain.RoleVeterinarian)
	admin := c.login("12.345.678-5")
	vet := c.login("11111111-1")

	w := c.do(http.MethodPost, "/api/v1/supplies", admin, map[string]any{
		"code": "carp-50", "name": "Carprofen 50mg", "kind": "medication", "format": "tablet",
		"dose_per_kg": "0.25", "applications_per_day": 1, "content_per_container": "10",
		"initial_stock": 2, "sale_price": "1000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sp idOnly
	decode(t, w, &sp)
	assert.Equal(t, int64(2), sp.Stock)

	w = c.do(http.MethodPost, "/api/v1/owners", vet, map[string]any{"rut": "7-8", "first_name": "Ana", "last_name": "Rojas"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var own idOnly
	decode(t, w, &own)

	w = c.do(http.MethodPost, "/api/v1/patients", vet, map[string]any{
		"owner_id": own.ID, "name": "Luna", "species": "canine", "sex": "female", "weight_kg": "20",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var pat idOnly
	decode(t, w, &pat)

	w = c.do(http.MethodPost, "/api/v1/consultations", vet, map[string]any{"patient_id": pat.ID, "reason": "limping"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cons idOnly
	decode(t, w, &cons)

	// 0.25 * 20kg * 5 days = 25 tablets, three boxes.
	w = c.do(http.MethodPost, "/api/v1/consultations/"+cons.ID+"/supplies", vet, map[string]any{"supply_id": sp.ID, "days": 5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = c.do(http.MethodPost, "/api/v1/consultations/"+cons.ID+"/confirm", vet, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	var shortage struct {
		Code    string `json:"code"`
		Details []struct {
			Code      string `json:"code"`
			Required  int64  `json:"required"`
			Available int64  `json:"available"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shortage))
	assert.Equal(t, "INSUFFICIENT_STOCK", shortage.Code)
	require.Len(t, shortage.Details, 1)
	assert.Equal(t, "CARP-50", shortage.Details[0].Code)
	assert.Equal(t, int64(3), shortage.Details[0].Required)
	assert.Equal(t, int64(2), shortage.Details[0].Available)

	w = c.do(http.MethodPost, "/api/v1/supplies/"+sp.ID+"/restock", admin, map[string]any{"quantity": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodPost, "/api/v1/consultations/"+cons.ID+"/confirm", vet, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var confirmed idOnly
	decode(t, w, &confirmed)
	assert.Equal(t, "confirmed", confirmed.Status)

	w = c.do(http.MethodPost, "/api/v1/consultations/"+cons.ID+"/confirm", vet, nil)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = c.do(http.MethodGet, "/api/v1/supplies/"+sp.ID, vet, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &sp)
	assert.Equal(t, int64(4), sp.Stock)

	w = c.do(http.MethodGet, "/api/v1/history/supply/"+sp.ID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var trail struct {
		Events []struct {
			Kind      string  `json:"kind"`
			ActorID   *string `json:"actor_id"`
			RequestID string  `json:"request_id"`
		} `json:"events"`
	}
	decode(t, w, &trail)
	require.NotEmpty(t, trail.Events)
	latest := trail.Events[0]
	assert.Equal(t, "stock_changed", latest.Kind)
	require.NotNil(t, latest.ActorID)
	assert.NotEmpty(t, latest.RequestID)
}

func TestAuthenticationAndRoles(t *testing.T) {
	c := newClient(t)
	c.user("22222222-2", domain.RoleCashier)
	cashier := c.login("22222222-2")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/api/v1/owners", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/v1/owners", "not-a-jwt", http.StatusUnauthorized},
		{"cashier reads owners", http.MethodGet, "/api/v1/owners", cashier, http.StatusOK},
		{"cashier cannot consult", http.MethodGet, "/api/v1/consultations", cashier, http.StatusForbidden},
		{"cashier cannot read history", http.MethodGet, "/api/v1/history", cashier, http.StatusForbidden},
		{"cashier cannot create users", http.MethodPost, "/api/v1/users", cashier, http.StatusForbidden},
		{"bad uuid", http.MethodGet, "/api/v1/owners/nope", cashier, http.StatusBadRequest},
		{"unknown owner", http.MethodGet, "/api/v1/owners/7b4f2a34-3c5e-4d7b-9a55-5b8c2f0e1a11", cashier, http.StatusNotFound},
		{"no open session", http.MethodGet, "/api/v1/cash/current", cashier, http.StatusUnprocessableEntity},
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"ready", http.MethodGet, "/ready", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := c.do(tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	w := c.do(http.MethodGet, "/api/v1/auth/me", cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me domain.Claims
	decode(t, w, &me)
	assert.Equal(t, domain.RoleCashier, me.Role)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = c.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "test_http_requests_total"))
}

func TestLoginIsRateLimited(t *testing.T) {
	c := newClient(t)
	c.user("12345678-5", domain.RoleAdmin)

	bad := map[string]string{"rut": "12345678-5", "password": "wrong-password"}
	for i := 0; i < 3; i++ {
		w := c.do(http.MethodPost, "/api/v1/auth/login", "", bad)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d", i+1)
	}
	w := c.do(http.MethodPost, "/api/v1/auth/login", "", bad)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestCashSaleOverHTTP(t *testing.T) {
	c := newClient(t)
	c.user("12345678-5", domain.RoleAdmin)
	c.user("22222222-2", domain.RoleCashier)
	admin := c.login("12345678-5")
	cashier := c.login("22222222-2")

	w := c.do(http.MethodPost, "/api/v1/supplies", admin, map[string]any{
		"code": "COLLAR", "name": "Flea collar", "kind": "material", "format": "unit",
		"initial_stock": 3, "sale_price": "4990",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sp idOnly
	decode(t, w, &sp)

	w = c.do(http.MethodPost, "/api/v1/sales", cashier, map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "needs an open session")

	w = c.do(http.MethodPost, "/api/v1/cash/open", cashier, map[string]any{"opening_amount": "10000"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = c.do(http.MethodPost, "/api/v1/cash/open", cashier, map[string]any{"opening_amount": "10000"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = c.do(http.MethodPost, "/api/v1/sales", cashier, map[string]any{})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sl idOnly
	decode(t, w, &sl)

	w = c.do(http.MethodPost, "/api/v1/sales/"+sl.ID+"/items", cashier, map[string]any{"kind": "supply", "supply_id": sp.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = c.do(http.MethodPost, "/api/v1/sales/"+sl.ID+"/pay", cashier, map[string]any{"method": "cash"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = c.do(http.MethodPost, "/api/v1/sales/"+sl.ID+"/pay", cashier, map[string]any{"method": "cash"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = c.do(http.MethodPost, "/api/v1/sales/"+sl.ID+"/void", cashier, map[string]any{"reason": "wrong size"})
	assert.Equal(t, http.StatusForbidden, w.Code, "only admins void")
	w = c.do(http.MethodPost, "/api/v1/sales/"+sl.ID+"/void", admin, map[string]any{"reason": "wrong size"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodGet, "/api/v1/supplies/"+sp.ID, cashier, nil)
	decode(t, w, &sp)
	assert.Equal(t, int64(3), sp.Stock)
}
