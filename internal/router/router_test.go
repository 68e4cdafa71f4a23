package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/identity-sdk-go/pkg/identity"
	"github.com/ovaphlow/pitchfork/identity-sdk-go/pkg/validation"
)

type stubUsers struct {
	calls int
}

func (s *stubUsers) GetUser(ctx context.Context, authHeader string) (validation.User, error) {
	s.calls++
	if authHeader != "Bearer good" {
		return validation.User{}, &identity.ClientError{Kind: identity.KindHTTPStatus, StatusCode: http.StatusUnauthorized}
	}
	return validation.User{ID: 9, TimeJoined: time.Unix(1600000000, 0).UTC(), Name: "Grace", PictureURL: "https://e.com/g.png"}, nil
}

func newAPI(t *testing.T) (http.Handler, *stubUsers) {
	t.Helper()
	users := &stubUsers{}
	h := RegisterRoutes(zap.NewNop().Sugar(), identity.NewAuthMiddleware(users), Config{AllowedOrigins: []string{"https://app.example.com"}})
	return h, users
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegisterRoutes_HealthIsPublic(t *testing.T) {
	h, users := newAPI(t)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Zero(t, users.calls)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRegisterRoutes_MeRequiresAuth(t *testing.T) {
	h, _ := newAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := do(h, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec = do(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		User map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Grace", body.User["name"])
	assert.Equal(t, float64(1600000000), body.User["timeJoinedTs"])
}

func TestRegisterRoutes_Preflight(t *testing.T) {
	h, users := newAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/me", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "authorization")
	rec := do(h, req)

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Zero(t, users.calls)
}

func TestRequestIDMiddleware_KeepsCallerID(t *testing.T) {
	var seen string
	h := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := do(h, req)

	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "0.0.0.0:8431", cfg.Addr)
}

func TestConfigFromEnv_Addr(t *testing.T) {
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
}
