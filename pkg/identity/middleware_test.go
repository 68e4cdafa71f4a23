package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/identity-sdk-go/pkg/validation"
)

type fakeGetter struct {
	calls int
	user  validation.User
	err   error
}

func (f *fakeGetter) GetUser(ctx context.Context, authHeader string) (validation.User, error) {
	f.calls++
	return f.user, f.err
}

// echoUser writes the context user back, or 500 if none is attached.
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"user": u})
})

func serve(h http.Handler, method, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/things", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware_AttachesUser(t *testing.T) {
	srv, _ := newIdentityServer(t, http.StatusOK, userBody)
	mw := NewAuthMiddleware(NewClient(domainOf(srv)))

	rec := serve(mw.Handler(echoUser), http.MethodGet, "Bearer abc123")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, userBody, rec.Body.String())
}

func TestAuthMiddleware_PreflightPassesThrough(t *testing.T) {
	getter := &fakeGetter{err: errors.New("must not be called")}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	rec := serve(NewAuthMiddleware(getter).Handler(next), http.MethodOptions, "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, getter.calls)
}

func TestAuthMiddleware_AuthNotRequired(t *testing.T) {
	getter := &fakeGetter{err: errors.New("must not be called")}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := UserFromContext(r.Context())
		assert.False(t, ok)
		w.WriteHeader(http.StatusOK)
	})

	h := NewAuthMiddleware(getter).Wrap(Resource{Handler: next, AuthNotRequired: true})
	rec := serve(h, http.MethodGet, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, getter.calls)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	srv, _ := newIdentityServer(t, http.StatusOK, userBody)
	mw := NewAuthMiddleware(NewClient(domainOf(srv)))

	rec := serve(mw.Handler(echoUser), http.MethodGet, "abc123")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Invalid Authorization header", body["title"])
	assert.Contains(t, body["description"], `"abc123"`)

	rec = serve(mw.Handler(echoUser), http.MethodGet, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthMiddleware_Unauthorized(t *testing.T) {
	srv, _ := newIdentityServer(t, http.StatusUnauthorized, `{}`)
	mw := NewAuthMiddleware(NewClient(domainOf(srv)))

	rec := serve(mw.Handler(echoUser), http.MethodGet, "Bearer abc123")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.Contains(t, decodeError(t, rec)["description"], `"abc123"`)
}

func TestAuthMiddleware_NotFound(t *testing.T) {
	srv, _ := newIdentityServer(t, http.StatusNotFound, `{}`)
	mw := NewAuthMiddleware(NewClient(domainOf(srv)))

	rec := serve(mw.Handler(echoUser), http.MethodGet, "Bearer abc123")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User does not exist", decodeError(t, rec)["title"])
	assert.Empty(t, rec.Header().Get("WWW-Authenticate"))
}

func TestAuthMiddleware_Unreachable(t *testing.T) {
	mw := NewAuthMiddleware(NewClient(closedDomain(t)))

	rec := serve(mw.Handler(echoUser), http.MethodGet, "Bearer abc123")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Cannot retrieve data from identity service", decodeError(t, rec)["title"])
}

func TestAuthMiddleware_OtherStatusIsBadGateway(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusInternalServerError} {
		srv, _ := newIdentityServer(t, status, `{}`)
		mw := NewAuthMiddleware(NewClient(domainOf(srv)))

		rec := serve(mw.Handler(echoUser), http.MethodGet, "Bearer abc123")
		assert.Equal(t, http.StatusBadGateway, rec.Code, "upstream %d", status)
	}
}

func TestAuthMiddleware_InvalidResponseIsBadGateway(t *testing.T) {
	srv, _ := newIdentityServer(t, http.StatusOK, `{"user": {}}`)
	mw := NewAuthMiddleware(NewClient(domainOf(srv)))

	rec := serve(mw.Handler(echoUser), http.MethodGet, "Bearer abc123")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestErrorFor(t *testing.T) {
	mw := NewAuthMiddleware(&fakeGetter{})

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid header", &ClientError{Kind: KindInvalidHeader}, http.StatusBadRequest},
		{"unreachable", &ClientError{Kind: KindUnreachable}, http.StatusBadGateway},
		{"401", &ClientError{Kind: KindHTTPStatus, StatusCode: 401}, http.StatusUnauthorized},
		{"404", &ClientError{Kind: KindHTTPStatus, StatusCode: 404}, http.StatusNotFound},
		{"500", &ClientError{Kind: KindHTTPStatus, StatusCode: 500}, http.StatusBadGateway},
		{"invalid response", &ClientError{Kind: KindInvalidResponse}, http.StatusBadGateway},
		{"foreign error", errors.New("boom"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			herr := mw.ErrorFor(tt.err, "Bearer abc123")
			assert.Equal(t, tt.status, herr.Status)
			assert.ErrorIs(t, herr, tt.err)
		})
	}
}
