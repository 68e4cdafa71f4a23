package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/identity-sdk-go/pkg/validation"
)

// UserGetter resolves an Authorization header value to a user. *Client
// implements it.
type UserGetter interface {
	GetUser(ctx context.Context, authHeader string) (validation.User, error)
}

// Resource is a handler together with its authentication requirement.
type Resource struct {
	Handler         http.Handler
	AuthNotRequired bool
}

// AuthMiddleware requires requests to carry a bearer token the identity
// service accepts, and attaches the resolved user to the request context.
type AuthMiddleware struct {
	users  UserGetter
	tokens validation.Validator[string]
	logger *zap.SugaredLogger
}

// MiddlewareOption configures an AuthMiddleware.
type MiddlewareOption func(*AuthMiddleware)

// WithMiddlewareLogger sets the logger. Defaults to a no-op logger.
func WithMiddlewareLogger(l *zap.SugaredLogger) MiddlewareOption {
	return func(m *AuthMiddleware) { m.logger = l }
}

func NewAuthMiddleware(users UserGetter, opts ...MiddlewareOption) *AuthMiddleware {
	m := &AuthMiddleware{
		users:  users,
		tokens: validation.AccessTokenHeaderValidator{},
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Handler protects next.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return m.Wrap(Resource{Handler: next})
}

// Wrap returns res.Handler guarded according to res. Pre-flight (OPTIONS)
// requests and resources with AuthNotRequired pass through untouched.
func (m *AuthMiddleware) Wrap(res Resource) http.Handler {
	next := res.Handler
	if res.AuthNotRequired {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		authHeader := r.Header.Get("Authorization")
		user, err := m.users.GetUser(r.Context(), authHeader)
		if err != nil {
			herr := m.ErrorFor(err, authHeader)
			m.logger.Debugw("request rejected",
				"method", r.Method,
				"path", r.URL.Path,
				"status", herr.Status,
				"err", err,
			)
			herr.Render(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// ErrorFor translates a GetUser failure into the error response sent to the
// caller. authHeader is the raw header value the request carried.
func (m *AuthMiddleware) ErrorFor(err error, authHeader string) *HTTPError {
	var cerr *ClientError
	if !errors.As(err, &cerr) {
		return badGateway(err)
	}
	switch cerr.Kind {
	case KindInvalidHeader:
		return &HTTPError{
			Status:      http.StatusBadRequest,
			Title:       "Invalid Authorization header",
			Description: fmt.Sprintf("Invalid value %q for Authorization header", authHeader),
			Err:         err,
		}
	case KindHTTPStatus:
		switch cerr.StatusCode {
		case http.StatusUnauthorized:
			token, _ := m.tokens.Validate(authHeader)
			return &HTTPError{
				Status:      http.StatusUnauthorized,
				Title:       "Could not retrieve data from identity service",
				Description: fmt.Sprintf("Identity service refused to authorize with access token %q", token),
				Challenge:   "Bearer",
				Err:         err,
			}
		case http.StatusNotFound:
			return &HTTPError{
				Status:      http.StatusNotFound,
				Title:       "User does not exist",
				Description: "User does not exist",
				Err:         err,
			}
		}
	}
	return badGateway(err)
}

func badGateway(err error) *HTTPError {
	return &HTTPError{
		Status:      http.StatusBadGateway,
		Title:       "Cannot retrieve data from identity service",
		Description: "Could not retrieve data from identity service",
		Err:         err,
	}
}
