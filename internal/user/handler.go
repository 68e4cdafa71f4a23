package user

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/invopop/jsonschema"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/identity-sdk-go/pkg/validation"
)

const maxAuth0PayloadBytes = 1 << 20

// Tokens issues and verifies access tokens; *oidc.TokenService implements it.
type Tokens interface {
	IssueAccessToken(userID int64) (string, error)
	ParseAccessToken(token string) (int64, error)
}

// Handler exposes the identity service user endpoints.
type Handler struct {
	svc     *UserService
	tokens  Tokens
	headers validation.AccessTokenHeaderValidator
	logger  *zap.SugaredLogger
}

func NewHandler(svc *UserService, tokens Tokens, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, tokens: tokens, logger: logger}
}

// Auth0Response is returned after an Auth0 profile has been ingested.
type Auth0Response struct {
	User        validation.User `json:"user"`
	AccessToken string          `json:"accessToken"`
}

// Get serves GET /user: the user owning the bearer access token.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	token, err := h.headers.Validate(r.Header.Get("Authorization"))
	if err != nil {
		h.unauthorized(w, `Bearer error="invalid_request"`, "missing or malformed bearer token")
		return
	}
	id, err := h.tokens.ParseAccessToken(token)
	if err != nil {
		h.logger.Debugw("access token rejected", "err", err)
		h.unauthorized(w, `Bearer error="invalid_token"`, "invalid access token")
		return
	}
	u, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "user does not exist"})
			return
		}
		h.logger.Warnw("get user failed", "user_id", id, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "get user failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, validation.UserResponse{User: u.Public()})
}

// IngestAuth0 serves POST /user/auth0: registers the Auth0 profile in the
// body and returns the user with a fresh access token.
func (h *Handler) IngestAuth0(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAuth0PayloadBytes))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	u, err := h.svc.IngestAuth0(r.Context(), raw)
	if err != nil {
		if errors.Is(err, ErrInvalidAuth0User) {
			h.logger.Debugw("invalid auth0 payload", "err", err)
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid Auth0 user"})
			return
		}
		h.logger.Warnw("auth0 ingest failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "ingest failed"})
		return
	}
	tok, err := h.tokens.IssueAccessToken(u.ID)
	if err != nil {
		h.logger.Warnw("issue access token failed", "user_id", u.ID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "ingest failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, Auth0Response{User: u.Public(), AccessToken: tok})
}

var schemas = map[string]func() *jsonschema.Schema{
	"user":          validation.UserSchema,
	"user-response": validation.UserResponseSchema,
	"auth0-user":    validation.Auth0UserSchema,
}

// Schema serves GET /schemas/{name}.
func (h *Handler) Schema(w http.ResponseWriter, r *http.Request) {
	schema, ok := schemas[r.PathValue("name")]
	if !ok {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown schema"})
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	_ = json.NewEncoder(w).Encode(schema())
}

func (h *Handler) unauthorized(w http.ResponseWriter, challenge, msg string) {
	w.Header().Set("WWW-Authenticate", challenge)
	h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
