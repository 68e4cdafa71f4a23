package oidc

import (
	"encoding/json"
	"net/http"
)

type Handler struct {
	svc    *TokenService
	issuer string
}

func NewHandler(svc *TokenService, issuer string) *Handler {
	return &Handler{svc: svc, issuer: issuer}
}

func (h *Handler) Discovery(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{
		"issuer":            h.issuer,
		"jwks_uri":          h.issuer + "/.well-known/jwks.json",
		"userinfo_endpoint": h.issuer + "/user",
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *Handler) JWKS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.svc.JWKS())
}
