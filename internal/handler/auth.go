package handler

import (
	"net/http"

	"filament-inventory-api/internal/model"
	"filament-inventory-api/pkg/response"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct{}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Verify handles GET /api/auth/verify. It sits behind the auth middleware,
// so reaching it means the bearer token was accepted.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	response.OK(w, model.OK{OK: true})
}
