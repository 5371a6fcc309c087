package handlers

import (
	"errors"
	"net/http"

	"github.com/novaacademy/aula-virtual/internal/api/middleware"
	"github.com/novaacademy/aula-virtual/internal/domain"
	"github.com/novaacademy/aula-virtual/internal/logger"
	"github.com/novaacademy/aula-virtual/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type ValidateTokenResponse struct {
	Valid bool         `json:"valid"`
	User  *domain.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, r, "AuthHandler.Login", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: result.Token, User: result.User})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.authService.Logout(r.Context(), sessionID); err != nil {
		logger.FromContext(r.Context()).Warn("[AuthHandler.Logout] failed to revoke session", zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}

// ValidateToken confirms that the bearer token is still valid for the user in
// the path. A token issued to someone else, or to a deleted user, is rejected
// with 401 so the caller drops its session.
func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	if userID != id {
		writeError(w, http.StatusUnauthorized, "Token does not belong to this user")
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "User no longer exists")
		return
	}
	if err != nil {
		respondError(w, r, "AuthHandler.ValidateToken", err)
		return
	}

	writeJSON(w, http.StatusOK, ValidateTokenResponse{Valid: true, User: user})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	user, err := h.userService.GetByID(r.Context(), userID)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "User no longer exists")
		return
	}
	if err != nil {
		respondError(w, r, "AuthHandler.Me", err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
