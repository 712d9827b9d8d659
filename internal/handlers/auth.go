package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fittrack/apiserver/internal/auth"
	"github.com/fittrack/apiserver/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest     = "invalid request"
	msgInvalidCredentials = "invalid credentials"
	msgUnauthorized       = "unauthorized"
	msgInternal           = "internal server error"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	userService *services.UserService
	logger      *slog.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{userService: userService, logger: logger}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, logger *slog.Logger) {
	handler := NewAuthHandler(userService, logger)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
}

// RequireToken authenticates the bearer token and stores the owning user id
// in the request context. Every failure is answered with the same 401 body.
func RequireToken(userService *services.UserService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			value, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}

			userID, err := userService.Authenticate(r.Context(), value)
			if err != nil {
				if !errors.Is(err, services.ErrUnauthorized) {
					logger.ErrorContext(r.Context(), "token authentication failed", "error", err)
					writeError(w, http.StatusInternalServerError, msgInternal)
					return
				}
				writeError(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
		})
	}
}

// Register creates a new user account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}
	if len(req.Password) > auth.MaxPasswordBytes {
		writeError(w, http.StatusBadRequest, "password too long")
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			writeError(w, http.StatusConflict, services.ErrUsernameTaken.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "register failed", "username", req.Username, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{ID: user.ID, Username: user.Username})
}

// Login verifies credentials and returns a new bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.userService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		h.logger.ErrorContext(r.Context(), "login failed", "username", req.Username, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Value: token.Value})
}

func (h *AuthHandler) decodeCredentials(w http.ResponseWriter, r *http.Request) (CredentialsRequest, bool) {
	var req CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidRequest)
		return CredentialsRequest{}, false
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return CredentialsRequest{}, false
	}
	return req, true
}

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse is the body of a successful registration.
type RegisterResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// LoginResponse carries the bearer token issued by login.
type LoginResponse struct {
	Value string `json:"value"`
}
