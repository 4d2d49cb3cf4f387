package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/ports"
)

const defaultRequestTimeout = 3 * time.Second

type SessionHandler struct {
	Sessions       ports.SessionManagerInterface
	RequestTimeout time.Duration
}

// SeedSessionRequest carries the token pair obtained at login
// swagger:model
type SeedSessionRequest struct {
	// Access token
	// example: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"accessToken"`

	// Refresh token
	// example: vcSi0369y1I62wOpxZFpgZ...
	RefreshToken string `json:"refreshToken"`
}

// AccessTokenResponse returns a freshly exchanged access token
// swagger:model
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// MessageResponse contains a short result message
// swagger:model
type MessageResponse struct {
	// example: session cleared
	Message string `json:"message"`
}

func NewSessionHandler(sessions ports.SessionManagerInterface) *SessionHandler {
	return &SessionHandler{Sessions: sessions, RequestTimeout: defaultRequestTimeout}
}

func requestContext(request *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return context.WithTimeout(request.Context(), timeout)
}

// Seed stores a new token pair
// @Summary Seed session
// @Description Replaces the current session with the pair obtained at login. Example: POST /api-ibe/session {"accessToken": "...", "refreshToken": "..."}
// @Tags Session
// @Accept json
// @Produce json
// @Param request body SeedSessionRequest true "token pair"
// @Success 200 {object} model.SessionStatus
// @Failure 400 {object} ErrorResponse "malformed body or empty tokens"
// @Router /session [post]
func (handler *SessionHandler) Seed(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := requestContext(request, handler.RequestTimeout)
	defer cancel()

	var body SeedSessionRequest
	if err := decodeStrict(request, &body); err != nil {
		WriteError(writer, request, err)
		return
	}

	if err := handler.Sessions.Seed(ctx, body.AccessToken, body.RefreshToken); err != nil {
		WriteError(writer, request, err)
		return
	}

	status, err := handler.Sessions.Status(ctx)
	if err != nil {
		WriteError(writer, request, err)
		return
	}
	writeJSON(writer, http.StatusOK, status)
}

// Status reports whether a session exists
// @Summary Session status
// @Tags Session
// @Produce json
// @Success 200 {object} model.SessionStatus
// @Router /session [get]
func (handler *SessionHandler) Status(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := requestContext(request, handler.RequestTimeout)
	defer cancel()

	status, err := handler.Sessions.Status(ctx)
	if err != nil {
		WriteError(writer, request, err)
		return
	}
	writeJSON(writer, http.StatusOK, status)
}

// Refresh forces a refresh exchange
// @Summary Refresh session
// @Description Exchanges the stored pair at the PMS refresh endpoint regardless of its age.
// @Tags Session
// @Produce json
// @Success 200 {object} AccessTokenResponse
// @Failure 401 {object} ErrorResponse "no session or refresh rejected"
// @Router /session/refresh [post]
func (handler *SessionHandler) Refresh(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := requestContext(request, handler.RequestTimeout)
	defer cancel()

	accessToken, err := handler.Sessions.Refresh(ctx)
	if err != nil {
		WriteError(writer, request, err)
		return
	}
	writeJSON(writer, http.StatusOK, &AccessTokenResponse{AccessToken: accessToken})
}

// Logout clears the session
// @Summary Logout
// @Description Drops the cached pair and wipes every persisted session key. Safe without a session.
// @Tags Session
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /session [delete]
func (handler *SessionHandler) Logout(writer http.ResponseWriter, request *http.Request) {
	ctx, cancel := requestContext(request, handler.RequestTimeout)
	defer cancel()

	if err := handler.Sessions.Clear(ctx); err != nil {
		WriteError(writer, request, err)
		return
	}
	writeJSON(writer, http.StatusOK, &MessageResponse{Message: "session cleared"})
}
