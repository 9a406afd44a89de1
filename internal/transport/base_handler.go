package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/pkg/localization"
	"github.com/danekja/ymanager/pkg/logger"
)

// BaseHandler provides common functionality for HTTP handlers.
type BaseHandler struct {
	Logger *slog.Logger
}

func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.L()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response.
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes the error body the web client expects: the HTTP code as
// a string plus the message localized per the request's "lang" hint.
func (h *BaseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, messageKey string) {
	lang := localization.GetLanguage(r.URL.Query().Get("lang"))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errorResp := map[string]string{
		"error":   strconv.Itoa(status),
		"message": localization.Get(lang, messageKey),
	}
	if err := json.NewEncoder(w).Encode(errorResp); err != nil {
		h.Logger.Error("failed to encode error response", "error", err)
	}
}

// HandleServiceError maps domain errors to the wire unchanged and hides
// infrastructure failures behind a generic internal error.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		h.Logger.Warn("domain error", "code", appErr.Code, "message", appErr.Message)
		h.WriteError(w, r, appErr.StatusCode, appErr.MessageKey)
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		h.Logger.Error("request deadline exceeded", "path", r.URL.Path)
		h.WriteError(w, r, http.StatusGatewayTimeout, "error.timeout")
		return
	}

	h.Logger.Error("internal error", "error", err, "path", r.URL.Path)
	h.WriteError(w, r, http.StatusInternalServerError, "error.internal")
}

// ExtractTokenFromHeader extracts the bearer token from the Authorization
// header.
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}
	return authHeader[7:]
}

// ResolveUserID parses a path user id, resolving the "me" sentinel to the
// actor. Non-numeric ids are unknown entities, not silent fallbacks.
func (h *BaseHandler) ResolveUserID(raw string, actorID int64) (int64, error) {
	if raw == "me" {
		return actorID, nil
	}
	return h.ResolveEntityID(raw)
}

// ResolveEntityID parses a numeric path id. A malformed id names no record,
// so it maps to NOT_FOUND rather than a validation error.
func (h *BaseHandler) ResolveEntityID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, internal.ErrNotFound
	}
	return id, nil
}
