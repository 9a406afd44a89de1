package approval

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/transport"
	"github.com/danekja/ymanager/internal/user"
)

type ServiceAPI interface {
	ListTimeOffRequests(ctx context.Context, actor *user.User, status *internal.Status) ([]*TimeOffRequestDTO, error)
	ListAuthorizationRequests(ctx context.Context, actor *user.User, status *internal.Status) ([]*AuthorizationRequestDTO, error)
	DecideTimeOff(ctx context.Context, actor *user.User, entryID int64, newStatus internal.Status) error
	DecideAuthorization(ctx context.Context, actor *user.User, userID int64, newStatus internal.Status, role user.Role) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     service,
	}
}

func (h *Handler) ListTimeOffRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("ListTimeOffRequests: user not found in context")
		h.WriteError(w, r, http.StatusUnauthorized, "error.unauthenticated")
		return
	}

	status, ok := internal.ParseStatus(r.URL.Query().Get("status"))
	if !ok {
		h.WriteError(w, r, http.StatusBadRequest, "error.validation")
		return
	}

	requests, err := h.Service.ListTimeOffRequests(r.Context(), actor, status)
	if err != nil {
		h.Logger.Error("ListTimeOffRequests: service error", "error", err, "actor_id", actor.ID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, requests)
}

func (h *Handler) ListAuthorizationRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("ListAuthorizationRequests: user not found in context")
		h.WriteError(w, r, http.StatusUnauthorized, "error.unauthenticated")
		return
	}

	status, ok := internal.ParseStatus(r.URL.Query().Get("status"))
	if !ok {
		h.WriteError(w, r, http.StatusBadRequest, "error.validation")
		return
	}

	requests, err := h.Service.ListAuthorizationRequests(r.Context(), actor, status)
	if err != nil {
		h.Logger.Error("ListAuthorizationRequests: service error", "error", err, "actor_id", actor.ID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, requests)
}

// Decide routes PUT /user/requests by its type query: vacation decisions act
// on calendar entries, authorization decisions on pending accounts.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("Decide: user not found in context")
		h.WriteError(w, r, http.StatusUnauthorized, "error.unauthenticated")
		return
	}

	var dto DecisionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Decide: invalid request body", "error", err)
		h.WriteError(w, r, http.StatusBadRequest, "error.validation")
		return
	}

	status, ok := internal.ParseStatus(dto.Status)
	if !ok || status == nil {
		h.WriteError(w, r, http.StatusBadRequest, "error.validation")
		return
	}

	switch r.URL.Query().Get("type") {
	case "vacation":
		if err := h.Service.DecideTimeOff(r.Context(), actor, dto.ID, *status); err != nil {
			h.Logger.Error("Decide: time-off decision failed", "error", err, "actor_id", actor.ID, "entry_id", dto.ID)
			h.HandleServiceError(w, r, err)
			return
		}
	case "authorization":
		var role user.Role
		if dto.Role != "" {
			parsed, ok := user.ParseRole(dto.Role)
			if !ok {
				h.WriteError(w, r, http.StatusBadRequest, "error.validation")
				return
			}
			role = parsed
		}
		if err := h.Service.DecideAuthorization(r.Context(), actor, dto.ID, *status, role); err != nil {
			h.Logger.Error("Decide: authorization decision failed", "error", err, "actor_id", actor.ID, "user_id", dto.ID)
			h.HandleServiceError(w, r, err)
			return
		}
	default:
		h.WriteError(w, r, http.StatusBadRequest, "error.validation")
		return
	}

	h.Logger.Info("Decide: request decided", "actor_id", actor.ID, "id", dto.ID, "status", *status)
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
