package user

import (
	"context"
	"net/http"

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListUsers(ctx context.Context, actor *User, status *internal.Status) ([]*BasicProfileUser, error)
	Profile(ctx context.Context, actor *User, targetID int64) (*FullUserProfile, error)
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

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := FromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("ListUsers: user not found in context")
		h.WriteError(w, r, http.StatusUnauthorized, "error.unauthenticated")
		return
	}

	status, ok := internal.ParseStatus(r.URL.Query().Get("status"))
	if !ok {
		h.WriteError(w, r, http.StatusBadRequest, "error.validation")
		return
	}

	users, err := h.Service.ListUsers(r.Context(), actor, status)
	if err != nil {
		h.Logger.Error("ListUsers: service error", "error", err, "actor_id", actor.ID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := FromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("GetProfile: user not found in context")
		h.WriteError(w, r, http.StatusUnauthorized, "error.unauthenticated")
		return
	}

	targetID, err := h.ResolveUserID(chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	profile, err := h.Service.Profile(r.Context(), actor, targetID)
	if err != nil {
		h.Logger.Error("GetProfile: service error", "error", err, "actor_id", actor.ID, "target_id", targetID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, profile)
}
