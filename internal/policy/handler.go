package policy

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danekja/ymanager/internal/transport"
	"github.com/danekja/ymanager/internal/user"
)

type ServiceAPI interface {
	GetDefaults(ctx context.Context, actor *user.User) ([]*Defaults, error)
	SetDefaults(ctx context.Context, actor *user.User, d *Defaults) error
	SetUserPolicy(ctx context.Context, actor *user.User, p *Policy) error
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

func (h *Handler) GetDefaults(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("GetDefaults: user not found in context")
		h.WriteError(w, r, http.StatusUnauthorized, "error.unauthenticated")
		return
	}

	defaults, err := h.Service.GetDefaults(r.Context(), actor)
	if err != nil {
		h.Logger.Error("GetDefaults: service error", "error", err, "actor_id", actor.ID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, defaultsToDTOSlice(defaults))
}

func (h *Handler) SetDefaults(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("SetDefaults: user not found in context")
		h.WriteError(w, r, http.StatusUnauthorized, "error.unauthenticated")
		return
	}

	var dto DefaultsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SetDefaults: invalid request body", "error", err)
		h.WriteError(w, r, http.StatusBadRequest, "error.validation")
		return
	}

	defaults, err := dto.ToDefaults()
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.SetDefaults(r.Context(), actor, defaults); err != nil {
		h.Logger.Error("SetDefaults: service error", "error", err, "actor_id", actor.ID, "role", dto.Role)
		h.HandleServiceError(w, r, err)
		return
	}

	h.Logger.Info("SetDefaults: defaults updated", "actor_id", actor.ID, "role", dto.Role)
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) SetUserPolicy(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("SetUserPolicy: user not found in context")
		h.WriteError(w, r, http.StatusUnauthorized, "error.unauthenticated")
		return
	}

	var dto UserPolicyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SetUserPolicy: invalid request body", "error", err)
		h.WriteError(w, r, http.StatusBadRequest, "error.validation")
		return
	}

	if err := h.Service.SetUserPolicy(r.Context(), actor, dto.ToPolicy()); err != nil {
		h.Logger.Error("SetUserPolicy: service error", "error", err, "actor_id", actor.ID, "user_id", dto.UserID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.Logger.Info("SetUserPolicy: policy updated", "actor_id", actor.ID, "user_id", dto.UserID)
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
