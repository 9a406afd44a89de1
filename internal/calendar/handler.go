package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/danekja/ymanager/internal"
	"github.com/danekja/ymanager/internal/transport"
	"github.com/danekja/ymanager/internal/user"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateEntry(ctx context.Context, actor *user.User, dto CreateEntryDTO) (*Entry, error)
	UpdateEntry(ctx context.Context, actor *user.User, dto UpdateEntryDTO) (*Entry, error)
	DeleteEntry(ctx context.Context, actor *user.User, entryID int64) error
	ListEntries(ctx context.Context, actor *user.User, ownerID int64, from time.Time, to *time.Time, status *internal.Status) ([]*Entry, error)
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

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("ListEntries: user not found in context")
		h.WriteError(w, r, http.StatusUnauthorized, "error.unauthenticated")
		return
	}

	ownerID, err := h.ResolveUserID(chi.URLParam(r, "id"), actor.ID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	from, err := ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		h.WriteError(w, r, http.StatusBadRequest, "error.validation")
		return
	}

	var to *time.Time
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := ParseDate(raw)
		if err != nil {
			h.WriteError(w, r, http.StatusBadRequest, "error.validation")
			return
		}
		to = &t
	}

	status, ok := internal.ParseStatus(r.URL.Query().Get("status"))
	if !ok {
		h.WriteError(w, r, http.StatusBadRequest, "error.validation")
		return
	}

	entries, err := h.Service.ListEntries(r.Context(), actor, ownerID, from, to, status)
	if err != nil {
		h.Logger.Error("ListEntries: service error", "error", err, "actor_id", actor.ID, "owner_id", ownerID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToDTOSlice(entries))
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("CreateEntry: user not found in context")
		h.WriteError(w, r, http.StatusUnauthorized, "error.unauthenticated")
		return
	}

	var dto CreateEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateEntry: invalid request body", "error", err)
		h.WriteError(w, r, http.StatusBadRequest, "error.validation")
		return
	}

	entry, err := h.Service.CreateEntry(r.Context(), actor, dto)
	if err != nil {
		h.Logger.Error("CreateEntry: service error", "error", err, "actor_id", actor.ID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.Logger.Info("CreateEntry: entry created",
		"entry_id", entry.ID,
		"owner_id", entry.OwnerID,
		"type", entry.Kind,
		"status", entry.Status)

	h.WriteJSON(w, http.StatusOK, ToDTO(entry))
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("UpdateEntry: user not found in context")
		h.WriteError(w, r, http.StatusUnauthorized, "error.unauthenticated")
		return
	}

	var dto UpdateEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateEntry: invalid request body", "error", err)
		h.WriteError(w, r, http.StatusBadRequest, "error.validation")
		return
	}

	entry, err := h.Service.UpdateEntry(r.Context(), actor, dto)
	if err != nil {
		h.Logger.Error("UpdateEntry: service error", "error", err, "actor_id", actor.ID, "entry_id", dto.ID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToDTO(entry))
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("DeleteEntry: user not found in context")
		h.WriteError(w, r, http.StatusUnauthorized, "error.unauthenticated")
		return
	}

	entryID, err := h.ResolveEntityID(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.DeleteEntry(r.Context(), actor, entryID); err != nil {
		h.Logger.Error("DeleteEntry: service error", "error", err, "actor_id", actor.ID, "entry_id", entryID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.Logger.Info("DeleteEntry: entry removed or rejected", "entry_id", entryID, "actor_id", actor.ID)
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
