package fileio

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/danekja/ymanager/internal/transport"
	"github.com/danekja/ymanager/internal/user"
)

// maxImportSize bounds the accepted workbook upload.
const maxImportSize = 10 << 20

type ServiceAPI interface {
	ImportStaff(ctx context.Context, actor *user.User, r io.Reader) (*ImportResult, error)
	ExportOverview(ctx context.Context, actor *user.User) (filename string, pdfBytes []byte, err error)
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

func (h *Handler) ImportXLS(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("ImportXLS: user not found in context")
		h.WriteError(w, r, http.StatusUnauthorized, "error.unauthenticated")
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		h.Logger.Warn("ImportXLS: invalid multipart body", "error", err)
		h.WriteError(w, r, http.StatusBadRequest, "error.validation")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		h.Logger.Warn("ImportXLS: missing file part", "error", err)
		h.WriteError(w, r, http.StatusBadRequest, "error.validation")
		return
	}
	defer file.Close()

	result, err := h.Service.ImportStaff(r.Context(), actor, file)
	if err != nil {
		h.Logger.Error("ImportXLS: service error", "error", err, "actor_id", actor.ID)
		h.HandleServiceError(w, r, err)
		return
	}

	h.Logger.Info("ImportXLS: import completed", "actor_id", actor.ID, "created", result.Created, "updated", result.Updated)
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.FromContext(r.Context())
	if !ok || actor == nil {
		h.Logger.Error("ExportPDF: user not found in context")
		h.WriteError(w, r, http.StatusUnauthorized, "error.unauthenticated")
		return
	}

	filename, pdfBytes, err := h.Service.ExportOverview(r.Context(), actor)
	if err != nil {
		h.Logger.Error("ExportPDF: service error", "error", err, "actor_id", actor.ID)
		h.HandleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdfBytes); err != nil {
		h.Logger.Error("ExportPDF: failed to write response", "error", err)
	}
}
