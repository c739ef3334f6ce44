package handlers

import (
	"context"
	"net/http"

	"github.com/xavierca1/ligue-leads/internal/usecase"
)

type Recalculator interface {
	Execute(ctx context.Context, input usecase.RecalculateInput) (*usecase.RecalculateOutput, error)
}

type Tagger interface {
	Execute(ctx context.Context, input usecase.ApplyTagInput) (*usecase.ApplyTagOutput, error)
}

type Syncer interface {
	Execute(ctx context.Context, input usecase.SyncLeadsInput) (*usecase.SyncLeadsOutput, error)
}

// BulkHandler serves the operations that act on many leads at once.
type BulkHandler struct {
	recalculate Recalculator
	tag         Tagger
	sync        Syncer
}

func NewBulkHandler(recalculate Recalculator, tag Tagger, sync Syncer) *BulkHandler {
	return &BulkHandler{recalculate: recalculate, tag: tag, sync: sync}
}

// Recalculate handles POST /leads/recalculate. An empty body rescores every
// lead.
func (h *BulkHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	var input usecase.RecalculateInput
	if r.ContentLength != 0 && !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.recalculate.Execute(r.Context(), input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *BulkHandler) ApplyTag(w http.ResponseWriter, r *http.Request) {
	var input usecase.ApplyTagInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.tag.Execute(r.Context(), input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Sync answers 202: the queue worker performs the uploads.
func (h *BulkHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var input usecase.SyncLeadsInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.sync.Execute(r.Context(), input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, out)
}
