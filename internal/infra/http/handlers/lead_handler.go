package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

type LeadWriter interface {
	Create(ctx context.Context, input usecase.SaveLeadInput) (*usecase.LeadOutput, error)
	Update(ctx context.Context, input usecase.SaveLeadInput) (*usecase.LeadOutput, error)
}

type LeadReader interface {
	Get(ctx context.Context, email string) (*usecase.LeadOutput, error)
	List(ctx context.Context, input usecase.ListLeadsInput) (*usecase.ListLeadsOutput, error)
	Delete(ctx context.Context, email string) error
}

type LeadHandler struct {
	writer      LeadWriter
	reader      LeadReader
	rateLimiter *RateLimiter
}

func NewLeadHandler(writer LeadWriter, reader LeadReader) *LeadHandler {
	return &LeadHandler{
		writer:      writer,
		reader:      reader,
		rateLimiter: NewRateLimiter(30, time.Minute),
	}
}

// List handles GET /leads?search=&company=&tag=&stage=
// Close stops the rate limiter's background cleanup.
func (h *LeadHandler) Close() {
	h.rateLimiter.Stop()
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.reader.List(r.Context(), usecase.ListLeadsInput{
		Search:  q.Get("search"),
		Company: q.Get("company"),
		Tag:     q.Get("tag"),
		Stage:   entity.Stage(q.Get("stage")),
	})
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeErrorResponse(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, please try again later")
		return
	}

	var input usecase.SaveLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.writer.Create(r.Context(), input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	out, err := h.reader.Get(r.Context(), pathParam(r, "email"))
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Update handles PUT /leads/{email}. The path wins over any email in the body.
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.SaveLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.Email = pathParam(r, "email")

	out, err := h.writer.Update(r.Context(), input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.reader.Delete(r.Context(), pathParam(r, "email")); err != nil {
		writeUsecaseError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
