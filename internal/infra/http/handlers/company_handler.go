package handlers

import (
	"context"
	"net/http"

	"github.com/xavierca1/ligue-leads/internal/usecase"
)

type CompanyService interface {
	Create(ctx context.Context, input usecase.CompanyInput) (*usecase.CompanyOutput, error)
	Get(ctx context.Context, domain string) (*usecase.CompanyOutput, error)
	List(ctx context.Context, search string) ([]*usecase.CompanyOutput, error)
	Update(ctx context.Context, input usecase.CompanyInput) (*usecase.CompanyOutput, error)
	Delete(ctx context.Context, domain string) error
}

type CompanyHandler struct {
	companies CompanyService
}

func NewCompanyHandler(companies CompanyService) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.companies.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CompanyInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.companies.Create(r.Context(), input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	out, err := h.companies.Get(r.Context(), pathParam(r, "domain"))
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.CompanyInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.Domain = pathParam(r, "domain")

	out, err := h.companies.Update(r.Context(), input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Delete also removes every lead of the company.
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.companies.Delete(r.Context(), pathParam(r, "domain")); err != nil {
		writeUsecaseError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
