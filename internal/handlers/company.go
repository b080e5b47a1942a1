package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/uppath-hq/apiserver/internal/services"
	"github.com/uppath-hq/apiserver/types"
)

// CompanyHandler provides HTTP handlers for companies.
type CompanyHandler struct {
	companyService *services.CompanyService
}

func NewCompanyHandler(companyService *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// CompanyRouter registers company routes on the given router. Mutating
// routes require an authenticated administrator.
func CompanyRouter(
	r chi.Router,
	companyService *services.CompanyService,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewCompanyHandler(companyService)
	adminOnly := RequireAdmin(userService)

	r.Get("/", handler.ListCompanies)
	r.With(authMiddleware, adminOnly).Post("/", handler.CreateCompany)
	r.Route("/{companyID}", func(r chi.Router) {
		r.Get("/", handler.GetCompany)
		r.With(authMiddleware, adminOnly).Put("/", handler.UpdateCompany)
		r.With(authMiddleware, adminOnly).Delete("/", handler.DeleteCompany)
	})
}

func (h *CompanyHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companyService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list companies")
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

func (h *CompanyHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := parseURLID(r, "companyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	company, err := h.companyService.GetByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "failed to fetch company")
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (h *CompanyHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var in types.CompanyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	company, err := h.companyService.Create(r.Context(), in)
	if err != nil {
		writeStoreError(w, err, "failed to create company")
		return
	}
	writeJSON(w, http.StatusCreated, company)
}

func (h *CompanyHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := parseURLID(r, "companyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in types.CompanyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.companyService.Update(r.Context(), id, in); err != nil {
		writeStoreError(w, err, "failed to update company")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CompanyHandler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, err := parseURLID(r, "companyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.companyService.Delete(r.Context(), id); err != nil {
		writeStoreError(w, err, "failed to delete company")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
