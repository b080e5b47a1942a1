package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/uppath-hq/apiserver/internal/services"
)

// DashboardHandler exposes the read-only dashboard queries.
type DashboardHandler struct {
	dashboardService *services.DashboardService
	reportService    *services.ReportService
}

// NewDashboardHandler constructs a handler. reportService may be nil
// when no report archive backend is configured; the export endpoints
// then respond 503.
func NewDashboardHandler(dashboardService *services.DashboardService, reportService *services.ReportService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		reportService:    reportService,
	}
}

// DashboardRouter registers dashboard routes on the given router. All
// dashboard data requires authentication.
func DashboardRouter(
	r chi.Router,
	dashboardService *services.DashboardService,
	reportService *services.ReportService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewDashboardHandler(dashboardService, reportService)

	r.Use(authMiddleware)
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/wellbeing", handler.UserWellbeing)
		r.Get("/tracks", handler.UserTracks)
		r.Get("/recommendations", handler.UserRecommendations)
		r.Post("/export", handler.ExportUserReport)
		r.Get("/reports/{reportName}", handler.DownloadUserReport)
		r.Delete("/reports/{reportName}", handler.DeleteUserReport)
	})
	r.Route("/companies/{companyID}", func(r chi.Router) {
		r.Get("/career-levels", handler.CompanyCareerLevels)
		r.Get("/wellbeing", handler.CompanyWellbeing)
		r.Get("/tracks", handler.CompanyTracks)
		r.Get("/low-motivation", handler.CompanyLowMotivation)
		r.Post("/export", handler.ExportCompanyReport)
		r.Get("/reports/{reportName}", handler.DownloadCompanyReport)
		r.Delete("/reports/{reportName}", handler.DeleteCompanyReport)
	})
}

func (h *DashboardHandler) UserWellbeing(w http.ResponseWriter, r *http.Request) {
	id, err := parseURLID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	entries, err := h.dashboardService.WellbeingHistory(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query well-being history")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *DashboardHandler) UserTracks(w http.ResponseWriter, r *http.Request) {
	id, err := parseURLID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	progress, err := h.dashboardService.TrackProgress(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query track progress")
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *DashboardHandler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	id, err := parseURLID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	recommendations, err := h.dashboardService.Recommendations(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query recommendations")
		return
	}
	writeJSON(w, http.StatusOK, recommendations)
}

func (h *DashboardHandler) CompanyCareerLevels(w http.ResponseWriter, r *http.Request) {
	id, err := parseURLID(r, "companyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	counts, err := h.dashboardService.CareerLevelDistribution(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query career-level distribution")
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (h *DashboardHandler) CompanyWellbeing(w http.ResponseWriter, r *http.Request) {
	id, err := parseURLID(r, "companyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	averages, err := h.dashboardService.WellbeingAverages(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query well-being averages")
		return
	}
	writeJSON(w, http.StatusOK, averages)
}

func (h *DashboardHandler) CompanyTracks(w http.ResponseWriter, r *http.Request) {
	id, err := parseURLID(r, "companyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	usage, err := h.dashboardService.TrackPopularity(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query track popularity")
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

func (h *DashboardHandler) CompanyLowMotivation(w http.ResponseWriter, r *http.Request) {
	id, err := parseURLID(r, "companyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	flags, err := h.dashboardService.LowMotivationFlags(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query low-motivation flags")
		return
	}
	writeJSON(w, http.StatusOK, flags)
}

func (h *DashboardHandler) ExportCompanyReport(w http.ResponseWriter, r *http.Request) {
	if h.reportService == nil {
		writeError(w, http.StatusServiceUnavailable, "report archive is not configured")
		return
	}
	id, err := parseURLID(r, "companyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	key, err := h.reportService.ExportCompanyReport(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export report")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}

func (h *DashboardHandler) ExportUserReport(w http.ResponseWriter, r *http.Request) {
	if h.reportService == nil {
		writeError(w, http.StatusServiceUnavailable, "report archive is not configured")
		return
	}
	id, err := parseURLID(r, "userID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	key, err := h.reportService.ExportUserReport(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export report")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}

func (h *DashboardHandler) DownloadCompanyReport(w http.ResponseWriter, r *http.Request) {
	h.downloadReport(w, r, "companyID", h.reportService.FetchCompanyReport)
}

func (h *DashboardHandler) DownloadUserReport(w http.ResponseWriter, r *http.Request) {
	h.downloadReport(w, r, "userID", h.reportService.FetchUserReport)
}

func (h *DashboardHandler) DeleteCompanyReport(w http.ResponseWriter, r *http.Request) {
	h.removeReport(w, r, "companyID", h.reportService.RemoveCompanyReport)
}

func (h *DashboardHandler) DeleteUserReport(w http.ResponseWriter, r *http.Request) {
	h.removeReport(w, r, "userID", h.reportService.RemoveUserReport)
}

func (h *DashboardHandler) downloadReport(
	w http.ResponseWriter,
	r *http.Request,
	idParam string,
	fetch func(ctx context.Context, id int, name string) (io.ReadCloser, error),
) {
	if h.reportService == nil {
		writeError(w, http.StatusServiceUnavailable, "report archive is not configured")
		return
	}
	id, err := parseURLID(r, idParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	body, err := fetch(r.Context(), id, chi.URLParam(r, "reportName"))
	if err != nil {
		writeStoreError(w, err, "failed to fetch report")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

func (h *DashboardHandler) removeReport(
	w http.ResponseWriter,
	r *http.Request,
	idParam string,
	remove func(ctx context.Context, id int, name string) error,
) {
	if h.reportService == nil {
		writeError(w, http.StatusServiceUnavailable, "report archive is not configured")
		return
	}
	id, err := parseURLID(r, idParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := remove(r.Context(), id, chi.URLParam(r, "reportName")); err != nil {
		writeStoreError(w, err, "failed to delete report")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
