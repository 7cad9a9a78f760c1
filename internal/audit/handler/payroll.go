package handler

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/punchaudit/punchaudit-backend/internal/audit/report"
	"github.com/punchaudit/punchaudit-backend/internal/audit/repository"
	"github.com/punchaudit/punchaudit-backend/internal/audit/service"
	"github.com/punchaudit/punchaudit-backend/pkg/errors"
	"github.com/punchaudit/punchaudit-backend/pkg/httputil"
	"github.com/punchaudit/punchaudit-backend/pkg/logger"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	// multipartMemory is how much of an upload is held in memory before
	// spilling to a temp file.
	multipartMemory = 8 << 20
)

// AnalysisService is what the payroll endpoints need from the service layer.
type AnalysisService interface {
	Analyze(ctx context.Context, req service.AnalyzeRequest) (*service.AnalyzeResponse, error)
	OpenReport(ctx context.Context, id string) ([]byte, string, error)
	GetRun(ctx context.Context, id string) (*repository.Run, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*repository.Run, int, error)
}

// PayrollHandler handles payroll analysis endpoints
type PayrollHandler struct {
	service        AnalysisService
	maxUploadBytes int64
	logger         *logger.Logger
}

// NewPayrollHandler creates a new payroll handler. maxUploadBytes <= 0 disables the limit.
func NewPayrollHandler(svc AnalysisService, maxUploadBytes int64, log *logger.Logger) *PayrollHandler {
	return &PayrollHandler{
		service:        svc,
		maxUploadBytes: maxUploadBytes,
		logger:         log,
	}
}

// AnalyzeForm is the multipart form of an analyze request, minus the file.
type AnalyzeForm struct {
	StartDate       string `form:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string `form:"end_date" validate:"required,datetime=2006-01-02"`
	ExcludeHolidays string `form:"exclude_holidays"`
}

// Analyze runs an analysis over an uploaded punch export
func (h *PayrollHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			httputil.Error(w, errors.TooLarge(h.maxUploadBytes))
			return
		}
		httputil.Error(w, errors.BadRequest("expected a multipart/form-data upload"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	form := AnalyzeForm{
		StartDate:       r.FormValue("start_date"),
		EndDate:         r.FormValue("end_date"),
		ExcludeHolidays: r.FormValue("exclude_holidays"),
	}
	if err := httputil.Validate(form); err != nil {
		httputil.Error(w, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.Error(w, errors.Validation(map[string]string{"file": "this field is required"}))
		return
	}
	defer file.Close()

	resp, err := h.service.Analyze(r.Context(), service.AnalyzeRequest{
		Filename:        header.Filename,
		File:            file,
		StartDate:       form.StartDate,
		EndDate:         form.EndDate,
		ExcludeHolidays: form.ExcludeHolidays,
		RequestedBy:     httputil.GetSubject(r.Context()),
	})
	if err != nil {
		h.logger.WithRequestID(httputil.GetRequestID(r.Context())).Warn().Err(err).Msg("analysis failed")
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, resp)
}

// DownloadReport streams the xlsx report of a run
func (h *PayrollHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")

	data, filename, err := h.service.OpenReport(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Attachment(w, filename, report.ContentType, data)
}

// ListRuns lists stored runs, newest first
func (h *PayrollHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > maxListLimit {
		limit = defaultListLimit
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	runs, total, err := h.service.ListRuns(r.Context(), limit, offset)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONWithMeta(w, http.StatusOK, runs, &httputil.Meta{
		Limit:  limit,
		Offset: offset,
		Count:  total,
	})
}

// GetRun gets one stored run
func (h *PayrollHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")

	run, err := h.service.GetRun(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, run)
}
