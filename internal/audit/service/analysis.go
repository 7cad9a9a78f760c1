package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/punchaudit/punchaudit-backend/internal/audit/calendar"
	"github.com/punchaudit/punchaudit-backend/internal/audit/domain"
	"github.com/punchaudit/punchaudit-backend/internal/audit/engine"
	"github.com/punchaudit/punchaudit-backend/internal/audit/ingest"
	"github.com/punchaudit/punchaudit-backend/internal/audit/report"
	"github.com/punchaudit/punchaudit-backend/internal/audit/repository"
	"github.com/punchaudit/punchaudit-backend/pkg/errors"
	"github.com/punchaudit/punchaudit-backend/pkg/logger"
)

// ReportPath is the download route prefix; the run id is appended.
const ReportPath = "/api/v1/payroll/report/"

// Renderer turns a result into report bytes.
type Renderer interface {
	Render(res *domain.AnalysisResult) ([]byte, error)
}

// RunStore persists run summaries.
type RunStore interface {
	Create(ctx context.Context, run *repository.Run) error
	GetByID(ctx context.Context, id string) (*repository.Run, error)
	List(ctx context.Context, limit, offset int) ([]*repository.Run, int, error)
}

// EventPublisher announces finished runs.
type EventPublisher interface {
	PublishAnalysisCompleted(ctx context.Context, res *domain.AnalysisResult, sourceFilename string, reportAvailable bool)
}

// AnalyzeRequest is one uploaded file plus its window.
type AnalyzeRequest struct {
	Filename        string
	File            io.Reader
	StartDate       string
	EndDate         string
	ExcludeHolidays string
	RequestedBy     string
}

// AnalyzeResponse is the result with a download link when a report was stored.
type AnalyzeResponse struct {
	*domain.AnalysisResult
	DownloadURL *string `json:"download_url"`
}

// AnalysisService handles punch analysis runs
type AnalysisService struct {
	policy   domain.Policy
	calendar *calendar.Calendar
	renderer Renderer
	reports  report.Store
	runs     RunStore
	events   EventPublisher
	logger   *logger.Logger
	newID    func() string
}

// NewAnalysisService creates a new analysis service. runs and events may be
// nil when history or messaging is switched off.
func NewAnalysisService(
	policy domain.Policy,
	cal *calendar.Calendar,
	renderer Renderer,
	reports report.Store,
	runs RunStore,
	events EventPublisher,
	log *logger.Logger,
) *AnalysisService {
	if cal == nil {
		cal = calendar.Empty()
	}
	return &AnalysisService{
		policy:   policy,
		calendar: cal,
		renderer: renderer,
		reports:  reports,
		runs:     runs,
		events:   events,
		logger:   log,
		newID:    NewRunID,
	}
}

// NewRunID returns "req_" followed by 12 lowercase hex characters.
func NewRunID() string {
	return "req_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// ParseWindow builds a validated window from form values. Holidays are a
// comma separated list of dates; blanks are ignored.
func ParseWindow(startDate, endDate, excludeHolidays string) (domain.Window, error) {
	start, err := domain.ParseDate(strings.TrimSpace(startDate))
	if err != nil {
		return domain.Window{}, fmt.Errorf("start_date: %w", err)
	}
	end, err := domain.ParseDate(strings.TrimSpace(endDate))
	if err != nil {
		return domain.Window{}, fmt.Errorf("end_date: %w", err)
	}

	var excluded []domain.Date
	for _, part := range strings.Split(excludeHolidays, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := domain.ParseDate(part)
		if err != nil {
			return domain.Window{}, fmt.Errorf("exclude_holidays: %w", err)
		}
		excluded = append(excluded, d)
	}

	w := domain.NewWindow(start, end, excluded...)
	if err := w.Validate(); err != nil {
		return domain.Window{}, err
	}
	return w, nil
}

// Analyze reads the upload, runs the engine and stores the report. Input
// problems come back as 400 errors. Report, history and event failures only
// degrade the response.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	runID := s.newID()
	log := s.logger.WithRunID(runID)
	log.Info().Str("filename", req.Filename).Msg("analyze request received")

	if strings.TrimSpace(req.Filename) == "" || req.File == nil {
		return nil, errors.BadRequest("no file provided")
	}

	window, err := ParseWindow(req.StartDate, req.EndDate, req.ExcludeHolidays)
	if err != nil {
		return nil, errors.BadRequestFrom(err)
	}
	for _, d := range s.calendar.Between(window.Start, window.End) {
		window.Excluded[d] = struct{}{}
	}

	table, err := ingest.Read(req.Filename, req.File)
	if err != nil {
		log.Warn().Err(err).Msg("upload rejected")
		return nil, errors.BadRequestFrom(err)
	}

	res, err := engine.Run(domain.Input{
		RunID:  runID,
		Header: table.Header,
		Rows:   table.Rows,
		Window: window,
		Policy: s.policy,
	})
	if err != nil {
		if stderrors.Is(err, engine.ErrSchema) || stderrors.Is(err, engine.ErrInvalidRange) {
			log.Warn().Err(err).Msg("analysis rejected")
			return nil, errors.BadRequestFrom(err)
		}
		return nil, err
	}

	log.Info().
		Int("rows_received", res.Summary.RowsReceived).
		Int("rows_after_filter", res.Summary.RowsAfterFilter).
		Int("employees", res.Summary.Employees).
		Int("warnings", len(res.Warnings)).
		Msg("analysis complete")

	resp := &AnalyzeResponse{AnalysisResult: res}
	if err := s.storeReport(ctx, res); err != nil {
		log.Error().Err(err).Msg("report generation failed")
		res.Warnings = append(res.Warnings, "report generation failed: "+err.Error())
	} else {
		url := ReportPath + runID
		resp.DownloadURL = &url
	}

	s.recordRun(ctx, log, res, req, resp.DownloadURL != nil)
	if s.events != nil {
		s.events.PublishAnalysisCompleted(ctx, res, req.Filename, resp.DownloadURL != nil)
	}

	return resp, nil
}

func (s *AnalysisService) storeReport(ctx context.Context, res *domain.AnalysisResult) error {
	if s.renderer == nil || s.reports == nil {
		return stderrors.New("report storage is not configured")
	}
	data, err := s.renderer.Render(res)
	if err != nil {
		return err
	}
	return s.reports.Save(ctx, res.RequestID, data)
}

func (s *AnalysisService) recordRun(ctx context.Context, log *logger.Logger, res *domain.AnalysisResult, req AnalyzeRequest, reportAvailable bool) {
	if s.runs == nil {
		return
	}
	run := repository.NewRun(res, req.Filename, reportAvailable, req.RequestedBy)
	if err := s.runs.Create(ctx, run); err != nil {
		log.Error().Err(err).Msg("failed to record analysis run")
	}
}

// OpenReport returns the stored report for id and its download filename.
func (s *AnalysisService) OpenReport(ctx context.Context, id string) ([]byte, string, error) {
	if s.reports == nil || !report.ValidID(id) {
		return nil, "", reportNotFound()
	}
	data, err := s.reports.Open(ctx, id)
	if stderrors.Is(err, report.ErrReportNotFound) {
		return nil, "", reportNotFound()
	}
	if err != nil {
		return nil, "", err
	}
	return data, report.Filename(id), nil
}

func reportNotFound() *errors.AppError {
	return errors.Wrap(errors.ErrNotFound, errors.CodeNotFound, "report not found (it may have expired or generation failed)", http.StatusNotFound)
}

// GetRun returns the stored summary of one run.
func (s *AnalysisService) GetRun(ctx context.Context, id string) (*repository.Run, error) {
	if s.runs == nil {
		return nil, historyDisabled()
	}
	return s.runs.GetByID(ctx, id)
}

// ListRuns returns stored run summaries newest first.
func (s *AnalysisService) ListRuns(ctx context.Context, limit, offset int) ([]*repository.Run, int, error) {
	if s.runs == nil {
		return nil, 0, historyDisabled()
	}
	return s.runs.List(ctx, limit, offset)
}

func historyDisabled() *errors.AppError {
	return errors.Unavailable("run history is disabled")
}
