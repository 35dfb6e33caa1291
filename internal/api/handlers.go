package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"flightperf/internal/engine"
	"flightperf/internal/export"
	"flightperf/internal/models"
	"flightperf/internal/observability"
)

type Handler struct {
	store   *engine.Store
	agg     *engine.Aggregator
	metrics *observability.Metrics
	logger  *slog.Logger
	years   []int
}

// NewHandler serves reports from whatever snapshot store holds at request
// time. years is the list offered by /api/options.
func NewHandler(store *engine.Store, agg *engine.Aggregator, metrics *observability.Metrics, logger *slog.Logger, years []int) *Handler {
	if agg == nil {
		agg = engine.NewAggregator(engine.Options{})
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, agg: agg, metrics: metrics, logger: logger, years: years}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/report", h.GetReport)
	api.GET("/report/export", h.ExportReport)
	api.GET("/options", h.GetOptions)
}

// --- RESPONSES ---

type errorResponse struct {
	Error string `json:"error"`
}

type tableResponse struct {
	Position   int                   `json:"position"`
	Metric     models.Metric         `json:"metric"`
	Dimensions []models.Dimension    `json:"dimensions"`
	Chart      models.ChartHint      `json:"chart"`
	Rows       []models.AggregateRow `json:"rows"`
}

type reportResponse struct {
	Type     models.ReportType `json:"type"`
	Label    string            `json:"label"`
	Year     int               `json:"year"`
	Source   string            `json:"source"`
	LoadedAt time.Time         `json:"loaded_at"`
	Tables   []tableResponse   `json:"tables"`
}

type reportTypeOption struct {
	Value models.ReportType `json:"value"`
	Label string            `json:"label"`
}

type optionsResponse struct {
	ReportTypes []reportTypeOption `json:"report_types"`
	Years       []int              `json:"years"`
}

// --- HANDLERS ---

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func parseRequest(c echo.Context) (models.ReportRequest, error) {
	t, err := models.ParseReportType(c.QueryParam("type"))
	if err != nil {
		return models.ReportRequest{}, err
	}
	year, err := models.ParseYear(c.QueryParam("year"))
	if err != nil {
		return models.ReportRequest{}, err
	}
	return models.ReportRequest{Type: t, Year: year}, nil
}

// build runs one report against the current snapshot. A nil dataset means
// the first load has not finished yet.
func (h *Handler) build(req models.ReportRequest) (*engine.Dataset, models.ReportResult, error) {
	ds := h.store.Snapshot()
	if ds == nil {
		return nil, models.ReportResult{}, nil
	}

	start := time.Now()
	result, err := h.agg.BuildReport(req, ds.Records)
	elapsed := time.Since(start)

	outcome := observability.OutcomeSuccess
	if err != nil {
		outcome = observability.OutcomeError
	}
	if h.metrics != nil {
		h.metrics.ReportBuilds.WithLabelValues(string(req.Type), outcome).Inc()
		h.metrics.ReportBuildDuration.WithLabelValues(string(req.Type)).Observe(elapsed.Seconds())
	}
	h.logger.Debug("report built",
		"report_type", req.Type,
		"year", req.Year,
		"outcome", outcome,
		"duration", elapsed,
	)
	return ds, result, err
}

func (h *Handler) respondBuildError(c echo.Context, err error) error {
	if errors.Is(err, engine.ErrInvalidRequest) {
		return badRequest(c, err)
	}
	return err
}

func loading(c echo.Context) error {
	return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "flight data is still loading"})
}

// GetReport returns the five tables of a (type, year) report.
func (h *Handler) GetReport(c echo.Context) error {
	req, err := parseRequest(c)
	if err != nil {
		return badRequest(c, err)
	}

	ds, result, err := h.build(req)
	if err != nil {
		return h.respondBuildError(c, err)
	}
	if ds == nil {
		return loading(c)
	}

	resp := reportResponse{
		Type:     req.Type,
		Label:    req.Type.Label(),
		Year:     req.Year,
		Source:   ds.Source,
		LoadedAt: ds.LoadedAt,
		Tables:   make([]tableResponse, 0, len(result.Tables)),
	}
	for pos, table := range result.Tables {
		hint, _ := models.ChartHintFor(req.Type, pos)
		resp.Tables = append(resp.Tables, tableResponse{
			Position:   pos + 1,
			Metric:     table.Metric,
			Dimensions: table.Dimensions,
			Chart:      hint,
			Rows:       table.Rows,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// ExportReport streams one table as CSV or the whole report as a workbook.
func (h *Handler) ExportReport(c echo.Context) error {
	req, err := parseRequest(c)
	if err != nil {
		return badRequest(c, err)
	}

	format := c.QueryParam("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		return badRequest(c, fmt.Errorf("unknown export format %q (expected csv or xlsx)", format))
	}

	pos := 1
	if s := c.QueryParam("table"); s != "" {
		pos, err = strconv.Atoi(s)
		if err != nil || pos < 1 || pos > models.ReportTables {
			return badRequest(c, fmt.Errorf("table must be between 1 and %d", models.ReportTables))
		}
	}

	ds, result, err := h.build(req)
	if err != nil {
		return h.respondBuildError(c, err)
	}
	if ds == nil {
		return loading(c)
	}

	var buf bytes.Buffer
	var filename, contentType string
	switch format {
	case "xlsx":
		if err := export.WriteXLSX(&buf, result); err != nil {
			return err
		}
		filename = fmt.Sprintf("%s_%d.xlsx", req.Type, req.Year)
		contentType = export.ContentTypeXLSX
	default:
		if err := export.WriteCSV(&buf, result.Tables[pos-1]); err != nil {
			return err
		}
		filename = fmt.Sprintf("%s_%d_%d.csv", req.Type, req.Year, pos)
		contentType = export.ContentTypeCSV
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

// GetOptions lists the report types and years the pickers offer.
func (h *Handler) GetOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, optionsResponse{
		ReportTypes: []reportTypeOption{
			{Value: models.Performance, Label: models.Performance.Label()},
			{Value: models.AverageDelay, Label: models.AverageDelay.Label()},
		},
		Years: h.years,
	})
}
