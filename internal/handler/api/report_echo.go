package api

import (
	"errors"
	"net/http"
	"time"

	"CryptoPulse/internal/domain/models"
	domrepo "CryptoPulse/internal/domain/repository"
	"CryptoPulse/internal/repository"
	"CryptoPulse/internal/usecase"
	xhttp "CryptoPulse/pkg/http"
	xlogger "CryptoPulse/pkg/logger"
	"CryptoPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// snapshotWindow is the look-back used when a snapshot query omits from.
const snapshotWindow = 24 * time.Hour

// StatusSource exposes the scheduler's current state.
type StatusSource interface {
	State() usecase.State
	LastReport() *models.TickReport
}

type healthResponse struct {
	Status   string     `json:"status"`
	State    string     `json:"state"`
	LastTick uint64     `json:"last_tick"`
	LastAt   *time.Time `json:"last_at,omitempty"`
	LastErr  string     `json:"last_error,omitempty"`
}

// ReportEchoHandler serves the latest analysis and the snapshot archive.
type ReportEchoHandler struct {
	logger    *xlogger.Logger
	status    StatusSource
	reports   domrepo.ReportCache
	snapshots domrepo.SnapshotStore
	hub       *StreamHub
	now       func() time.Time
}

// NewReportEchoHandler wires the handler. snapshots and hub may be nil when those features are disabled.
func NewReportEchoHandler(
	logger *xlogger.Logger,
	status StatusSource,
	reports domrepo.ReportCache,
	snapshots domrepo.SnapshotStore,
	hub *StreamHub,
) *ReportEchoHandler {
	return &ReportEchoHandler{
		logger:    logger,
		status:    status,
		reports:   reports,
		snapshots: snapshots,
		hub:       hub,
		now:       time.Now,
	}
}

func (h *ReportEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/report", h.Report)
	g.GET("/quotes/:id", h.Quote)
	g.GET("/suggestions", h.Suggestions)
	g.GET("/snapshots/:id", h.Snapshots)

	if h.hub != nil {
		e.GET("/ws/reports", h.hub.ServeWS)
	}
}

func (h *ReportEchoHandler) Health(c echo.Context) error {
	res := healthResponse{Status: "ok", State: h.status.State().String()}
	if last := h.status.LastReport(); last != nil {
		at := last.At
		res.LastTick = last.Tick
		res.LastAt = &at
		res.LastErr = last.Err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ReportEchoHandler) Report(c echo.Context) error {
	r, err := h.reports.Latest(c.Request().Context())
	if err != nil {
		return h.fail(c, "report", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, r)
}

func (h *ReportEchoHandler) Quote(c echo.Context) error {
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	row, err := h.reports.Asset(c.Request().Context(), req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNoReport) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no quote for %q", req.ID).WithParam("id", req.ID))
		}
		return h.fail(c, "quote", err)
	}
	return xhttp.SuccessResponse(c, row)
}

func (h *ReportEchoHandler) Suggestions(c echo.Context) error {
	r, err := h.reports.Latest(c.Request().Context())
	if err != nil {
		return h.fail(c, "suggestions", err)
	}
	rows := r.Suggestions
	if rows == nil {
		rows = []models.Suggestion{}
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *ReportEchoHandler) Snapshots(c echo.Context) error {
	if h.snapshots == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotImplementedError("snapshot archive is disabled"))
	}

	req := &models.SnapshotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	from, to, err := util.ResolveRange(req.From, req.To, h.now().UTC(), snapshotWindow)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("%s", err.Error()))
	}

	rows, err := h.snapshots.Query(c.Request().Context(), req.ID, from, to, req.Limit)
	if err != nil {
		h.logger.Error("snapshot query failed", xlogger.String("asset", req.ID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("snapshot archive unavailable").WithError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *ReportEchoHandler) fail(c echo.Context, op string, err error) error {
	if errors.Is(err, repository.ErrNoReport) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no report yet"))
	}
	h.logger.Error("report cache read failed", xlogger.String("op", op), xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.UnavailableError("report cache unavailable").WithError(err))
}
