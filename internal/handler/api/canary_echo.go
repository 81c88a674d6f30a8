package api

import (
	"context"
	"errors"
	"net/http"

	"TreasureEngine/internal/domain/models"
	"TreasureEngine/internal/services/calibration"
	"TreasureEngine/internal/services/riskfortress"
	"TreasureEngine/internal/usecase"
	"TreasureEngine/pkg/clock"
	xhttp "TreasureEngine/pkg/http"
	"TreasureEngine/pkg/http/middleware"
	xlogger "TreasureEngine/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RunLister lists archived runs, newest first.
type RunLister interface {
	List(ctx context.Context, limit int) ([]models.ReportSummary, error)
}

// RunEnqueuer hands run requests to the asynchronous worker queue.
type RunEnqueuer interface {
	PublishMessage(ctx context.Context, msgType string, payload interface{}) (string, error)
}

// CanaryEchoHandler serves canary runs and the stateless risk and execution helpers.
type CanaryEchoHandler struct {
	logger  *xlogger.Logger
	svc     *usecase.CanaryService
	archive RunLister
	limiter middleware.Allower
	queue   RunEnqueuer
}

func NewCanaryEchoHandler(logger *xlogger.Logger, svc *usecase.CanaryService, archive RunLister, limiter middleware.Allower) *CanaryEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &CanaryEchoHandler{logger: logger, svc: svc, archive: archive, limiter: limiter}
}

// SetQueue enables POST /api/canary/runs/async.
func (h *CanaryEchoHandler) SetQueue(q RunEnqueuer) { h.queue = q }

func (h *CanaryEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/canary")
	g.POST("/runs", h.CreateRun, middleware.RateLimit(h.limiter))
	g.POST("/runs/async", h.EnqueueRun, middleware.RateLimit(h.limiter))
	g.GET("/runs", h.ListRuns)
	g.GET("/runs/:fingerprint", h.GetRun)
	g.GET("/reason-codes", h.ReasonCodes)
	g.GET("/scenarios", h.Scenarios)

	r := e.Group("/api/risk")
	r.GET("/crisis-suite", h.CrisisSuite)
	r.POST("/assess", h.Assess)

	x := e.Group("/api/execution")
	x.POST("/partial-fill", h.PartialFill)
	x.POST("/freshness", h.Freshness)
	x.POST("/calibrate", h.Calibrate)
}

func (h *CanaryEchoHandler) CreateRun(c echo.Context) error {
	req := h.svc.NewRequest()
	if verr := xhttp.ReadAndValidateRequest(c, &req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if req.RequestID == "" {
		req.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)
	}
	run, err := h.svc.Execute(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, "canary run", err)
	}
	return xhttp.CreatedResponse(c, run)
}

// EnqueueRun validates the config and queues the request, answering 202 with the message id.
func (h *CanaryEchoHandler) EnqueueRun(c echo.Context) error {
	if h.queue == nil {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("QUEUE_DISABLED", "", "asynchronous runs are not enabled", http.StatusServiceUnavailable))
	}
	req := h.svc.NewRequest()
	if verr := xhttp.ReadAndValidateRequest(c, &req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if _, err := usecase.ValidateRunConfig(req.Config); err != nil {
		return h.fail(c, "enqueue canary run", err)
	}
	if req.RequestID == "" {
		req.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)
	}
	id, err := h.queue.PublishMessage(c.Request().Context(), usecase.CanaryRunJobType, req)
	if err != nil {
		return h.fail(c, "enqueue canary run", err)
	}
	return xhttp.DataResponse(c, http.StatusAccepted, map[string]string{
		"message_id": id,
		"request_id": req.RequestID,
	})
}

func (h *CanaryEchoHandler) GetRun(c echo.Context) error {
	run, err := h.svc.Get(c.Request().Context(), c.Param("fingerprint"))
	if err != nil {
		return h.fail(c, "get canary run", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=300")
	return xhttp.SuccessResponse(c, run)
}

func (h *CanaryEchoHandler) ListRuns(c echo.Context) error {
	req := &models.ListRunsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.archive == nil {
		return xhttp.ListResponse(c, []models.ReportSummary{}, 0)
	}
	rows, err := h.archive.List(c.Request().Context(), req.Limit)
	if err != nil {
		return h.fail(c, "list canary runs", err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *CanaryEchoHandler) ReasonCodes(c echo.Context) error {
	codes := models.ReasonCodes()
	return xhttp.ListResponse(c, codes, int64(len(codes)))
}

func (h *CanaryEchoHandler) Scenarios(c echo.Context) error {
	sc := models.Scenarios()
	return xhttp.ListResponse(c, sc, int64(len(sc)))
}

func (h *CanaryEchoHandler) CrisisSuite(c echo.Context) error {
	req := &models.CrisisSuiteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, riskfortress.GenerateDeterministicCrisisSuite(req.Seed))
}

func (h *CanaryEchoHandler) Assess(c echo.Context) error {
	req := &models.RiskAssessRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, riskfortress.ApplyRiskFortress(req.Input()))
}

func (h *CanaryEchoHandler) PartialFill(c echo.Context) error {
	req := &models.PartialFillRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	pf, err := calibration.DeterministicPartialFill(req.OrderNotional, req.ADV)
	if err != nil {
		return h.fail(c, "partial fill", err)
	}
	return xhttp.SuccessResponse(c, pf)
}

func (h *CanaryEchoHandler) Freshness(c echo.Context) error {
	req := &models.FreshnessRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	f, err := calibration.ScoreSignalFreshness(req.Signal, clock.Fixed(req.NowMs))
	if err != nil {
		return h.fail(c, "signal freshness", err)
	}
	return xhttp.SuccessResponse(c, f)
}

func (h *CanaryEchoHandler) Calibrate(c echo.Context) error {
	req := &models.CalibrateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := calibration.Calibrate(req.Fills, req.Seed, req.Strict)
	if err != nil {
		return h.fail(c, "calibrate", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *CanaryEchoHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", xlogger.Error(err))
	} else {
		h.logger.Debug(op+" rejected", xlogger.String("code", appErr.Code), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// toAppError maps coded domain errors onto HTTP statuses. Uncoded errors become 500.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	code := models.CodeOf(err)
	var status int
	switch code {
	case "":
		return xhttp.InternalErrorf("internal error").WithError(err)
	case models.ErrCodeNetworkDisabled, models.CodeFailOverfitUnknown:
		status = http.StatusForbidden
	case models.ErrCodeReportNotFound:
		status = http.StatusNotFound
	case models.ErrCodeSourceUnavailable:
		status = http.StatusServiceUnavailable
	case models.ErrCodePaperSessionFailed:
		status = http.StatusInternalServerError
	default:
		status = http.StatusBadRequest
	}
	return xhttp.NewAppError(code, "", err.Error(), status).WithError(err)
}
