package membership

import (
	"errors"

	"roster-sync/core/logger"
	"roster-sync/core/middleware/rayid"
	"roster-sync/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for membership reconciliation.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the membership routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/membership")
	group.Get("/plan", h.HandlePlan)
	group.Post("/sync", h.HandleSync)
	group.Get("/drift", h.HandleDrift)
	group.Get("/reports", h.HandleListReports)
	group.Get("/reports/:name", h.HandleGetReport)
}

// HandlePlan computes the operations a sync would apply.
// @Summary Plan Sync
// @Description Loads both snapshots and reconciles them in dry-run mode.
// @Tags membership
// @Produce json
// @Success 200 {object} Report
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /membership/plan [get]
func (h *Handler) HandlePlan(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	report, err := h.service.Plan(c.Context())
	if err != nil {
		l.Error("Plan failed", zap.Error(err))
		return runError(c, err)
	}

	return c.JSON(report)
}

// HandleSync applies the operations to the mailing list.
// @Summary Run Sync
// @Description Reconciles the mailing list with the roster. Requires confirm=true.
// @Tags membership
// @Produce json
// @Param confirm query boolean true "Confirm the live run"
// @Success 200 {object} Report
// @Failure 400 {object} map[string]string "Confirmation required"
// @Failure 409 {object} map[string]string "Conflicting records"
// @Failure 502 {object} map[string]string "Mailing list rejected an operation"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /membership/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	if c.Query("confirm") != "true" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Confirmation required",
			"hint":  "Review GET /membership/plan, then repeat with ?confirm=true",
		})
	}

	l.Info("Starting live sync")
	report, err := h.service.Run(c.Context(), false)
	if err != nil {
		l.Error("Sync failed", zap.Error(err))
		return runError(c, err)
	}

	return c.JSON(report)
}

// HandleDrift reports differences between the roster and the mailing list.
// @Summary Drift Report
// @Tags membership
// @Produce json
// @Success 200 {object} reconcile.Drift
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /membership/drift [get]
func (h *Handler) HandleDrift(c *fiber.Ctx) error {
	drift, err := h.service.Drift(c.Context())
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Drift failed", zap.Error(err))
		return runError(c, err)
	}
	return c.JSON(drift)
}

// HandleListReports lists archived run reports, newest first.
// @Summary List Reports
// @Tags membership
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Archive disabled"
// @Router /membership/reports [get]
func (h *Handler) HandleListReports(c *fiber.Ctx) error {
	archive := h.service.Archive()
	if archive == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report archive disabled"})
	}

	names, err := archive.List(c.Context())
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Listing reports failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"reports": names})
}

// HandleGetReport returns one archived report.
// @Summary Get Report
// @Tags membership
// @Produce json
// @Param name path string true "Report name"
// @Success 200 {object} Report
// @Failure 404 {object} map[string]string "Not Found"
// @Router /membership/reports/{name} [get]
func (h *Handler) HandleGetReport(c *fiber.Ctx) error {
	archive := h.service.Archive()
	if archive == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report archive disabled"})
	}

	data, err := archive.Get(c.Context(), c.Params("name"))
	if errors.Is(err, ErrReportNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Report not found"})
	}
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Reading report failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}

// runError maps a failed run onto a response. Rejections by the mailing list
// carry the failing operation; conflicting records in either snapshot are a 409.
func runError(c *fiber.Ctx, err error) error {
	body := fiber.Map{"error": err.Error(), "ray_id": rayid.Get(c)}

	var mutationErr *reconcile.MutationError
	switch {
	case errors.As(err, &mutationErr):
		body["operation"] = mutationErr.Op
		body["applied"] = mutationErr.Applied
		return c.Status(fiber.StatusBadGateway).JSON(body)
	case reconcile.IsDuplicateKey(err):
		return c.Status(fiber.StatusConflict).JSON(body)
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}
