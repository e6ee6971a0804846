package pairsync

import (
	"context"
	"errors"

	"github.com/carboneio/sclone/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the sync service.
type Handler struct {
	ctx     context.Context
	service *Service
}

// NewHandler creates a new HTTP handler. Triggered cycles run under ctx.
func NewHandler(ctx context.Context, service *Service) *Handler {
	return &Handler{ctx: ctx, service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Get("/status", h.HandleStatus)
	group.Post("/run", h.HandleRun)
	group.Get("/runs", h.HandleRuns)
}

// StatusResponse is returned by the status endpoint.
type StatusResponse struct {
	Pair    string  `json:"pair"`
	Mode    string  `json:"mode"`
	Delete  bool    `json:"delete"`
	Running bool    `json:"running"`
	Last    *Report `json:"last,omitempty"`
}

// HandleStatus returns the running flag and the last report.
// @Summary Sync Status
// @Description Returns whether a cycle is running and the report of the latest cycle.
// @Tags sync
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /sync/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	p := h.service.Pair()
	return c.JSON(StatusResponse{
		Pair:    p.Name,
		Mode:    string(p.Policy.Mode),
		Delete:  p.Policy.Deletion,
		Running: h.service.Running(),
		Last:    h.service.LastReport(),
	})
}

// HandleRun triggers a cycle in the background.
// @Summary Trigger Sync
// @Description Starts a sync cycle asynchronously.
// @Tags sync
// @Produce json
// @Success 202 {object} map[string]string "Accepted"
// @Failure 409 {object} map[string]string "Already running"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/run [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	err := h.service.Trigger(h.ctx)
	switch {
	case errors.Is(err, ErrAlreadyRunning):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		l.Error("Failed to trigger sync", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Sync triggered")
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
}

// HandleRuns lists the latest recorded cycles.
// @Summary Sync History
// @Description Lists the latest cycles, newest first. Requires the database.
// @Tags sync
// @Produce json
// @Param limit query int false "Number of runs (default 20)"
// @Success 200 {array} history.Run
// @Failure 501 {object} map[string]string "History disabled"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/runs [get]
func (h *Handler) HandleRuns(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	runs, err := h.service.Recent(c.Context(), c.QueryInt("limit", 0))
	switch {
	case errors.Is(err, ErrHistoryDisabled):
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		l.Error("Failed to list sync runs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(runs)
}
