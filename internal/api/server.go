// Package api exposes the reconciliation engine over HTTP for the
// manual-review UI: a client posts a batch of normalized transactions plus
// any previously confirmed pairs, and receives the full TransferSet with
// per-pair reasons.
package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/transfermatch-dev/transfermatch/internal/engine"
	"github.com/transfermatch-dev/transfermatch/internal/model"
)

// Server wraps the fiber app and its dependencies.
type Server struct {
	app    *fiber.App
	engine *engine.Engine
	log    zerolog.Logger
}

// ReconcileRequest is the JSON body of POST /api/v1/reconcile.
type ReconcileRequest struct {
	Transactions []model.Transaction   `json:"transactions"`
	Seeds        []model.CandidatePair `json:"seeds,omitempty"`
}

// ReconcileResponse is the JSON response envelope.
type ReconcileResponse struct {
	Success   bool               `json:"success"`
	Error     string             `json:"error,omitempty"`
	RunID     string             `json:"run_id,omitempty"`
	Transfers *model.TransferSet `json:"transfers,omitempty"`
	Count     int                `json:"count"`
}

// NewServer creates a Server with routes registered.
func NewServer(eng *engine.Engine, log zerolog.Logger) *Server {
	s := &Server{
		app:    fiber.New(fiber.Config{DisableStartupMessage: true}),
		engine: eng,
		log:    log,
	}

	s.app.Use(s.requestID)
	s.app.Get("/api/v1/health", s.handleHealth)
	s.app.Post("/api/v1/reconcile", s.handleReconcile)

	return s
}

// Listen starts serving on the given address and blocks.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// requestID tags every request with a UUID for log correlation.
func (s *Server) requestID(c *fiber.Ctx) error {
	rid := uuid.NewString()
	c.Locals("request_id", rid)
	c.Set("X-Request-ID", rid)
	return c.Next()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleReconcile(c *fiber.Ctx) error {
	rid, _ := c.Locals("request_id").(string)

	var req ReconcileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ReconcileResponse{
			Success: false,
			Error:   "invalid request body: " + err.Error(),
		})
	}
	if len(req.Transactions) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ReconcileResponse{
			Success: false,
			Error:   "no transactions supplied",
		})
	}

	set, err := s.engine.Reconcile(req.Transactions, req.Seeds)
	if err != nil {
		// Seed/contract violations are caller errors, not server faults.
		s.log.Warn().Str("request_id", rid).Err(err).Msg("reconcile rejected")
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ReconcileResponse{
			Success: false,
			Error:   err.Error(),
		})
	}

	s.log.Info().
		Str("request_id", rid).
		Int("transactions", len(req.Transactions)).
		Int("confirmed", len(set.Confirmed)).
		Msg("reconcile served")

	return c.JSON(ReconcileResponse{
		Success:   true,
		RunID:     rid,
		Transfers: set,
		Count:     len(req.Transactions),
	})
}
