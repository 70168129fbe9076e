// Package httpapi exposes the engines over JSON routes. Handlers stay thin:
// they decode the request, call one service function, and map the error
// taxonomy onto status codes. Authentication sits in front of this service
// and is not handled here.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/civiltime"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/db"
	"github.com/everybody-eats-nz/volunteer-portal-sub005/pkg/notify"
)

// Config carries the tunables handlers pass through to the engines.
type Config struct {
	MealsPerShift  int
	SurveyTokenTTL time.Duration
}

// Server wires the engines to Fiber routes.
type Server struct {
	app      *fiber.App
	store    db.Store
	notifier notify.Notifier
	registry *notify.Registry
	clock    *civiltime.Clock
	logger   *zap.Logger
	cfg      Config
}

// New builds the server and registers every route. The registry feeds the
// notification stream; the notifier is what the engines publish to (usually
// a fanout that includes the registry).
func New(store db.Store, registry *notify.Registry, notifier notify.Notifier, clock *civiltime.Clock, logger *zap.Logger, cfg Config) *Server {
	s := &Server{
		app:      fiber.New(fiber.Config{DisableStartupMessage: true}),
		store:    store,
		notifier: notifier,
		registry: registry,
		clock:    clock,
		logger:   logger,
		cfg:      cfg,
	}
	s.app.Use(cors.New())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/healthz", s.health)

	api := s.app.Group("/api")

	signups := api.Group("/signups")
	signups.Post("/", s.createSignup)
	signups.Post("/:id/move", s.moveSignup)
	signups.Post("/:id/cancel", s.cancelSignup)

	shifts := api.Group("/shifts")
	shifts.Get("/", s.listShifts)
	shifts.Delete("/", s.deleteShiftsByDay)
	shifts.Post("/generate", s.generateShifts)
	shifts.Post("/:id/group-bookings", s.createGroupBooking)
	shifts.Post("/:id/promote", s.promoteWaitlist)

	api.Delete("/users/:id", s.deleteUser)
	api.Post("/users/:id/achievements/check", s.checkAchievements)
	api.Post("/users/:id/surveys/evaluate", s.evaluateSurveyTriggers)

	surveys := api.Group("/surveys")
	surveys.Post("/:id/assign", s.assignSurvey)
	surveys.Get("/:id/eligible", s.eligibleUsers)

	api.Get("/survey/:token", s.viewSurvey)
	api.Post("/survey/:token", s.submitSurvey)

	api.Get("/notifications/stream", s.streamNotifications)
}

// Listen serves until the listener fails or Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests and closes the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Test dispatches a request against the route table without a listener.
func (s *Server) Test(req *http.Request, timeoutMillis ...int) (*http.Response, error) {
	return s.app.Test(req, timeoutMillis...)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// renderError maps the error taxonomy onto status codes: NotFound 404,
// Expired 410, ValidationFailed 400, Conflict 409. Anything unclassified is
// a 500 and the detail stays in the log.
func (s *Server) renderError(c *fiber.Ctx, err error) error {
	switch {
	case db.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case db.IsExpired(err):
		return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": err.Error()})
	case db.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case db.IsConflict(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		s.logger.Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}
