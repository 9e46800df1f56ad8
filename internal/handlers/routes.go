package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/rentalmanager/internal/broker"
	"github.com/localnerve/rentalmanager/internal/config"
	"github.com/localnerve/rentalmanager/internal/gateway"
	"github.com/localnerve/rentalmanager/internal/middleware"
	"github.com/localnerve/rentalmanager/internal/types"
	"gorm.io/gorm"
)

// Dependencies are what the routes are served from
type Dependencies struct {
	Config    *config.Config
	DB        *gorm.DB
	Broker    broker.Broker
	Registry  *gateway.Registry
	Heartbeat time.Duration
	Done      <-chan struct{}
}

// Register mounts /healthz and the /api routes
func Register(app *fiber.App, deps Dependencies) {
	secure := deps.Config != nil && deps.Config.CookieSecure

	health := &HealthHandler{Config: deps.Config, DB: deps.DB, Broker: deps.Broker}
	app.Get("/healthz", health.Health)

	api := app.Group("/api", middleware.VersionMiddleware(), middleware.Gateways(deps.Registry, secure))

	session := &SessionHandler{SecureCookies: secure}
	api.Get("/session", session.GetSession)
	api.Post("/session/login", session.Login)
	api.Post("/session/signup", session.Signup)
	api.Post("/session/logout", session.Logout)

	data := api.Group("/data", middleware.RequireAuthenticated())
	dataHandler := &DataHandler{}
	data.Get("/tenants", dataHandler.ListTenants)
	data.Post("/tenants", dataHandler.AddTenant)
	data.Delete("/tenants/:id", dataHandler.DeleteTenant)
	data.Get("/properties", dataHandler.ListProperties)
	data.Post("/properties", dataHandler.AddProperty)
	data.Delete("/properties/:id", dataHandler.DeleteProperty)
	data.Get("/payments", dataHandler.ListPayments)
	data.Post("/payments", dataHandler.AddPayment)
	data.Get("/occupancies", dataHandler.ListOccupancies)
	data.Post("/occupancies", dataHandler.AddOccupancy)
	data.Delete("/occupancies/:id", dataHandler.DeleteOccupancy)

	profile := &ProfileHandler{}
	api.Get("/profile", middleware.RequireAuthenticated(), profile.GetProfile)
	api.Post("/profile", middleware.RequireAuthenticated(), profile.SaveProfile)

	stream := &StreamHandler{Heartbeat: deps.Heartbeat, Done: deps.Done}
	api.Get("/stream/:collection", stream.Stream)

	screenHandler := &ScreenHandler{}
	api.Get("/screens", screenHandler.ListRoutes)
	api.Get("/screens/:route", screenHandler.GetScreen)
}

// NotFound answers every unmatched route
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   "[404] Resource Not Found",
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	})
}

// ErrorHandler handles errors returned by handlers and middleware
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if ce, ok := types.AsCustomError(err); ok {
		code = ce.Code
		message = ce.Message
		errorType = ce.Type
	}

	// Check for version errors
	versionError := false
	if code == fiber.StatusConflict || strings.HasPrefix(message, "E_VERSION") {
		versionError = true
		errorType = "version"
		code = fiber.StatusConflict
	}

	return c.Status(code).JSON(fiber.Map{
		"status":       code,
		"message":      message,
		"ok":           false,
		"versionError": versionError,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"url":          c.OriginalURL(),
		"type":         errorType,
	})
}
