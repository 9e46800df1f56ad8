package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/rentalmanager/internal/broker"
	"github.com/localnerve/rentalmanager/internal/config"
	"github.com/localnerve/rentalmanager/internal/services"
	"gorm.io/gorm"
)

// HealthHandler reports service health
type HealthHandler struct {
	Config *config.Config
	DB     *gorm.DB
	Broker broker.Broker
}

// Health handles GET /healthz
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /healthz [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	result := services.HealthCheck(c.UserContext(), h.Config, h.DB, h.Broker)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
