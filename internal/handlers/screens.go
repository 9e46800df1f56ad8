package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/rentalmanager/internal/middleware"
	"github.com/localnerve/rentalmanager/internal/navigator"
	"github.com/localnerve/rentalmanager/internal/screens"
	"github.com/localnerve/rentalmanager/internal/utils"
)

// ScreenResponse is a rendered route
type ScreenResponse struct {
	Route      navigator.Route `json:"route"`
	Redirected bool            `json:"redirected"`
	View       interface{}     `json:"view"`
}

// ScreenHandler renders screens through the navigator
type ScreenHandler struct{}

// ListRoutes handles GET /api/screens
// @Summary List routes
// @Tags Screens
// @Produce json
// @Success 200 {array} navigator.Route
// @Router /screens [get]
func (h *ScreenHandler) ListRoutes(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, navigator.Routes(), fiber.StatusOK)
}

// GetScreen handles GET /api/screens/:route
// @Summary Render a screen
// @Description Route names are matched without regard to case. Home redirects to Login when signed out.
// @Tags Screens
// @Produce json
// @Param route path string true "Route name"
// @Success 200 {object} ScreenResponse
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /screens/{route} [get]
func (h *ScreenHandler) GetScreen(c *fiber.Ctx) error {
	gw := middleware.GatewayFrom(c)

	route, redirected, err := navigator.Resolve(c.Params("route"), gw.Session().Value().Status)
	if err != nil {
		return respondError(c, err, "getScreen")
	}

	view, err := screens.Render(c.UserContext(), gw, route)
	if err != nil {
		return respondError(c, err, "getScreen")
	}

	return utils.SuccessResponse(c, ScreenResponse{Route: route, Redirected: redirected, View: view}, fiber.StatusOK)
}
