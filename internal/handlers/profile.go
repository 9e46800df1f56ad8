package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/rentalmanager/internal/middleware"
	"github.com/localnerve/rentalmanager/internal/screens"
	"github.com/localnerve/rentalmanager/internal/utils"
)

// ProfileHandler handles the landlord profile document
type ProfileHandler struct{}

// GetProfile handles GET /api/profile
// @Summary Get the profile
// @Tags Profile
// @Produce json
// @Success 200 {object} models.UserProfile
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := middleware.GatewayFrom(c).GetProfile(c.UserContext())
	if err != nil {
		return respondError(c, err, "getProfile")
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}

// SaveProfile handles POST /api/profile
// @Summary Save the profile
// @Description Upserts the profile. A non-zero version must match the stored version.
// @Tags Profile
// @Accept json
// @Produce json
// @Param profile body screens.ProfileForm true "Profile"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /profile [post]
func (h *ProfileHandler) SaveProfile(c *fiber.Ctx) error {
	var form screens.ProfileForm
	if ok, err := parseBody(c, &form); !ok {
		return err
	}
	profile, err := screens.SubmitProfile(c.UserContext(), middleware.GatewayFrom(c), form)
	if err != nil {
		return respondError(c, err, "saveProfile")
	}
	return utils.SuccessResponse(c, profile, fiber.StatusOK)
}
