package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/rentalmanager/internal/gateway"
	"github.com/localnerve/rentalmanager/internal/middleware"
	"github.com/localnerve/rentalmanager/internal/screens"
	"github.com/localnerve/rentalmanager/internal/utils"
)

// DataHandler handles the per-user collections. Routes are mounted behind RequireAuthenticated.
type DataHandler struct{}

func listResponse[T any](c *fiber.Ctx, o *gateway.Observable[gateway.Snapshot[T]]) error {
	return c.Status(fiber.StatusOK).JSON(o.Value())
}

func created(c *fiber.Ctx, id string, record interface{}) error {
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, id, record)
}

func deleted(c *fiber.Ctx, id string) error {
	return utils.MutationSuccessResponse(c, fiber.StatusOK, id, nil)
}

// ListTenants handles GET /api/data/tenants
// @Summary List tenants
// @Tags Data
// @Produce json
// @Success 200 {object} gateway.Snapshot[models.Tenant]
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /data/tenants [get]
func (h *DataHandler) ListTenants(c *fiber.Ctx) error {
	return listResponse(c, middleware.GatewayFrom(c).Tenants())
}

// AddTenant handles POST /api/data/tenants
// @Summary Add a tenant
// @Description fullName is required; age falls back to 0 when it does not parse
// @Tags Data
// @Accept json
// @Produce json
// @Param tenant body screens.TenantForm true "Tenant"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /data/tenants [post]
func (h *DataHandler) AddTenant(c *fiber.Ctx) error {
	var form screens.TenantForm
	if ok, err := parseBody(c, &form); !ok {
		return err
	}
	tenant, err := screens.SubmitTenant(c.UserContext(), middleware.GatewayFrom(c), form)
	if err != nil {
		return respondError(c, err, "addTenant")
	}
	return created(c, tenant.ID, tenant)
}

// DeleteTenant handles DELETE /api/data/tenants/:id
// @Summary Delete a tenant
// @Tags Data
// @Produce json
// @Param id path string true "Tenant ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /data/tenants/{id} [delete]
func (h *DataHandler) DeleteTenant(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := middleware.GatewayFrom(c).DeleteTenant(c.UserContext(), id); err != nil {
		return respondError(c, err, "deleteTenant")
	}
	return deleted(c, id)
}

// ListProperties handles GET /api/data/properties
// @Summary List properties
// @Tags Data
// @Produce json
// @Success 200 {object} gateway.Snapshot[models.Property]
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /data/properties [get]
func (h *DataHandler) ListProperties(c *fiber.Ctx) error {
	return listResponse(c, middleware.GatewayFrom(c).Properties())
}

// AddProperty handles POST /api/data/properties
// @Summary Add a property
// @Description houseNumber is required and houseType must be a known house type
// @Tags Data
// @Accept json
// @Produce json
// @Param property body screens.PropertyForm true "Property"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /data/properties [post]
func (h *DataHandler) AddProperty(c *fiber.Ctx) error {
	var form screens.PropertyForm
	if ok, err := parseBody(c, &form); !ok {
		return err
	}
	property, err := screens.SubmitProperty(c.UserContext(), middleware.GatewayFrom(c), form)
	if err != nil {
		return respondError(c, err, "addProperty")
	}
	return created(c, property.ID, property)
}

// DeleteProperty handles DELETE /api/data/properties/:id
// @Summary Delete a property
// @Tags Data
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /data/properties/{id} [delete]
func (h *DataHandler) DeleteProperty(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := middleware.GatewayFrom(c).DeleteProperty(c.UserContext(), id); err != nil {
		return respondError(c, err, "deleteProperty")
	}
	return deleted(c, id)
}

// ListPayments handles GET /api/data/payments
// @Summary List payments
// @Tags Data
// @Produce json
// @Success 200 {object} gateway.Snapshot[models.Payment]
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /data/payments [get]
func (h *DataHandler) ListPayments(c *fiber.Ctx) error {
	return listResponse(c, middleware.GatewayFrom(c).Payments())
}

// AddPayment handles POST /api/data/payments
// @Summary Record a payment
// @Description The payment is dated today. A blank year is the current year.
// @Tags Data
// @Accept json
// @Produce json
// @Param payment body screens.PaymentForm true "Payment"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /data/payments [post]
func (h *DataHandler) AddPayment(c *fiber.Ctx) error {
	var form screens.PaymentForm
	if ok, err := parseBody(c, &form); !ok {
		return err
	}
	payment, err := screens.SubmitPayment(c.UserContext(), middleware.GatewayFrom(c), form)
	if err != nil {
		return respondError(c, err, "addPayment")
	}
	return created(c, payment.ID, payment)
}

// ListOccupancies handles GET /api/data/occupancies. The first call starts the occupancy feed.
// @Summary List occupancies
// @Tags Data
// @Produce json
// @Success 200 {object} gateway.Snapshot[models.Occupancy]
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /data/occupancies [get]
func (h *DataHandler) ListOccupancies(c *fiber.Ctx) error {
	gw := middleware.GatewayFrom(c)
	gw.StartOccupancies()
	return listResponse(c, gw.Occupancies())
}

// AddOccupancy handles POST /api/data/occupancies
// @Summary Assign an occupancy
// @Tags Data
// @Accept json
// @Produce json
// @Param occupancy body screens.OccupancyForm true "Occupancy"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /data/occupancies [post]
func (h *DataHandler) AddOccupancy(c *fiber.Ctx) error {
	var form screens.OccupancyForm
	if ok, err := parseBody(c, &form); !ok {
		return err
	}
	occupancy, err := screens.SubmitOccupancy(c.UserContext(), middleware.GatewayFrom(c), form)
	if err != nil {
		return respondError(c, err, "addOccupancy")
	}
	return created(c, occupancy.ID, occupancy)
}

// DeleteOccupancy handles DELETE /api/data/occupancies/:id
// @Summary Delete an occupancy
// @Tags Data
// @Produce json
// @Param id path string true "Occupancy ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /data/occupancies/{id} [delete]
func (h *DataHandler) DeleteOccupancy(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := middleware.GatewayFrom(c).DeleteOccupancy(c.UserContext(), id); err != nil {
		return respondError(c, err, "deleteOccupancy")
	}
	return deleted(c, id)
}
