// common.go
//
// Rental manager: landlord back office with live collection snapshots
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of rentalmanager.
// rentalmanager is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// rentalmanager is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with rentalmanager.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/rentalmanager/internal/gateway"
	"github.com/localnerve/rentalmanager/internal/logger"
	"github.com/localnerve/rentalmanager/internal/middleware"
	"github.com/localnerve/rentalmanager/internal/navigator"
	"github.com/localnerve/rentalmanager/internal/records"
	"github.com/localnerve/rentalmanager/internal/screens"
	"github.com/localnerve/rentalmanager/internal/services"
	"github.com/localnerve/rentalmanager/internal/types"
	"github.com/localnerve/rentalmanager/internal/utils"
)

// Error types of the response envelope
const (
	TypeValidation     = "data.validation.input"
	TypeAuthorization  = "data.authorization.user"
	TypeAuthentication = "session.authentication"
	TypeSessionBusy    = "session.busy"
	TypeStore          = "data.store"
	TypeSessionClosed  = "session.closed"
)

// respondError maps an operation error onto the response envelope
func respondError(c *fiber.Ctx, err error, operation string) error {
	var formErr *screens.ValidationError
	if errors.As(err, &formErr) {
		return utils.ValidationErrorResponse(c, formErr.Message, formErr.Fields)
	}
	var schemaErr *records.ValidationError
	if errors.As(err, &schemaErr) {
		return utils.ValidationErrorResponse(c, "Invalid record", schemaErr.Problems)
	}
	if ce, ok := types.AsCustomError(err); ok {
		return utils.ErrorResponse(c, ce.Message, ce.Code, ce.Type)
	}

	switch {
	case errors.Is(err, gateway.ErrMissingCredentials):
		return utils.ValidationErrorResponse(c, gateway.MessageMissingFields, nil)
	case errors.Is(err, gateway.ErrNotAuthenticated):
		return utils.ErrorResponse(c, "Not authenticated", fiber.StatusForbidden, TypeAuthorization)
	case errors.Is(err, gateway.ErrAuthFailed):
		return utils.ErrorResponse(c, sessionMessage(c, err), fiber.StatusUnauthorized, TypeAuthentication)
	case errors.Is(err, gateway.ErrSessionBusy):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusConflict, TypeSessionBusy)
	case errors.Is(err, gateway.ErrClosed):
		return utils.ErrorResponse(c, "Session closed, retry", fiber.StatusServiceUnavailable, TypeSessionClosed)
	case errors.Is(err, services.ErrVersion):
		return utils.VersionErrorResponse(c)
	case errors.Is(err, services.ErrNotFound), errors.Is(err, navigator.ErrNotFound):
		return utils.NotFoundResponse(c, err.Error())
	}

	logger.FromFiber(c).WithError(err).WithField("operation", operation).Warn("request failed")
	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, TypeStore)
}

func sessionMessage(c *fiber.Ctx, err error) string {
	if gw := middleware.GatewayFrom(c); gw != nil {
		if msg := gw.Session().Value().Message; msg != "" {
			return msg
		}
	}
	return err.Error()
}

// parseBody decodes the request body, answering 400 itself when it cannot
func parseBody(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, utils.ValidationErrorResponse(c, "Invalid request body", nil)
	}
	return true, nil
}
