package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/rentalmanager/internal/gateway"
	"github.com/localnerve/rentalmanager/internal/types"
)

// Cookie names
const (
	ClientCookie  = "rm_client"
	SessionCookie = "cookie_session"
)

const localsGateway = "gateway"

// Gateways attaches the client's gateway to the request, creating it on first contact.
// A new gateway resumes the session from the session cookie.
func Gateways(registry *gateway.Registry, secureCookies bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID := c.Cookies(ClientCookie)
		gw := registry.Acquire(c.UserContext(), clientID, c.Cookies(SessionCookie))

		if gw.ID() != clientID {
			c.Cookie(&fiber.Cookie{
				Name:     ClientCookie,
				Value:    gw.ID(),
				Path:     "/",
				HTTPOnly: true,
				Secure:   secureCookies,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		c.Locals(localsGateway, gw)
		return c.Next()
	}
}

// GatewayFrom returns the gateway attached by Gateways
func GatewayFrom(c *fiber.Ctx) *gateway.Gateway {
	gw, _ := c.Locals(localsGateway).(*gateway.Gateway)
	return gw
}

// RequireAuthenticated rejects requests whose gateway is not signed in
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		gw := GatewayFrom(c)
		if gw == nil || gw.Session().Value().Status != gateway.Authenticated {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: "Not authenticated",
				Type:    "data.authorization.user",
			}
		}
		return c.Next()
	}
}
