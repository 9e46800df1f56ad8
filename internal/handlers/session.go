package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/rentalmanager/internal/gateway"
	"github.com/localnerve/rentalmanager/internal/middleware"
	"github.com/localnerve/rentalmanager/internal/screens"
)

// SessionHandler handles sign in, sign up and sign out
type SessionHandler struct {
	SecureCookies bool
}

func (h *SessionHandler) setSessionCookie(c *fiber.Ctx, token string) {
	cookie := &fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if token == "" {
		cookie.Expires = time.Unix(0, 0)
	}
	c.Cookie(cookie)
}

type signInFunc func(gw *gateway.Gateway, c *fiber.Ctx, form screens.CredentialsForm) error

func (h *SessionHandler) signIn(c *fiber.Ctx, operation string, call signInFunc) error {
	var form screens.CredentialsForm
	if ok, err := parseBody(c, &form); !ok {
		return err
	}

	gw := middleware.GatewayFrom(c)
	if err := call(gw, c, form); err != nil {
		return respondError(c, err, operation)
	}

	h.setSessionCookie(c, gw.Token())
	return c.Status(fiber.StatusOK).JSON(gw.Session().Value())
}

// Login handles POST /api/session/login
// @Summary Sign in
// @Description Sign in with email and password. Starts the tenants, properties and payments feeds.
// @Tags Session
// @Accept json
// @Produce json
// @Param credentials body screens.CredentialsForm true "Credentials"
// @Success 200 {object} gateway.SessionState
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /session/login [post]
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	return h.signIn(c, "login", func(gw *gateway.Gateway, c *fiber.Ctx, form screens.CredentialsForm) error {
		return gw.Authenticate(c.UserContext(), form.Email, form.Password)
	})
}

// Signup handles POST /api/session/signup
// @Summary Sign up
// @Description Create an account and sign it in
// @Tags Session
// @Accept json
// @Produce json
// @Param credentials body screens.CredentialsForm true "Credentials"
// @Success 200 {object} gateway.SessionState
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /session/signup [post]
func (h *SessionHandler) Signup(c *fiber.Ctx) error {
	return h.signIn(c, "signup", func(gw *gateway.Gateway, c *fiber.Ctx, form screens.CredentialsForm) error {
		return gw.Register(c.UserContext(), form.Email, form.Password)
	})
}

// Logout handles POST /api/session/logout
// @Summary Sign out
// @Description Stop every feed and clear the collections
// @Tags Session
// @Produce json
// @Success 200 {object} gateway.SessionState
// @Router /session/logout [post]
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	gw := middleware.GatewayFrom(c)
	gw.SignOut()
	h.setSessionCookie(c, "")
	return c.Status(fiber.StatusOK).JSON(gw.Session().Value())
}

// GetSession handles GET /api/session
// @Summary Session state
// @Tags Session
// @Produce json
// @Success 200 {object} gateway.SessionState
// @Router /session [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(middleware.GatewayFrom(c).Session().Value())
}
