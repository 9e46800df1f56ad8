package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/authorizerdev/authorizer-go"
	"github.com/localnerve/rentalmanager/internal/config"
	"github.com/localnerve/rentalmanager/internal/logger"
	"github.com/localnerve/rentalmanager/internal/utils"
)

// ErrInvalidSession is returned when a stored token no longer identifies a user
var ErrInvalidSession = errors.New("session is not valid")

// Identity is an authenticated user and the token that proves it
type Identity struct {
	UserID string
	Email  string
	Token  string
}

// Authenticator signs users in against the external authentication service
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignUp(ctx context.Context, email, password string) (*Identity, error)
	Resume(ctx context.Context, token string) (*Identity, error)
}

// authorizerAPI is the part of the Authorizer client used here
type authorizerAPI interface {
	Login(req *authorizer.LoginInput) (*authorizer.AuthTokenResponse, error)
	SignUp(req *authorizer.SignUpInput) (*authorizer.AuthTokenResponse, error)
	GetProfile(headers map[string]string) (*authorizer.User, error)
}

// AuthorizerAuthenticator implements Authenticator with the Authorizer service
type AuthorizerAuthenticator struct {
	client authorizerAPI
}

// NewAuthorizerAuthenticator pings the Authorizer service and creates a client for it
func NewAuthorizerAuthenticator(cfg *config.Config, redirectURL string) (*AuthorizerAuthenticator, error) {
	if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
		return nil, fmt.Errorf("authorizer ping failed: %w", err)
	}

	logger.Default().WithField("authorizerURL", cfg.AuthzURL).
		WithField("clientID", cfg.AuthzClientID).
		Info("initializing authorizer")

	client, err := authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer client: %w", err)
	}
	return &AuthorizerAuthenticator{client: client}, nil
}

// SignIn implements Authenticator
func (a *AuthorizerAuthenticator) SignIn(_ context.Context, email, password string) (*Identity, error) {
	res, err := a.client.Login(&authorizer.LoginInput{
		Email:    &email,
		Password: password,
	})
	if err != nil {
		return nil, authError(err)
	}
	return identityFrom(res, email)
}

// SignUp implements Authenticator. When the service does not sign the new account in,
// a login follows.
func (a *AuthorizerAuthenticator) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	res, err := a.client.SignUp(&authorizer.SignUpInput{
		Email:           &email,
		Password:        password,
		ConfirmPassword: password,
	})
	if err != nil {
		return nil, authError(err)
	}
	if res == nil || res.AccessToken == nil {
		return a.SignIn(ctx, email, password)
	}
	return identityFrom(res, email)
}

// Resume implements Authenticator
func (a *AuthorizerAuthenticator) Resume(_ context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	user, err := a.client.GetProfile(map[string]string{
		"Authorization": "Bearer " + token,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if user == nil || user.ID == "" {
		return nil, ErrInvalidSession
	}
	return &Identity{UserID: user.ID, Email: stringValue(user.Email), Token: token}, nil
}

func identityFrom(res *authorizer.AuthTokenResponse, email string) (*Identity, error) {
	if res == nil || res.AccessToken == nil || res.User == nil {
		return nil, errors.New("no session returned")
	}
	return &Identity{UserID: res.User.ID, Email: email, Token: *res.AccessToken}, nil
}

// authError strips the transport framing from Authorizer errors so the message can be shown
func authError(err error) error {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 && i+2 < len(msg) {
		msg = msg[i+2:]
	}
	return errors.New(msg)
}

// stringValue reads fields the client library declares as either string or *string
func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case *string:
		if s != nil {
			return *s
		}
	}
	return ""
}
