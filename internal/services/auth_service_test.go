package services

import (
	"context"
	"errors"
	"testing"

	"github.com/authorizerdev/authorizer-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) Login(req *authorizer.LoginInput) (*authorizer.AuthTokenResponse, error) {
	args := m.Called(*req.Email, req.Password)
	res, _ := args.Get(0).(*authorizer.AuthTokenResponse)
	return res, args.Error(1)
}

func (m *mockAuthorizer) SignUp(req *authorizer.SignUpInput) (*authorizer.AuthTokenResponse, error) {
	args := m.Called(*req.Email, req.Password, req.ConfirmPassword)
	res, _ := args.Get(0).(*authorizer.AuthTokenResponse)
	return res, args.Error(1)
}

func (m *mockAuthorizer) GetProfile(headers map[string]string) (*authorizer.User, error) {
	args := m.Called(headers["Authorization"])
	user, _ := args.Get(0).(*authorizer.User)
	return user, args.Error(1)
}

func tokenResponse(userID, token string) *authorizer.AuthTokenResponse {
	return &authorizer.AuthTokenResponse{
		AccessToken: &token,
		User:        &authorizer.User{ID: userID},
	}
}

func TestSignIn(t *testing.T) {
	client := &mockAuthorizer{}
	client.On("Login", "ann@example.com", "Secret1!").Return(tokenResponse("u-1", "tok"), nil)

	auth := &AuthorizerAuthenticator{client: client}
	id, err := auth.SignIn(context.Background(), "ann@example.com", "Secret1!")
	require.NoError(t, err)
	assert.Equal(t, &Identity{UserID: "u-1", Email: "ann@example.com", Token: "tok"}, id)
	client.AssertExpectations(t)
}

func TestSignInPassesBackendMessage(t *testing.T) {
	client := &mockAuthorizer{}
	client.On("Login", "ann@example.com", "wrong").Return(nil, errors.New("graphql: bad user credentials"))

	auth := &AuthorizerAuthenticator{client: client}
	_, err := auth.SignIn(context.Background(), "ann@example.com", "wrong")
	assert.EqualError(t, err, "bad user credentials")
}

func TestSignUpFallsBackToLogin(t *testing.T) {
	client := &mockAuthorizer{}
	client.On("SignUp", "new@example.com", "Secret1!", "Secret1!").Return(&authorizer.AuthTokenResponse{}, nil)
	client.On("Login", "new@example.com", "Secret1!").Return(tokenResponse("u-2", "tok2"), nil)

	auth := &AuthorizerAuthenticator{client: client}
	id, err := auth.SignUp(context.Background(), "new@example.com", "Secret1!")
	require.NoError(t, err)
	assert.Equal(t, "u-2", id.UserID)
	assert.Equal(t, "tok2", id.Token)
	client.AssertExpectations(t)
}

func TestResume(t *testing.T) {
	client := &mockAuthorizer{}
	client.On("GetProfile", "Bearer good").Return(&authorizer.User{ID: "u-3"}, nil)
	client.On("GetProfile", "Bearer expired").Return(nil, errors.New("unauthorized"))

	auth := &AuthorizerAuthenticator{client: client}

	id, err := auth.Resume(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "u-3", id.UserID)
	assert.Equal(t, "good", id.Token)

	_, err = auth.Resume(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = auth.Resume(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidSession)
}
