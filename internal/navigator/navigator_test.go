package navigator

import (
	"testing"

	"github.com/localnerve/rentalmanager/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupIgnoresCase(t *testing.T) {
	for _, name := range []string{"Login", "login", "SIGNUP", "home", "Payments", "tenants", "properties", "occupancy", "Profile"} {
		r, err := Lookup(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, r.Title)
	}

	_, err := Lookup("reports")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoutesStartWithLogin(t *testing.T) {
	all := Routes()
	require.Len(t, all, 8)
	assert.Equal(t, Start, all[0].Name)
}

func TestHomeGuard(t *testing.T) {
	r, redirected, err := Resolve("home", gateway.Unauthenticated)
	require.NoError(t, err)
	assert.True(t, redirected)
	assert.Equal(t, Login, r.Name)

	r, redirected, err = Resolve("Home", gateway.Authenticated)
	require.NoError(t, err)
	assert.False(t, redirected)
	assert.Equal(t, Home, r.Name)

	r, redirected, err = Resolve("Tenants", gateway.Unauthenticated)
	require.NoError(t, err)
	assert.False(t, redirected)
	assert.Equal(t, Tenants, r.Name)

	// only an unauthenticated session leaves Home
	_, redirected, _ = Resolve("Home", gateway.Failed)
	assert.False(t, redirected)
}
