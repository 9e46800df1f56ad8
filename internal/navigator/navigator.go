// Package navigator is the route table of the application screens.
package navigator

import (
	"errors"
	"strings"

	"github.com/localnerve/rentalmanager/internal/gateway"
)

// ErrNotFound is returned for a route name that is not in the table
var ErrNotFound = errors.New("route not found")

// Route names
const (
	Login      = "Login"
	Signup     = "signup"
	Home       = "Home"
	Payments   = "payments"
	Tenants    = "Tenants"
	Properties = "Properties"
	Occupancy  = "Occupancy"
	Profile    = "profile"
)

// Start is the first route shown
const Start = Login

// Route is one entry of the table
type Route struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

var routes = []Route{
	{Name: Login, Title: "Login"},
	{Name: Signup, Title: "Sign Up"},
	{Name: Home, Title: "Rental Manager"},
	{Name: Payments, Title: "Rent Payments"},
	{Name: Tenants, Title: "Tenants"},
	{Name: Properties, Title: "Properties"},
	{Name: Occupancy, Title: "Occupancy"},
	{Name: Profile, Title: "My profile"},
}

// Routes returns the table in display order
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Lookup finds a route by name, ignoring case
func Lookup(name string) (Route, error) {
	for _, r := range routes {
		if strings.EqualFold(r.Name, strings.TrimSpace(name)) {
			return r, nil
		}
	}
	return Route{}, ErrNotFound
}

// Guard returns the route to show instead of current for the session status.
// Home falls back to Login once the session is Unauthenticated.
func Guard(current Route, status gateway.Status) (Route, bool) {
	if current.Name == Home && status == gateway.Unauthenticated {
		login, _ := Lookup(Login)
		return login, true
	}
	return current, false
}

// Resolve looks a route up and applies Guard
func Resolve(name string, status gateway.Status) (Route, bool, error) {
	r, err := Lookup(name)
	if err != nil {
		return Route{}, false, err
	}
	r, redirected := Guard(r, status)
	return r, redirected, nil
}
