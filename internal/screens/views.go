package screens

import (
	"github.com/localnerve/rentalmanager/internal/gateway"
	"github.com/localnerve/rentalmanager/internal/models"
	"github.com/localnerve/rentalmanager/internal/navigator"
)

// Unknown is displayed for a reference that no longer resolves
const Unknown = "Unknown"

// LoginView is the Login and Signup screen
type LoginView struct {
	Route   string               `json:"route"`
	Session gateway.SessionState `json:"session"`
}

// Tile is one Home navigation entry
type Tile struct {
	Route string `json:"route"`
	Label string `json:"label"`
	Count *int   `json:"count,omitempty"`
}

// HomeView is the Home screen
type HomeView struct {
	Title string `json:"title"`
	Email string `json:"email"`
	Tiles []Tile `json:"tiles"`
}

// TenantsView is the Tenants screen
type TenantsView struct {
	Version uint64          `json:"version"`
	Tenants []models.Tenant `json:"tenants"`
}

// PropertiesView is the Properties screen
type PropertiesView struct {
	Version    uint64            `json:"version"`
	HouseTypes []string          `json:"houseTypes"`
	Properties []models.Property `json:"properties"`
}

// Option is a selectable record
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// PaymentRow is a payment with its references resolved for display
type PaymentRow struct {
	ID          string  `json:"id"`
	TenantName  string  `json:"tenantName"`
	HouseNumber string  `json:"houseNumber"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Month       string  `json:"month"`
	Year        int     `json:"year"`
}

// PaymentsView is the Payments screen
type PaymentsView struct {
	Version    uint64       `json:"version"`
	Tenants    []Option     `json:"tenants"`
	Properties []Option     `json:"properties"`
	Payments   []PaymentRow `json:"payments"`
}

// OccupancyRow is an occupancy with its references resolved for display
type OccupancyRow struct {
	ID          string `json:"id"`
	TenantName  string `json:"tenantName"`
	HouseNumber string `json:"houseNumber"`
	Date        string `json:"date"`
}

// OccupancyView is the Occupancy screen
type OccupancyView struct {
	Version     uint64         `json:"version"`
	Tenants     []Option       `json:"tenants"`
	Properties  []Option       `json:"properties"`
	Occupancies []OccupancyRow `json:"occupancies"`
}

// ProfileView is the Profile screen
type ProfileView struct {
	Role    string             `json:"role"`
	Profile models.UserProfile `json:"profile"`
}

// Login builds the Login or Signup screen
func Login(route string, session gateway.SessionState) LoginView {
	return LoginView{Route: route, Session: session}
}

// Home builds the Home screen. Counts are shown for the collections that are loaded.
func Home(
	session gateway.SessionState,
	payments gateway.Snapshot[models.Payment],
	tenants gateway.Snapshot[models.Tenant],
	properties gateway.Snapshot[models.Property],
	occupancies gateway.Snapshot[models.Occupancy],
) HomeView {
	count := func(n int) *int { return &n }
	return HomeView{
		Title: "Rental Manager",
		Email: session.Email,
		Tiles: []Tile{
			{Route: navigator.Payments, Label: "Rent Payments", Count: count(len(payments.Items))},
			{Route: navigator.Tenants, Label: "Tenants", Count: count(len(tenants.Items))},
			{Route: navigator.Properties, Label: "Properties", Count: count(len(properties.Items))},
			{Route: navigator.Occupancy, Label: "Occupancy", Count: count(len(occupancies.Items))},
			{Route: navigator.Profile, Label: "My profile"},
		},
	}
}

// Tenants builds the Tenants screen
func Tenants(tenants gateway.Snapshot[models.Tenant]) TenantsView {
	return TenantsView{Version: tenants.Version, Tenants: nonNil(tenants.Items)}
}

// Properties builds the Properties screen
func Properties(properties gateway.Snapshot[models.Property]) PropertiesView {
	return PropertiesView{
		Version:    properties.Version,
		HouseTypes: models.HouseTypes,
		Properties: nonNil(properties.Items),
	}
}

// Payments builds the Payments screen, joining tenant names and house numbers
func Payments(
	payments gateway.Snapshot[models.Payment],
	tenants gateway.Snapshot[models.Tenant],
	properties gateway.Snapshot[models.Property],
) PaymentsView {
	names, houses := tenantNames(tenants.Items), houseNumbers(properties.Items)
	rows := make([]PaymentRow, 0, len(payments.Items))
	for _, p := range payments.Items {
		rows = append(rows, PaymentRow{
			ID:          p.ID,
			TenantName:  lookup(names, p.TenantID, ""),
			HouseNumber: lookup(houses, p.PropertyID, ""),
			Amount:      p.Amount,
			Date:        p.Date,
			Month:       p.Month,
			Year:        p.Year,
		})
	}
	return PaymentsView{
		Version:    payments.Version,
		Tenants:    tenantOptions(tenants.Items),
		Properties: propertyOptions(properties.Items),
		Payments:   rows,
	}
}

// Occupancy builds the Occupancy screen. Records written before occupancies referenced
// tenants and properties fall back to their own names.
func Occupancy(
	occupancies gateway.Snapshot[models.Occupancy],
	tenants gateway.Snapshot[models.Tenant],
	properties gateway.Snapshot[models.Property],
) OccupancyView {
	names, houses := tenantNames(tenants.Items), houseNumbers(properties.Items)
	rows := make([]OccupancyRow, 0, len(occupancies.Items))
	for _, o := range occupancies.Items {
		rows = append(rows, OccupancyRow{
			ID:          o.ID,
			TenantName:  lookup(names, o.TenantID, o.OccupantName),
			HouseNumber: lookup(houses, o.PropertyID, o.HouseNumber),
			Date:        o.Date,
		})
	}
	return OccupancyView{
		Version:     occupancies.Version,
		Tenants:     tenantOptions(tenants.Items),
		Properties:  propertyOptions(properties.Items),
		Occupancies: rows,
	}
}

// Profile builds the Profile screen
func Profile(profile models.UserProfile) ProfileView {
	return ProfileView{Role: "Landlord", Profile: profile}
}

func tenantNames(tenants []models.Tenant) map[string]string {
	m := make(map[string]string, len(tenants))
	for _, t := range tenants {
		m[t.ID] = t.FullName
	}
	return m
}

func houseNumbers(properties []models.Property) map[string]string {
	m := make(map[string]string, len(properties))
	for _, p := range properties {
		m[p.ID] = p.HouseNumber
	}
	return m
}

func lookup(m map[string]string, id, fallback string) string {
	if id != "" {
		if v, ok := m[id]; ok {
			return v
		}
	}
	if fallback != "" {
		return fallback
	}
	return Unknown
}

func tenantOptions(tenants []models.Tenant) []Option {
	out := make([]Option, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, Option{ID: t.ID, Label: t.FullName})
	}
	return out
}

func propertyOptions(properties []models.Property) []Option {
	out := make([]Option, 0, len(properties))
	for _, p := range properties {
		out = append(out, Option{ID: p.ID, Label: p.HouseNumber})
	}
	return out
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
