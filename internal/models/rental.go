package models

import "github.com/localnerve/rentalmanager/internal/types"

// House types a property can be listed as
const (
	HouseTypeBedsitter    = "Bedsitter"
	HouseTypeOneBedroom   = "One bedroom"
	HouseTypeTwoBedroom   = "Two bedroom"
	HouseTypeThreeBedroom = "Three bedroom"
)

// HouseTypes is the fixed set of house types, in selection order
var HouseTypes = []string{HouseTypeBedsitter, HouseTypeOneBedroom, HouseTypeTwoBedroom, HouseTypeThreeBedroom}

// IsHouseType reports whether t is one of HouseTypes
func IsHouseType(t string) bool {
	for _, ht := range HouseTypes {
		if ht == t {
			return true
		}
	}
	return false
}

// Photo references for tenants, chosen from gender
const (
	PhotoMale   = "ic_male"
	PhotoFemale = "ic_female"
)

// Tenant is a person renting from the landlord
type Tenant struct {
	ID         string `json:"id"`
	PhotoURL   string `json:"photoUrl"`
	FullName   string `json:"fullName"`
	Gender     string `json:"gender"`
	Age        int    `json:"age"`
	IDNumber   string `json:"idNumber"`
	Occupation string `json:"occupation"`
	Mobile     string `json:"mobile"`
}

// SetID assigns the store identifier
func (t *Tenant) SetID(id string) { t.ID = id }

// Property is a rentable house
type Property struct {
	ID          string `json:"id"`
	HouseNumber string `json:"houseNumber"`
	HouseType   string `json:"houseType"`
	RentAmount  int    `json:"rentAmount"`
	MeterNumber int    `json:"meterNumber"`
	UserID      string `json:"userId"`
}

// SetID assigns the store identifier
func (p *Property) SetID(id string) { p.ID = id }

// Payment records rent received. Payments are append-only.
type Payment struct {
	ID         string  `json:"id"`
	TenantID   string  `json:"tenantId"`
	PropertyID string  `json:"propertyId"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date"`
	Month      string  `json:"month"`
	Year       int     `json:"year"`
}

// SetID assigns the store identifier
func (p *Payment) SetID(id string) { p.ID = id }

// Occupancy assigns a tenant to a property from Date on.
// OccupantName and HouseNumber are only present on records written before occupancies
// referenced tenants and properties; they serve as display fallbacks.
type Occupancy struct {
	ID           string `json:"id"`
	TenantID     string `json:"tenantId"`
	PropertyID   string `json:"propertyId"`
	Date         string `json:"date"`
	OccupantName string `json:"occupantName,omitempty"`
	HouseNumber  string `json:"houseNumber,omitempty"`
}

// SetID assigns the store identifier
func (o *Occupancy) SetID(id string) { o.ID = id }

// UserProfile is the landlord's own contact card, stored at users/{userId}
type UserProfile struct {
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	Mobile       string           `json:"mobile"`
	Location     string           `json:"location"`
	Address      string           `json:"address"`
	ProfileSaved bool             `json:"profileSaved"`
	Version      types.FlexUint64 `json:"version"`
}
