// Package screens turns gateway state into view models and validates form input before it
// reaches the gateway.
package screens

import (
	"fmt"
	"strings"
	"time"

	"github.com/localnerve/rentalmanager/internal/models"
	"github.com/localnerve/rentalmanager/internal/types"
)

// DateLayout is the yyyy-MM-dd form of record dates
const DateLayout = "2006-01-02"

// Messages shown for rejected forms
const (
	MessageFillAllFields = "Please fill in all fields"
	MessageSelectBoth    = "Please select a tenant and a property"
)

// ValidationError is a form that cannot be submitted
type ValidationError struct {
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(e.Fields, ", "))
}

func required(message string, fields map[string]types.FlexString, order ...string) error {
	var missing []string
	for _, name := range order {
		if fields[name].IsEmpty() {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Message: message, Fields: missing}
	}
	return nil
}

// TenantForm is the add tenant form
type TenantForm struct {
	FullName   types.FlexString `json:"fullName"`
	Gender     types.FlexString `json:"gender"`
	Age        types.FlexString `json:"age"`
	IDNumber   types.FlexString `json:"idNumber"`
	Occupation types.FlexString `json:"occupation"`
	Mobile     types.FlexString `json:"mobile"`
}

// Tenant validates the form. The photo follows from the gender.
func (f TenantForm) Tenant() (models.Tenant, error) {
	if err := required(MessageFillAllFields, map[string]types.FlexString{"fullName": f.FullName}, "fullName"); err != nil {
		return models.Tenant{}, err
	}
	photo := models.PhotoFemale
	if f.Gender.String() == "Male" {
		photo = models.PhotoMale
	}
	return models.Tenant{
		PhotoURL:   photo,
		FullName:   f.FullName.String(),
		Gender:     f.Gender.String(),
		Age:        f.Age.IntOrZero(),
		IDNumber:   f.IDNumber.String(),
		Occupation: f.Occupation.String(),
		Mobile:     f.Mobile.String(),
	}, nil
}

// PropertyForm is the add property form
type PropertyForm struct {
	HouseNumber types.FlexString `json:"houseNumber"`
	HouseType   types.FlexString `json:"houseType"`
	RentAmount  types.FlexString `json:"rentAmount"`
	MeterNumber types.FlexString `json:"meterNumber"`
}

// Property validates the form
func (f PropertyForm) Property() (models.Property, error) {
	if err := required(MessageFillAllFields, map[string]types.FlexString{"houseNumber": f.HouseNumber}, "houseNumber"); err != nil {
		return models.Property{}, err
	}
	houseType := f.HouseType.String()
	if !models.IsHouseType(houseType) {
		return models.Property{}, &ValidationError{
			Message: "House type must be one of: " + strings.Join(models.HouseTypes, ", "),
			Fields:  []string{"houseType"},
		}
	}
	return models.Property{
		HouseNumber: f.HouseNumber.String(),
		HouseType:   houseType,
		RentAmount:  f.RentAmount.IntOrZero(),
		MeterNumber: f.MeterNumber.IntOrZero(),
	}, nil
}

// PaymentForm is the record payment form
type PaymentForm struct {
	TenantID   types.FlexString `json:"tenantId"`
	PropertyID types.FlexString `json:"propertyId"`
	Amount     types.FlexString `json:"amount"`
	Month      types.FlexString `json:"month"`
	Year       types.FlexString `json:"year"`
}

// Payment validates the form. The payment is dated now; a blank or unparsable year is the current year.
func (f PaymentForm) Payment(now time.Time) (models.Payment, error) {
	fields := map[string]types.FlexString{"tenantId": f.TenantID, "propertyId": f.PropertyID}
	if err := required(MessageSelectBoth, fields, "tenantId", "propertyId"); err != nil {
		return models.Payment{}, err
	}
	year, ok := f.Year.Int()
	if !ok {
		year = now.Year()
	}
	return models.Payment{
		TenantID:   f.TenantID.String(),
		PropertyID: f.PropertyID.String(),
		Amount:     f.Amount.FloatOrZero(),
		Date:       now.Format(DateLayout),
		Month:      f.Month.String(),
		Year:       year,
	}, nil
}

// OccupancyForm is the assign occupancy form
type OccupancyForm struct {
	TenantID   types.FlexString `json:"tenantId"`
	PropertyID types.FlexString `json:"propertyId"`
}

// Occupancy validates the form. The occupancy starts now.
func (f OccupancyForm) Occupancy(now time.Time) (models.Occupancy, error) {
	fields := map[string]types.FlexString{"tenantId": f.TenantID, "propertyId": f.PropertyID}
	if err := required(MessageFillAllFields, fields, "tenantId", "propertyId"); err != nil {
		return models.Occupancy{}, err
	}
	return models.Occupancy{
		TenantID:   f.TenantID.String(),
		PropertyID: f.PropertyID.String(),
		Date:       now.Format(DateLayout),
	}, nil
}

// ProfileForm is the edit profile form. Version is the version last read.
type ProfileForm struct {
	Name     types.FlexString `json:"name"`
	Email    types.FlexString `json:"email"`
	Mobile   types.FlexString `json:"mobile"`
	Location types.FlexString `json:"location"`
	Address  types.FlexString `json:"address"`
	Version  types.FlexUint64 `json:"version"`
}

// Profile converts the form; every field is optional
func (f ProfileForm) Profile() models.UserProfile {
	return models.UserProfile{
		Name:     f.Name.String(),
		Email:    f.Email.String(),
		Mobile:   f.Mobile.String(),
		Location: f.Location.String(),
		Address:  f.Address.String(),
		Version:  f.Version,
	}
}

// CredentialsForm is the login and signup form. Values are passed on untrimmed.
type CredentialsForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
