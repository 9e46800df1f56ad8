// screens.go
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

package screens

import (
	"context"
	"time"

	"github.com/localnerve/rentalmanager/internal/gateway"
	"github.com/localnerve/rentalmanager/internal/models"
	"github.com/localnerve/rentalmanager/internal/navigator"
)

// Actions are the gateway operations screens submit forms to
type Actions interface {
	Now() time.Time
	AddTenant(ctx context.Context, tenant models.Tenant) (models.Tenant, error)
	AddProperty(ctx context.Context, property models.Property) (models.Property, error)
	AddPayment(ctx context.Context, payment models.Payment) (models.Payment, error)
	AddOccupancy(ctx context.Context, occupancy models.Occupancy) (models.Occupancy, error)
	SaveProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error)
}

// SubmitTenant validates the form and adds the tenant
func SubmitTenant(ctx context.Context, gw Actions, form TenantForm) (models.Tenant, error) {
	tenant, err := form.Tenant()
	if err != nil {
		return tenant, err
	}
	return gw.AddTenant(ctx, tenant)
}

// SubmitProperty validates the form and adds the property
func SubmitProperty(ctx context.Context, gw Actions, form PropertyForm) (models.Property, error) {
	property, err := form.Property()
	if err != nil {
		return property, err
	}
	return gw.AddProperty(ctx, property)
}

// SubmitPayment validates the form and records the payment
func SubmitPayment(ctx context.Context, gw Actions, form PaymentForm) (models.Payment, error) {
	payment, err := form.Payment(gw.Now())
	if err != nil {
		return payment, err
	}
	return gw.AddPayment(ctx, payment)
}

// SubmitOccupancy validates the form and assigns the occupancy
func SubmitOccupancy(ctx context.Context, gw Actions, form OccupancyForm) (models.Occupancy, error) {
	occupancy, err := form.Occupancy(gw.Now())
	if err != nil {
		return occupancy, err
	}
	return gw.AddOccupancy(ctx, occupancy)
}

// SubmitProfile saves the profile form
func SubmitProfile(ctx context.Context, gw Actions, form ProfileForm) (models.UserProfile, error) {
	return gw.SaveProfile(ctx, form.Profile())
}

// Render builds the view model of a route from the gateway's current state.
// Rendering Occupancy starts the occupancy feed.
func Render(ctx context.Context, gw *gateway.Gateway, route navigator.Route) (any, error) {
	switch route.Name {
	case navigator.Login, navigator.Signup:
		return Login(route.Name, gw.Session().Value()), nil
	case navigator.Home:
		return Home(gw.Session().Value(), gw.Payments().Value(), gw.Tenants().Value(),
			gw.Properties().Value(), gw.Occupancies().Value()), nil
	case navigator.Tenants:
		return Tenants(gw.Tenants().Value()), nil
	case navigator.Properties:
		return Properties(gw.Properties().Value()), nil
	case navigator.Payments:
		return Payments(gw.Payments().Value(), gw.Tenants().Value(), gw.Properties().Value()), nil
	case navigator.Occupancy:
		gw.StartOccupancies()
		return Occupancy(gw.Occupancies().Value(), gw.Tenants().Value(), gw.Properties().Value()), nil
	case navigator.Profile:
		profile, err := gw.GetProfile(ctx)
		if err != nil {
			return nil, err
		}
		return Profile(profile), nil
	}
	return nil, navigator.ErrNotFound
}
