// Package booking computes the derived fields of an appointment. Derive is a
// pure function of its input: callers run it on every create and on every
// edit that touches the start time, the service or the supply flag, and the
// result always comes out the same for the same input.
package booking

import (
	"fmt"
	"time"

	"github.com/careops/homenurse/services/booking-service/internal/apperr"
	"github.com/careops/homenurse/services/booking-service/internal/model"
)

// Fixed base location used for AT_BASE visits.
const (
	BaseAddress  = "Av. Francisco de Orellana y Justino Cornejo, Guayaquil"
	BaseMapsLink = "https://www.google.com/maps/search/?api=1&query=-2.1537,-79.8862"
)

const mapsLinkTemplate = "https://www.google.com/maps/search/?api=1&query=%v,%v"

// Input is everything Derive needs. Profile may be nil when the patient has
// no profile on record; its location fields are only consulted for new
// AT_HOME appointments (the snapshot is frozen at creation and never
// recomputed afterwards).
type Input struct {
	Service model.Service
	Profile *model.PatientProfile

	Start        time.Time
	LocationType model.LocationType

	// Location supplied explicitly (OTHER bookings, staff edits). Kept as-is
	// for existing appointments.
	Address   string
	Reference string
	MapsLink  string
	Latitude  *float64
	Longitude *float64

	HasOwnSupplies bool
	NurseAssigned  bool
	IsNew          bool
}

// Derived is the full set of computed appointment fields.
type Derived struct {
	End       time.Time
	Departure *time.Time

	Address   string
	Reference string
	MapsLink  string
	Latitude  *float64
	Longitude *float64

	PriceCents int64
}

// Derive computes all derived fields, in dependency order: location snapshot,
// end time, departure buffer, price, then validation.
func Derive(in Input) (Derived, error) {
	var d Derived

	// 1. Location. AT_HOME on create copies the patient's profile; missing
	// profile fields stay blank. AT_BASE always points at the base.
	d.Address = in.Address
	d.Reference = in.Reference
	d.MapsLink = in.MapsLink
	d.Latitude = in.Latitude
	d.Longitude = in.Longitude

	switch in.LocationType {
	case model.LocationHome:
		if in.IsNew && in.Profile != nil {
			d.Address = in.Profile.Address
			d.Reference = in.Profile.Reference
			d.MapsLink = in.Profile.MapsLink
			d.Latitude = in.Profile.Latitude
			d.Longitude = in.Profile.Longitude
		}
	case model.LocationBase:
		d.Address = BaseAddress
		d.MapsLink = BaseMapsLink
		d.Latitude = nil
		d.Longitude = nil
	}

	if d.MapsLink == "" && d.Latitude != nil && d.Longitude != nil {
		d.MapsLink = fmt.Sprintf(mapsLinkTemplate, *d.Latitude, *d.Longitude)
	}

	// 2. End time. Service durations are minutes, everywhere.
	d.End = in.Start.Add(time.Duration(in.Service.DurationMinutes) * time.Minute)

	// 3. Departure buffer: travel time before the visit, not needed at base.
	if in.LocationType != model.LocationBase && in.Service.TravelBufferMinutes > 0 {
		dep := in.Start.Add(-time.Duration(in.Service.TravelBufferMinutes) * time.Minute)
		d.Departure = &dep
	}

	// 4. Price: surcharge applies only when the service does not bundle
	// supplies and the client brings none.
	d.PriceCents = in.Service.BasePriceCents
	if !in.Service.IncludesSupplies && !in.HasOwnSupplies {
		d.PriceCents += in.Service.SupplySurchargeCents
	}

	// 5. Guard services block a whole shift and make no sense unassigned.
	if in.Service.IsGuard && !in.NurseAssigned {
		return Derived{}, apperr.Validation("guard service %q requires an assigned nurse", in.Service.Name)
	}

	return d, nil
}
