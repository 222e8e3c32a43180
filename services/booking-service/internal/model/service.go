package model

// FrequencyUnit is the unit of a medication's re-application frequency.
type FrequencyUnit string

const (
	FrequencyDays   FrequencyUnit = "DAYS"
	FrequencyMonths FrequencyUnit = "MONTHS"
	FrequencyYears  FrequencyUnit = "YEARS"
)

func (u FrequencyUnit) Valid() bool {
	switch u {
	case FrequencyDays, FrequencyMonths, FrequencyYears:
		return true
	}
	return false
}

// Service is a bookable nursing service from the catalog.
// Prices are integer cents; durations and buffers are minutes.
type Service struct {
	ID                   string
	CategoryID           string
	Name                 string
	Description          string
	BasePriceCents       int64
	SupplySurchargeCents int64
	IncludesSupplies     bool
	DurationMinutes      int
	TravelBufferMinutes  int
	IsGuard              bool
	RequiresReturn       bool
	ReturnWaitHours      int
	AllowsBase           bool
	AllowsHome           bool
	Active               bool
}

// Medication is a catalog entry used to suggest follow-up dates
// ("apply every N days/months/years").
type Medication struct {
	ID             string
	Name           string
	FrequencyValue int
	FrequencyUnit  FrequencyUnit
}
