// Package reminder computes follow-up due dates from medication frequency
// rules.
package reminder

import (
	"time"

	"github.com/careops/homenurse/services/booking-service/internal/apperr"
	"github.com/careops/homenurse/services/booking-service/internal/model"
)

// DueDate returns from + the medication's frequency. Month and year steps use
// calendar-correct addition: the day of month is clamped to the last valid
// day of the target month (Jan 31 + 1 month = Feb 28, or Feb 29 in a leap
// year), never rolled over into the next month.
func DueDate(from time.Time, med model.Medication) (time.Time, error) {
	if med.FrequencyValue <= 0 {
		return time.Time{}, apperr.Validation("medication %q has no frequency configured", med.Name)
	}
	switch med.FrequencyUnit {
	case model.FrequencyDays:
		return from.AddDate(0, 0, med.FrequencyValue), nil
	case model.FrequencyMonths:
		return addMonthsClamped(from, med.FrequencyValue), nil
	case model.FrequencyYears:
		return addMonthsClamped(from, med.FrequencyValue*12), nil
	}
	return time.Time{}, apperr.Validation("medication %q has unknown frequency unit %q", med.Name, med.FrequencyUnit)
}

// addMonthsClamped cannot use time.AddDate: AddDate normalizes overflow, so
// Jan 31 + 1 month would come out as Mar 2/3.
func addMonthsClamped(d time.Time, months int) time.Time {
	monthIndex := int(d.Month()) - 1 + months
	year := d.Year() + monthIndex/12
	month := time.Month(monthIndex%12 + 1)

	day := d.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), d.Location())
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
