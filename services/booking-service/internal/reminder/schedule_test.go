package reminder

import (
	"testing"
	"time"

	"github.com/careops/homenurse/services/booking-service/internal/apperr"
	"github.com/careops/homenurse/services/booking-service/internal/model"
)

func med(value int, unit model.FrequencyUnit) model.Medication {
	return model.Medication{ID: "m1", Name: "Test med", FrequencyValue: value, FrequencyUnit: unit}
}

func TestDueDate_Days(t *testing.T) {
	from := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	got, err := DueDate(from, med(15, model.FrequencyDays))
	if err != nil {
		t.Fatalf("DueDate: %v", err)
	}
	want := time.Date(2026, 3, 24, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestDueDate_MonthEndClamped(t *testing.T) {
	from := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	got, err := DueDate(from, med(1, model.FrequencyMonths))
	if err != nil {
		t.Fatalf("DueDate: %v", err)
	}
	// 2026 is not a leap year; Jan 31 + 1 month clamps to Feb 28.
	want := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestDueDate_MonthEndClampedLeapYear(t *testing.T) {
	from := time.Date(2028, 1, 31, 0, 0, 0, 0, time.UTC)
	got, err := DueDate(from, med(1, model.FrequencyMonths))
	if err != nil {
		t.Fatalf("DueDate: %v", err)
	}
	want := time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestDueDate_MonthsAcrossYearBoundary(t *testing.T) {
	from := time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC)
	got, err := DueDate(from, med(3, model.FrequencyMonths))
	if err != nil {
		t.Fatalf("DueDate: %v", err)
	}
	want := time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestDueDate_Years(t *testing.T) {
	from := time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)
	got, err := DueDate(from, med(1, model.FrequencyYears))
	if err != nil {
		t.Fatalf("DueDate: %v", err)
	}
	// Feb 29 + 1 year clamps to Feb 28 of the non-leap year.
	want := time.Date(2029, 2, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestDueDate_InvalidFrequency(t *testing.T) {
	from := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if _, err := DueDate(from, med(0, model.FrequencyDays)); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for zero frequency, got %v", err)
	}
	if _, err := DueDate(from, med(5, model.FrequencyUnit("WEEKS"))); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for unknown unit, got %v", err)
	}
}
