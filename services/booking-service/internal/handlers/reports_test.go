package handlers

import (
	"testing"
	"time"

	"github.com/careops/homenurse/services/booking-service/internal/model"
)

func TestReturnVisitDue(t *testing.T) {
	start := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	svc := model.Service{RequiresReturn: true, ReturnWaitHours: 48}
	if got := returnVisitDue(svc, start); !got.Equal(start.Add(48 * time.Hour)) {
		t.Fatalf("due = %v, want start+48h", got)
	}
}

func TestReturnVisitDueDefaultWait(t *testing.T) {
	start := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	svc := model.Service{RequiresReturn: true}
	if got := returnVisitDue(svc, start); !got.Equal(start.Add(24 * time.Hour)) {
		t.Fatalf("due = %v, want start+24h when no wait configured", got)
	}
}
