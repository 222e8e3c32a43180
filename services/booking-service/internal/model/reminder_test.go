package model

import "testing"

func TestReminderStatus_Transitions(t *testing.T) {
	allowed := []struct{ from, to ReminderStatus }{
		{ReminderPending, ReminderContacted},
		{ReminderPending, ReminderDiscarded},
		{ReminderContacted, ReminderScheduled},
		{ReminderContacted, ReminderDiscarded},
	}
	for _, tr := range allowed {
		if !tr.from.CanTransitionTo(tr.to) {
			t.Fatalf("expected %s -> %s allowed", tr.from, tr.to)
		}
	}

	forbidden := []struct{ from, to ReminderStatus }{
		{ReminderPending, ReminderScheduled},
		{ReminderScheduled, ReminderContacted},
		{ReminderScheduled, ReminderDiscarded},
		{ReminderDiscarded, ReminderPending},
		{ReminderDiscarded, ReminderContacted},
		{ReminderContacted, ReminderPending},
	}
	for _, tr := range forbidden {
		if tr.from.CanTransitionTo(tr.to) {
			t.Fatalf("expected %s -> %s forbidden", tr.from, tr.to)
		}
	}
}

func TestAppointmentStatus_OccupyingSet(t *testing.T) {
	occupying := []AppointmentStatus{StatusPending, StatusConfirmed, StatusEnRoute, StatusRescheduled}
	for _, s := range occupying {
		if !s.Occupying() {
			t.Fatalf("expected %s to occupy", s)
		}
	}
	for _, s := range []AppointmentStatus{StatusCancelled, StatusCompleted} {
		if s.Occupying() {
			t.Fatalf("expected %s not to occupy", s)
		}
	}
}
