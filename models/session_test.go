package models

import (
	"testing"
	"time"
)

func TestSessionEligible(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		status SessionStatus
		start  time.Time
		want   bool
	}{
		{"available future", SessionAvailable, now.Add(time.Hour), true},
		{"available starting now", SessionAvailable, now, false},
		{"available past", SessionAvailable, now.Add(-time.Minute), false},
		{"booked future", SessionBooked, now.Add(time.Hour), false},
		{"cancelled future", SessionCancelled, now.Add(time.Hour), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &Session{Status: tc.status, StartTime: tc.start}
			if got := s.Eligible(now); got != tc.want {
				t.Fatalf("Eligible() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSessionReserveTransitionsToBookedWhenFull(t *testing.T) {
	s := &Session{MaxParticipants: 2, Status: SessionAvailable}

	if !s.Reserve() {
		t.Fatal("first reserve should succeed")
	}
	if s.Status != SessionAvailable || s.CurrentParticipants != 1 {
		t.Fatalf("unexpected state after first reserve: %+v", s)
	}
	if !s.Reserve() {
		t.Fatal("second reserve should succeed")
	}
	if s.Status != SessionBooked || s.CurrentParticipants != 2 {
		t.Fatalf("expected booked at capacity, got %+v", s)
	}
	if s.Reserve() {
		t.Fatal("reserve beyond capacity should fail")
	}
	if s.CurrentParticipants != 2 {
		t.Fatalf("participants changed on failed reserve: %d", s.CurrentParticipants)
	}
}

func TestParseSessionType(t *testing.T) {
	if typ, ok := ParseSessionType("tennis"); !ok || typ != SessionTennis {
		t.Fatalf("expected tennis, got %q %v", typ, ok)
	}
	for _, bad := range []string{"", "Tennis", "golf"} {
		if _, ok := ParseSessionType(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestTrainerTeaches(t *testing.T) {
	tr := &Trainer{Specializations: []string{"padel", "tennis"}}
	if !tr.Teaches(SessionPadel) || tr.Teaches(SessionFitness) {
		t.Fatalf("unexpected Teaches result for %v", tr.Specializations)
	}
}
