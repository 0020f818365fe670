package main

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/padraicbc/matchapi/models"
)

func TestPlanSessions(t *testing.T) {
	trainers := defaultTrainers()
	for i := range trainers {
		trainers[i].ID = int64(i + 1)
	}
	from := time.Date(2025, 6, 1, 17, 30, 0, 0, time.UTC)

	sessions := planSessions(trainers, from, 7, rand.New(rand.NewPCG(1, 2)))

	if n := len(sessions); n < 7*len(trainers)*2 || n > 7*len(trainers)*3 {
		t.Fatalf("expected 2-3 sessions per trainer per day, got %d", n)
	}

	byID := map[int64]models.Trainer{}
	for _, tr := range trainers {
		byID[tr.ID] = tr
	}
	for _, s := range sessions {
		tr := byID[s.TrainerID]
		if !tr.Teaches(s.Type) {
			t.Fatalf("%s does not teach %s", tr.Name, s.Type)
		}
		if h := s.StartTime.Hour(); h != 9 && h != 12 && h != 15 {
			t.Fatalf("unexpected start hour %d", h)
		}
		if s.EndTime.Sub(s.StartTime) != time.Hour || s.DurationMinutes != 60 {
			t.Fatalf("expected one-hour session, got %s", s.EndTime.Sub(s.StartTime))
		}
		if s.MaxParticipants != 1 || s.Status != models.SessionAvailable {
			t.Fatalf("unexpected capacity/status %d/%s", s.MaxParticipants, s.Status)
		}
		base := basePrices[s.Type]
		p := s.Price.IntPart()
		if p < base-10 || p > base+20 {
			t.Fatalf("price %d outside range for %s", p, s.Type)
		}
		if s.StartTime.Before(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("session before first day: %s", s.StartTime)
		}
	}
}

func TestPlanSessionsSkipsTrainersWithoutSpecializations(t *testing.T) {
	sessions := planSessions([]models.Trainer{{ID: 1, Name: "Idle"}}, time.Now(), 3, rand.New(rand.NewPCG(1, 1)))
	if len(sessions) != 0 {
		t.Fatalf("expected no sessions, got %d", len(sessions))
	}
}
