package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/padraicbc/matchapi/models"
)

func strPtr(s string) *string { return &s }

// defaultTrainers is the demo roster. Email is the identity on re-runs.
func defaultTrainers() []models.Trainer {
	return []models.Trainer{
		{
			Name:            "Maria Rodriguez",
			Email:           "maria.rodriguez@matchable.com",
			Phone:           "+1-555-0101",
			Specializations: []string{"padel", "tennis"},
			Bio:             strPtr("Professional padel and tennis coach with 8 years of experience. Former national champion."),
			IsActive:        true,
		},
		{
			Name:            "John Smith",
			Email:           "john.smith@matchable.com",
			Phone:           "+1-555-0102",
			Specializations: []string{"fitness", "tennis"},
			Bio:             strPtr("Certified personal trainer and tennis instructor. Specializes in strength training and technique."),
			IsActive:        true,
		},
		{
			Name:            "Sarah Johnson",
			Email:           "sarah.johnson@matchable.com",
			Phone:           "+1-555-0103",
			Specializations: []string{"padel", "fitness"},
			Bio:             strPtr("Multi-sport coach with expertise in padel and functional fitness training."),
			IsActive:        true,
		},
		{
			Name:            "Carlos Martinez",
			Email:           "carlos.martinez@matchable.com",
			Phone:           "+1-555-0104",
			Specializations: []string{"tennis"},
			Bio:             strPtr("Former ATP player with 15 years of coaching experience. Specializes in advanced techniques."),
			IsActive:        true,
		},
		{
			Name:            "Emma Wilson",
			Email:           "emma.wilson@matchable.com",
			Phone:           "+1-555-0105",
			Specializations: []string{"fitness"},
			Bio:             strPtr("Certified fitness trainer with focus on HIIT and strength training."),
			IsActive:        true,
		},
	}
}

var basePrices = map[models.SessionType]int64{
	models.SessionPadel:   60,
	models.SessionTennis:  80,
	models.SessionFitness: 50,
}

// planSessions lays out days of one-hour, single-seat sessions from the
// date of from: two or three per trainer per day at 09:00, 12:00 and 15:00.
// Each takes a type the trainer teaches and its base price moved by -10 to +20.
func planSessions(trainers []models.Trainer, from time.Time, days int, rng *rand.Rand) []models.Session {
	var out []models.Session
	day0 := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())

	for d := range days {
		date := day0.AddDate(0, 0, d)
		for _, t := range trainers {
			if len(t.Specializations) == 0 {
				continue
			}
			count := 2 + rng.IntN(2)
			for i := range count {
				start := date.Add(time.Duration(9+3*i) * time.Hour)
				typ := models.SessionType(t.Specializations[rng.IntN(len(t.Specializations))])
				base, ok := basePrices[typ]
				if !ok {
					base = 60
				}
				price := base + int64(rng.IntN(31)) - 10

				out = append(out, models.Session{
					TrainerID:       t.ID,
					Type:            typ,
					StartTime:       start,
					EndTime:         start.Add(time.Hour),
					DurationMinutes: 60,
					Price:           decimal.NewFromInt(price),
					MaxParticipants: 1,
					Status:          models.SessionAvailable,
					Description:     strPtr(fmt.Sprintf("Professional %s training session with %s", typ, t.Name)),
				})
			}
		}
	}
	return out
}
