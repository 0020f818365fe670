// cmd/seed/main.go
// Seeds demo trainers and a week of bookable sessions.
//
// Usage:
//
//	go run ./cmd/seed -days 7
package main

import (
	"context"
	"flag"
	"math/rand/v2"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/matchapi/cache"
	"github.com/padraicbc/matchapi/catalog"
	"github.com/padraicbc/matchapi/config"
	bundb "github.com/padraicbc/matchapi/db"
	applog "github.com/padraicbc/matchapi/logger"
	"github.com/padraicbc/matchapi/models"
	"github.com/padraicbc/matchapi/store"
)

func main() {
	days := flag.Int("days", 7, "number of days of sessions to create, starting today")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed for session types and prices")
	force := flag.Bool("force", false, "add sessions even for trainers that already have upcoming ones")
	flag.Parse()

	ctx := context.Background()
	cfg := config.Load()
	log, err := applog.New(cfg.Debug, "matchapi-seed")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	db, err := bundb.Open(ctx, cfg)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if err := bundb.CreateTables(ctx, db); err != nil {
		log.Fatal("create tables", zap.Error(err))
	}

	trainers := defaultTrainers()
	if err := upsertTrainers(ctx, db, trainers); err != nil {
		log.Fatal("seed trainers", zap.Error(err))
	}
	log.Info("trainers seeded", zap.Int("count", len(trainers)))

	now := time.Now()
	pending := make([]models.Trainer, 0, len(trainers))
	for _, t := range trainers {
		n, err := db.NewSelect().
			Model((*models.Session)(nil)).
			Where("s.trainer_id = ?", t.ID).
			Where("s.start_time > ?", now).
			Count(ctx)
		if err != nil {
			log.Fatal("count sessions", zap.Error(err))
		}
		if n > 0 && !*force {
			log.Info("trainer already has sessions", zap.String("email", t.Email), zap.Int("upcoming", n))
			continue
		}
		pending = append(pending, t)
	}

	sessions := planSessions(pending, now, *days, rand.New(rand.NewPCG(*seed, *seed)))
	if len(sessions) > 0 {
		if _, err := db.NewInsert().Model(&sessions).Exec(ctx); err != nil {
			log.Fatal("seed sessions", zap.Error(err))
		}
	}
	log.Info("sessions seeded", zap.Int("count", len(sessions)))

	invalidateCatalog(ctx, cfg, db, log)
}

// upsertTrainers inserts trainers or refreshes them by email, filling in IDs.
func upsertTrainers(ctx context.Context, db *bun.DB, trainers []models.Trainer) error {
	_, err := db.NewInsert().
		Model(&trainers).
		On("CONFLICT (email) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("phone = EXCLUDED.phone").
		Set("specializations = EXCLUDED.specializations").
		Set("bio = EXCLUDED.bio").
		Set("is_active = EXCLUDED.is_active").
		Set("updated_at = now()").
		Returning("id").
		Exec(ctx)
	return err
}

// invalidateCatalog drops cached trainer lists so the API sees the new roster.
func invalidateCatalog(ctx context.Context, cfg *config.Config, db *bun.DB, log *zap.Logger) {
	if cfg.RedisURL == "" {
		return
	}
	rc, err := cache.NewRedis(ctx, cfg.RedisURL, "matchapi:")
	if err != nil {
		log.Warn("connect cache", zap.Error(err))
		return
	}
	defer rc.Close()

	svc := catalog.NewService(store.New(db), rc, cfg.CatalogCacheTTL, log)
	if err := svc.InvalidateTrainers(ctx); err != nil {
		log.Warn("invalidate catalog cache", zap.Error(err))
		return
	}
	log.Info("catalog cache cleared")
}
