package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"

	"github.com/padraicbc/matchapi/config"
	"github.com/padraicbc/matchapi/models"
)

// Open connects to PostgreSQL using the provided config and verifies the connection.
func Open(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN())))
	sqldb.SetMaxOpenConns(10)
	sqldb.SetMaxIdleConns(2)
	sqldb.SetConnMaxLifetime(time.Hour)
	sqldb.SetConnMaxIdleTime(30 * time.Minute)

	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

type tableDef struct {
	model       any
	foreignKeys []string
}

// CreateTables creates all tables in dependency order, then adds the
// constraints and indexes bun tags cannot express.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []tableDef{
		{model: (*models.Trainer)(nil)},
		{
			model:       (*models.Session)(nil),
			foreignKeys: []string{`("trainer_id") REFERENCES "trainers" ("id") ON DELETE CASCADE`},
		},
		{model: (*models.Booking)(nil)},
		{
			model: (*models.BookingSession)(nil),
			foreignKeys: []string{
				`("booking_id") REFERENCES "bookings" ("id") ON DELETE CASCADE`,
				`("session_id") REFERENCES "sessions" ("id") ON DELETE CASCADE`,
			},
		},
	}

	for _, t := range tables {
		q := db.NewCreateTable().Model(t.model).IfNotExists()
		for _, fk := range t.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", t.model, err)
		}
	}

	constraints := []string{
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'sessions_type_check') THEN ALTER TABLE sessions ADD CONSTRAINT sessions_type_check CHECK (type IN ('padel', 'fitness', 'tennis')); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'sessions_status_check') THEN ALTER TABLE sessions ADD CONSTRAINT sessions_status_check CHECK (status IN ('available', 'booked', 'cancelled')); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'sessions_capacity_check') THEN ALTER TABLE sessions ADD CONSTRAINT sessions_capacity_check CHECK (max_participants >= 1 AND current_participants >= 0 AND current_participants <= max_participants); END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_status_check') THEN ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('pending', 'confirmed', 'cancelled')); END IF; END $$`,
		`CREATE INDEX IF NOT EXISTS sessions_trainer_start_idx ON sessions (trainer_id, start_time)`,
		`CREATE INDEX IF NOT EXISTS sessions_type_status_idx ON sessions (type, status)`,
		`CREATE INDEX IF NOT EXISTS bookings_customer_email_idx ON bookings (customer_email)`,
		`CREATE INDEX IF NOT EXISTS bookings_status_idx ON bookings (status)`,
	}
	for _, stmt := range constraints {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			zap.L().Warn("schema constraint failed", zap.String("stmt", stmt), zap.Error(err))
		}
	}

	return nil
}
