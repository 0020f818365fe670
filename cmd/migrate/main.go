// cmd/migrate/main.go
// Imports trainers, sessions and bookings from the legacy MySQL database
// into PostgreSQL. Re-running it skips rows that already exist.
//
// Usage:
//
//	MYSQL_DSN="user:pass@tcp(host:3306)/matchable?parseTime=true" \
//	DB_PASS="pgpass" \
//	go run ./cmd/migrate
package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/padraicbc/matchapi/config"
	bundb "github.com/padraicbc/matchapi/db"
	applog "github.com/padraicbc/matchapi/logger"
	"github.com/padraicbc/matchapi/models"
)

const batchSize = 500

func main() {
	ctx := context.Background()

	cfg := config.Load()
	log, err := applog.New(cfg.Debug, "matchapi-migrate")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	// --- MySQL ---
	if cfg.MySQLDSN == "" {
		log.Fatal("MYSQL_DSN required, e.g.: user:pass@tcp(host:3306)/matchable?parseTime=true")
	}
	myDB, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal("open mysql", zap.Error(err))
	}
	defer myDB.Close()
	myDB.SetMaxOpenConns(4)
	if err := myDB.PingContext(ctx); err != nil {
		log.Fatal("ping mysql", zap.Error(err))
	}
	log.Info("connected to MySQL")

	// --- PostgreSQL ---
	pgDB, err := bundb.Open(ctx, cfg)
	if err != nil {
		log.Fatal("open postgres", zap.Error(err))
	}
	defer pgDB.Close()
	log.Info("connected to PostgreSQL")

	if err := bundb.CreateTables(ctx, pgDB); err != nil {
		log.Fatal("create tables", zap.Error(err))
	}

	// Parents before children so foreign keys hold throughout.
	steps := []struct {
		name string
		fn   func() (int, error)
	}{
		{"trainers", func() (int, error) { return migrateTrainers(ctx, myDB, pgDB) }},
		{"sessions", func() (int, error) { return migrateSessions(ctx, myDB, pgDB) }},
		{"bookings", func() (int, error) { return migrateBookings(ctx, myDB, pgDB) }},
		{"booking_sessions", func() (int, error) { return migrateBookingSessions(ctx, myDB, pgDB) }},
	}

	for _, s := range steps {
		n, err := s.fn()
		if err != nil {
			log.Fatal("migrate", zap.String("table", s.name), zap.Error(err))
		}
		log.Info("rows migrated", zap.String("table", s.name), zap.Int("rows", n))
	}

	resetSequences(ctx, pgDB, log)
	log.Info("migration complete")
}

// bulkInsert inserts a batch, skipping rows that already exist (idempotent re-runs).
func bulkInsert[T any](ctx context.Context, pgDB *bun.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := pgDB.NewInsert().Model(&rows).On("CONFLICT DO NOTHING").Exec(ctx)
	return err
}

// copyRows runs query on MySQL, converts each row with scan and writes the
// results to PostgreSQL in batches.
func copyRows[T any](ctx context.Context, myDB *sql.DB, pgDB *bun.DB, query string, scan func(*sql.Rows) (T, error)) (int, error) {
	rows, err := myDB.QueryContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	batch := make([]T, 0, batchSize)
	total := 0
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return total, err
		}
		batch = append(batch, r)
		if len(batch) >= batchSize {
			if err := bulkInsert(ctx, pgDB, batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return total, err
	}
	if err := bulkInsert(ctx, pgDB, batch); err != nil {
		return total, err
	}
	return total + len(batch), nil
}

// --- per-table migrations ---

func migrateTrainers(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	return copyRows(ctx, myDB, pgDB,
		`SELECT id, name, email, phone, specializations, bio, is_active, created_at, updated_at
		 FROM trainers`,
		func(rows *sql.Rows) (models.Trainer, error) {
			var (
				t       models.Trainer
				specs   []byte
				bio     sql.NullString
				created sql.NullTime
				updated sql.NullTime
			)
			if err := rows.Scan(&t.ID, &t.Name, &t.Email, &t.Phone, &specs, &bio, &t.IsActive, &created, &updated); err != nil {
				return t, err
			}
			list, err := parseStrings(specs)
			if err != nil {
				return t, fmt.Errorf("trainer %d specializations: %w", t.ID, err)
			}
			t.Specializations = list
			t.Bio = nullStr(bio)
			t.CreatedAt, t.UpdatedAt = created.Time, updated.Time
			return t, nil
		})
}

func migrateSessions(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	return copyRows(ctx, myDB, pgDB,
		`SELECT id, trainer_id, type, start_time, end_time, duration_minutes, price,
		        max_participants, current_participants, status, description, created_at, updated_at
		 FROM sessions`,
		func(rows *sql.Rows) (models.Session, error) {
			var (
				s       models.Session
				desc    sql.NullString
				created sql.NullTime
				updated sql.NullTime
			)
			if err := rows.Scan(&s.ID, &s.TrainerID, &s.Type, &s.StartTime, &s.EndTime, &s.DurationMinutes, &s.Price,
				&s.MaxParticipants, &s.CurrentParticipants, &s.Status, &desc, &created, &updated); err != nil {
				return s, err
			}
			s.Description = nullStr(desc)
			s.CreatedAt, s.UpdatedAt = created.Time, updated.Time
			return s, nil
		})
}

func migrateBookings(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	return copyRows(ctx, myDB, pgDB,
		`SELECT id, booking_number, customer_name, customer_email, customer_phone, selected_sessions,
		        total_amount, status, notes, terms_accepted, created_at, updated_at
		 FROM bookings`,
		func(rows *sql.Rows) (models.Booking, error) {
			var (
				b        models.Booking
				selected []byte
				notes    sql.NullString
				created  sql.NullTime
				updated  sql.NullTime
			)
			if err := rows.Scan(&b.ID, &b.BookingNumber, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone, &selected,
				&b.TotalAmount, &b.Status, &notes, &b.TermsAccepted, &created, &updated); err != nil {
				return b, err
			}
			ids, err := parseIDs(selected)
			if err != nil {
				return b, fmt.Errorf("booking %d selected_sessions: %w", b.ID, err)
			}
			b.SelectedSessions = ids
			b.Notes = nullStr(notes)
			b.CreatedAt, b.UpdatedAt = created.Time, updated.Time
			return b, nil
		})
}

func migrateBookingSessions(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	return copyRows(ctx, myDB, pgDB,
		`SELECT id, booking_id, session_id, price_paid, created_at, updated_at
		 FROM booking_session`,
		func(rows *sql.Rows) (models.BookingSession, error) {
			var (
				bs      models.BookingSession
				created sql.NullTime
				updated sql.NullTime
			)
			if err := rows.Scan(&bs.ID, &bs.BookingID, &bs.SessionID, &bs.PricePaid, &created, &updated); err != nil {
				return bs, err
			}
			bs.CreatedAt, bs.UpdatedAt = created.Time, updated.Time
			return bs, nil
		})
}

// resetSequences advances each PG sequence to MAX(id) so new inserts don't conflict.
func resetSequences(ctx context.Context, pgDB *bun.DB, log *zap.Logger) {
	for _, table := range []string{"trainers", "sessions", "bookings", "booking_sessions"} {
		q := fmt.Sprintf(
			"SELECT setval('%s_id_seq', COALESCE((SELECT MAX(id) FROM %s), 1))",
			table, table,
		)
		if _, err := pgDB.ExecContext(ctx, q); err != nil {
			log.Warn("reset sequence", zap.String("table", table), zap.Error(err))
		}
	}
	log.Info("sequences reset")
}
