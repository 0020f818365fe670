// Package catalog serves read-only views of bookable sessions and trainers.
package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/padraicbc/matchapi/cache"
	"github.com/padraicbc/matchapi/models"
	"github.com/padraicbc/matchapi/store"
)

// PageSize is the number of sessions per listing page.
const PageSize = 20

const trainersKey = "catalog:trainers:"

// Repository is the storage the catalog reads from.
type Repository interface {
	AvailableSessions(ctx context.Context, f store.SessionFilter, now time.Time, limit, offset int) ([]models.Session, int, error)
	GetSession(ctx context.Context, id int64) (*models.Session, error)
	ActiveTrainers(ctx context.Context, typ models.SessionType) ([]models.Trainer, error)
}

// Listing is one page of available sessions plus filter metadata.
type Listing struct {
	Sessions []models.Session
	Page     int
	PerPage  int
	Total    int
	Types    []models.SessionType
	Trainers []models.Trainer
}

// LastPage is the number of the final page, at least 1.
func (l *Listing) LastPage() int {
	if l.Total == 0 {
		return 1
	}
	return (l.Total + l.PerPage - 1) / l.PerPage
}

// From and To are the 1-based positions of the first and last session on
// the page. Both are zero for an empty page.
func (l *Listing) From() int {
	if len(l.Sessions) == 0 {
		return 0
	}
	return (l.Page-1)*l.PerPage + 1
}

func (l *Listing) To() int {
	if len(l.Sessions) == 0 {
		return 0
	}
	return l.From() + len(l.Sessions) - 1
}

// Service answers catalog queries.
type Service struct {
	repo  Repository
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
	now   func() time.Time
}

// NewService returns a Service. A nil cache disables caching.
func NewService(repo Repository, c cache.Cache, ttl time.Duration, log *zap.Logger) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{repo: repo, cache: c, ttl: ttl, log: log, now: time.Now}
}

// ListAvailable returns page (1-based) of sessions that are available and in
// the future, with the session types and active trainers for filtering.
func (s *Service) ListAvailable(ctx context.Context, f store.SessionFilter, page int) (*Listing, error) {
	if page < 1 {
		page = 1
	}

	sessions, total, err := s.repo.AvailableSessions(ctx, f, s.now(), PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, err
	}
	trainers, err := s.Trainers(ctx, "")
	if err != nil {
		return nil, err
	}

	return &Listing{
		Sessions: sessions,
		Page:     page,
		PerPage:  PageSize,
		Total:    total,
		Types:    models.SessionTypes,
		Trainers: trainers,
	}, nil
}

// Session returns one session with its trainer, in any status.
func (s *Service) Session(ctx context.Context, id int64) (*models.Session, error) {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("session %d: %w", id, err)
	}
	return session, nil
}

// Trainers returns active trainers, limited to those teaching typ when it
// is set. Results are cached; cache failures fall through to the store.
func (s *Service) Trainers(ctx context.Context, typ models.SessionType) ([]models.Trainer, error) {
	key := trainersKey + string(typ)
	if typ == "" {
		key += "all"
	}

	var trainers []models.Trainer
	hit, err := s.cache.Get(ctx, key, &trainers)
	if err != nil {
		s.log.Warn("catalog cache read", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return trainers, nil
	}

	trainers, err = s.repo.ActiveTrainers(ctx, typ)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, trainers, s.ttl); err != nil {
		s.log.Warn("catalog cache write", zap.String("key", key), zap.Error(err))
	}
	return trainers, nil
}

// InvalidateTrainers drops every cached trainer list.
func (s *Service) InvalidateTrainers(ctx context.Context) error {
	keys := []string{trainersKey + "all"}
	for _, t := range models.SessionTypes {
		keys = append(keys, trainersKey+string(t))
	}
	return s.cache.Delete(ctx, keys...)
}
