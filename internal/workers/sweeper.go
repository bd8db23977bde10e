package workers

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// PostingExpirer marks catalog postings outside the retention window.
type PostingExpirer interface {
	ExpireStalePostings(ctx context.Context) (int64, error)
}

// DraftPurger drops cover-letter drafts past their expiry.
type DraftPurger interface {
	PurgeExpiredDrafts(ctx context.Context) (int64, error)
}

// Sweeper periodically expires stale catalog postings and purges expired
// drafts. The two sweeps are independent so one failing does not starve
// the other.
type Sweeper struct {
	Catalog  PostingExpirer
	Drafts   DraftPurger
	Interval time.Duration

	Logger *logrus.Logger
}

func (s *Sweeper) Start(ctx context.Context) error {
	if s.Catalog == nil {
		return errors.New("Sweeper missing dependency: Catalog must be set")
	}
	if s.Drafts == nil {
		return errors.New("Sweeper missing dependency: Drafts must be set")
	}
	if s.Interval <= 0 {
		s.Interval = time.Hour
	}
	if s.Logger == nil {
		s.Logger = logrus.New()
	}

	go s.run(ctx)
	return nil
}

func (s *Sweeper) run(ctx context.Context) {
	// One pass at startup so a long interval cannot delay the first sweep.
	s.sweep(ctx)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if n, err := s.Catalog.ExpireStalePostings(ctx); err != nil {
		s.Logger.WithError(err).Error("posting sweep failed")
	} else if n > 0 {
		s.Logger.WithField("expired", n).Info("stale postings expired")
	}

	if n, err := s.Drafts.PurgeExpiredDrafts(ctx); err != nil {
		s.Logger.WithError(err).Error("draft sweep failed")
	} else if n > 0 {
		s.Logger.WithField("purged", n).Info("expired drafts purged")
	}
}
