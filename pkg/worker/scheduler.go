package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"alkoholove.dev/Alkoholove/configs"
	"alkoholove.dev/Alkoholove/pkg/service"
)

type tokenPurger interface {
	PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

type facetRebuilder interface {
	Rebuild(ctx context.Context) error
}

type socialReconciler interface {
	Reconcile(ctx context.Context) (int64, error)
}

// Scheduler runs the background maintenance jobs: the facet index
// rebuild, the token blacklist purge and the follow-counter
// reconciliation. None of them block foreground writes.
type Scheduler struct {
	cron   *cron.Cron
	conf   *configs.Config
	tokens tokenPurger
	facets facetRebuilder
	social socialReconciler
	logger *zap.Logger
}

func NewScheduler(conf *configs.Config, tokens tokenPurger, facets *service.FacetService, social *service.SocialService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		conf:   conf,
		tokens: tokens,
		facets: facets,
		social: social,
		logger: logger,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.conf.Worker.FacetRebuildSchedule, s.rebuildFacets); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.conf.Worker.TokenPurgeSchedule, s.purgeTokens); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.conf.Worker.ReconcileSchedule, s.reconcile); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.String("facet_rebuild", s.conf.Worker.FacetRebuildSchedule),
		zap.String("token_purge", s.conf.Worker.TokenPurgeSchedule),
		zap.String("reconcile", s.conf.Worker.ReconcileSchedule))

	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) rebuildFacets() {
	// errors are already logged by the service; the next tick retries
	_ = s.facets.Rebuild(context.Background())
}

func (s *Scheduler) purgeTokens() {
	purged, err := s.tokens.PurgeExpiredTokens(context.Background(), time.Now().UTC())
	if err != nil {
		s.logger.Error("token purge failed", zap.Error(err))

		return
	}

	if purged > 0 {
		s.logger.Info("expired tokens purged", zap.Int64("count", purged))
	}
}

func (s *Scheduler) reconcile() {
	if _, err := s.social.Reconcile(context.Background()); err != nil {
		s.logger.Error("social reconciliation failed", zap.Error(err))
	}
}
