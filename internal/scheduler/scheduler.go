package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"titan-screener/internal/domain"
	"titan-screener/internal/usecase"
)

// Scheduler runs background bulk scans on a cron schedule and publishes
// each snapshot to the scan repository. Websocket clients watch scans
// live; HTTP readers pick up the latest snapshot.
type Scheduler struct {
	cron      *cron.Cron
	scanner   *usecase.Scanner
	watchlist domain.WatchlistRepository
	repo      domain.ScanRepository
	notifier  *usecase.GemNotifier
	log       zerolog.Logger
	ctx       context.Context
}

func New(ctx context.Context, scanner *usecase.Scanner, watchlist domain.WatchlistRepository, repo domain.ScanRepository, notifier *usecase.GemNotifier, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		scanner:   scanner,
		watchlist: watchlist,
		repo:      repo,
		notifier:  notifier,
		log:       log,
		ctx:       ctx,
	}
}

// Register adds the scan job. spec is a standard 5-field cron expression.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runScan); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling; a scan already running finishes on its own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runScan() {
	symbols, err := s.watchlist.Symbols()
	if err != nil {
		s.log.Error().Err(err).Msg("scheduled scan: watchlist load failed")
		return
	}

	snap := s.scanner.Scan(s.ctx, symbols)
	if snap == nil {
		return // shutting down
	}
	s.repo.SaveSnapshot(snap)

	if s.notifier != nil && len(snap.Gems) > 0 {
		s.notifier.NotifyGems(snap.Gems)
	}
}
