package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"titan-screener/internal/analysis"
	"titan-screener/internal/domain"
)

// ScannerConfig bounds the bulk scan. Workers is a deliberate constant
// bound, not proportional to the symbol count, to keep pressure off the
// upstream feed.
type ScannerConfig struct {
	Workers       int
	Interval      string // bar interval requested from the feed
	Bars          int    // candles fetched per symbol
	ChartBars     int    // trailing candles included in gem payloads
	FreshnessDays int    // candles older than this never produce a BUY
}

func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		Workers:       4,
		Interval:      "1d",
		Bars:          500,
		ChartBars:     2000,
		FreshnessDays: 7,
	}
}

// Scanner runs the fetch -> indicators -> rules -> zones/structure
// pipeline over many symbols under a bounded worker pool and emits an
// incremental event stream.
type Scanner struct {
	cfg       ScannerConfig
	feed      domain.CandleFeed
	zones     *analysis.ZoneDetector
	structure *analysis.StructureClassifier
	rules     *RuleEngine
	log       zerolog.Logger
}

func NewScanner(cfg ScannerConfig, feed domain.CandleFeed, zones *analysis.ZoneDetector, structure *analysis.StructureClassifier, rules *RuleEngine, log zerolog.Logger) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Interval == "" {
		cfg.Interval = "1d"
	}
	if cfg.FreshnessDays <= 0 {
		cfg.FreshnessDays = 7
	}
	return &Scanner{
		cfg:       cfg,
		feed:      feed,
		zones:     zones,
		structure: structure,
		rules:     rules,
		log:       log,
	}
}

// ScanSymbol runs the full pipeline for one symbol. ErrNoData from the
// feed becomes a NO_DATA report, not an error; only transport failures
// surface as errors.
func (s *Scanner) ScanSymbol(ctx context.Context, symbol string) (*domain.SymbolReport, error) {
	series, err := s.feed.Candles(ctx, symbol, s.cfg.Interval, s.cfg.Bars)
	if errors.Is(err, domain.ErrNoData) {
		return &domain.SymbolReport{
			Symbol:      symbol,
			Verdict:     domain.VerdictNoData,
			Reason:      "feed returned no usable data",
			LastUpdated: time.Now(),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	res := s.rules.Evaluate(series)

	report := &domain.SymbolReport{
		Symbol:      symbol,
		Verdict:     res.Verdict,
		Reason:      res.Reason,
		Price:       res.Price,
		RSI:         res.RSI,
		VolumeX:     res.VolumeX,
		Zones:       s.zones.Detect(series),
		Structure:   s.structure.Classify(series),
		Chart:       series.Tail(s.cfg.ChartBars),
		LastUpdated: time.Now(),
	}

	// Freshness guard: a stale series must never produce a live BUY, even
	// when every rule condition holds.
	if report.Verdict == domain.VerdictBuy && s.isStale(series) {
		report.Verdict = domain.VerdictWait
		report.Reason = domain.ErrStaleData.Error()
	}
	return report, nil
}

func (s *Scanner) isStale(series domain.Series) bool {
	last, ok := series.Last()
	if !ok {
		return true
	}
	maxAge := time.Duration(s.cfg.FreshnessDays) * 24 * time.Hour
	return time.Since(last.Time) > maxAge
}

// Audit returns the per-rule breakdown for one symbol together with its
// last five closes, the payload a reviewer (human or otherwise) needs to
// second-guess a setup.
func (s *Scanner) Audit(ctx context.Context, symbol string) (*RuleResult, []float64, error) {
	series, err := s.feed.Candles(ctx, symbol, s.cfg.Interval, s.cfg.Bars)
	if err != nil {
		return nil, nil, err
	}
	res := s.rules.Evaluate(series)
	trend := series.Tail(5).Closes()
	return &res, trend, nil
}

// Scan runs a bulk scan to completion and returns the snapshot. It is the
// batch face of ScanStream. A cancelled context yields nil.
func (s *Scanner) Scan(ctx context.Context, symbols []string) *domain.ScanSnapshot {
	var snap *domain.ScanSnapshot
	for ev := range s.ScanStream(ctx, symbols) {
		if ev.Type == domain.EventComplete {
			snap = ev.Snapshot
		}
	}
	return snap
}

// ScanStream scans every symbol under the worker pool and emits events on
// the returned channel: start, one progress per completed symbol
// (completion order, not submission order), gem on every BUY, and a
// terminal complete carrying the snapshot. A per-symbol failure becomes a
// progress event with the error attached; it never aborts the scan. When
// ctx is cancelled, in-flight tasks finish but their events are discarded
// and the channel closes.
func (s *Scanner) ScanStream(ctx context.Context, symbols []string) <-chan domain.ScanEvent {
	events := make(chan domain.ScanEvent, 16)

	go func() {
		defer close(events)

		start := time.Now()
		total := len(symbols)
		s.emit(ctx, events, domain.ScanEvent{Type: domain.EventStart, Total: total})
		s.log.Info().Int("symbols", total).Msg("bulk scan started")

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			done    int
			scanned int
			skipped int
			gems    []domain.GemResult
			failed  []domain.ScanTask
		)
		sem := make(chan struct{}, s.cfg.Workers)

		for _, sym := range symbols {
			wg.Add(1)
			go func(symbol string) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				report, err := s.scanTask(ctx, symbol)

				// Events are emitted while the lock is held so the done
				// counts arrive monotonic on the channel; two workers
				// finishing together must not deliver done=2 before done=1.
				mu.Lock()
				done++
				progress := domain.ScanEvent{
					Type:    domain.EventProgress,
					Symbol:  symbol,
					Done:    done,
					Total:   total,
					Percent: float64(done) / float64(total) * 100,
				}
				var gemEvent *domain.ScanEvent
				switch {
				case err != nil:
					skipped++
					failed = append(failed, domain.ScanTask{Symbol: symbol, State: domain.TaskFailed, Err: err.Error()})
					progress.Error = err.Error()
				case report.Verdict == domain.VerdictNoData:
					skipped++
				case report.Verdict == domain.VerdictBuy:
					scanned++
					gem := domain.GemResult{
						Symbol:    report.Symbol,
						Price:     report.Price,
						RSI:       report.RSI,
						VolumeX:   report.VolumeX,
						Zones:     report.Zones,
						Structure: report.Structure,
						Chart:     report.Chart,
					}
					gems = append(gems, gem)
					gemEvent = &domain.ScanEvent{Type: domain.EventGem, Symbol: symbol, Gem: &gem}
				default:
					scanned++
				}
				progress.GemsFound = len(gems)
				s.emit(ctx, events, progress)
				if gemEvent != nil {
					s.emit(ctx, events, *gemEvent)
				}
				mu.Unlock()
			}(sym)
		}

		wg.Wait()

		if ctx.Err() != nil {
			s.log.Warn().Msg("bulk scan cancelled, results discarded")
			return
		}

		snap := &domain.ScanSnapshot{
			Gems: gems,
			Summary: domain.ScanSummary{
				Total:    total,
				Scanned:  scanned,
				Skipped:  skipped,
				GemCount: len(gems),
				Failed:   failed,
				Duration: time.Since(start).Round(time.Millisecond).String(),
			},
			Timestamp: time.Now(),
		}
		s.emit(ctx, events, domain.ScanEvent{Type: domain.EventComplete, Snapshot: snap})
		s.log.Info().
			Int("scanned", scanned).
			Int("skipped", skipped).
			Int("gems", len(gems)).
			Dur("took", time.Since(start)).
			Msg("bulk scan complete")
	}()

	return events
}

// scanTask wraps ScanSymbol with the task boundary: any failure is caught
// and logged here so the scan as a whole keeps going.
func (s *Scanner) scanTask(ctx context.Context, symbol string) (report *domain.SymbolReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan %s: panic: %v", symbol, r)
			s.log.Error().Str("symbol", symbol).Interface("panic", r).Msg("scan task panicked")
		}
	}()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	report, err = s.ScanSymbol(ctx, symbol)
	if err != nil {
		s.log.Warn().Str("symbol", symbol).Err(err).Msg("symbol scan failed")
	}
	return report, err
}

// emit delivers an event unless the consumer is gone.
func (s *Scanner) emit(ctx context.Context, events chan<- domain.ScanEvent, ev domain.ScanEvent) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
