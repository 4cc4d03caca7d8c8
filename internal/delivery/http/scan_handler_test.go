package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"titan-screener/internal/analysis"
	"titan-screener/internal/domain"
	"titan-screener/internal/repository"
	"titan-screener/internal/usecase"
)

type stubFeed struct {
	data map[string]domain.Series
}

func (f *stubFeed) Candles(_ context.Context, symbol, _ string, _ int) (domain.Series, error) {
	s, ok := f.data[symbol]
	if !ok {
		return nil, domain.ErrNoData
	}
	return s, nil
}

type stubWatchlist struct {
	syms []string
	err  error
}

func (w *stubWatchlist) Symbols() ([]string, error) { return w.syms, w.err }

// risingSeries trends straight up: trend passes, saturated RSI forces WAIT.
func risingSeries(n int) domain.Series {
	base := time.Now().AddDate(0, 0, -n)
	s := make(domain.Series, n)
	for i := range s {
		price := 100 + float64(i)
		s[i] = domain.Candle{
			Time:   base.AddDate(0, 0, i),
			Open:   price - 1,
			High:   price + 0.5,
			Low:    price - 1.5,
			Close:  price,
			Volume: 1000,
		}
	}
	return s
}

func newTestHandler(feed domain.CandleFeed, watchlist domain.WatchlistRepository) (*ScanHandler, *repository.InMemoryScanRepository) {
	scanner := usecase.NewScanner(
		usecase.DefaultScannerConfig(),
		feed,
		analysis.NewZoneDetector(analysis.DefaultZoneConfig()),
		analysis.NewStructureClassifier(20),
		usecase.NewRuleEngine(usecase.DefaultRuleConfig()),
		zerolog.Nop(),
	)
	repo := repository.NewInMemoryScanRepository()
	return NewScanHandler(scanner, watchlist, repo, zerolog.Nop()), repo
}

func TestHandleScanSymbol(t *testing.T) {
	feed := &stubFeed{data: map[string]domain.Series{
		"TCS.NS": risingSeries(250),
	}}
	h, _ := newTestHandler(feed, &stubWatchlist{})

	rec := httptest.NewRecorder()
	h.HandleScanSymbol(rec, httptest.NewRequest(http.MethodGet, "/api/scan/TCS.NS", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var report domain.SymbolReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Symbol != "TCS.NS" || report.Verdict != domain.VerdictWait {
		t.Errorf("report = %+v", report)
	}
}

func TestHandleScanSymbol_NoData(t *testing.T) {
	h, _ := newTestHandler(&stubFeed{}, &stubWatchlist{})

	rec := httptest.NewRecorder()
	h.HandleScanSymbol(rec, httptest.NewRequest(http.MethodGet, "/api/scan/GHOST.NS", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleScanSymbol_BadRequests(t *testing.T) {
	h, _ := newTestHandler(&stubFeed{}, &stubWatchlist{})

	rec := httptest.NewRecorder()
	h.HandleScanSymbol(rec, httptest.NewRequest(http.MethodPost, "/api/scan/TCS.NS", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleScanSymbol(rec, httptest.NewRequest(http.MethodGet, "/api/scan/", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty symbol status = %d, want 400", rec.Code)
	}
}

func TestHandleBulkScan_SavesSnapshot(t *testing.T) {
	feed := &stubFeed{data: map[string]domain.Series{
		"A.NS": risingSeries(250),
		"B.NS": risingSeries(250),
	}}
	h, repo := newTestHandler(feed, &stubWatchlist{syms: []string{"A.NS", "B.NS", "C.NS"}})

	rec := httptest.NewRecorder()
	h.HandleBulkScan(rec, httptest.NewRequest(http.MethodGet, "/api/bulk_scan", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	snap := repo.Latest()
	if snap == nil {
		t.Fatal("snapshot not saved")
	}
	if snap.Summary.Total != 3 || snap.Summary.Scanned != 2 || snap.Summary.Skipped != 1 {
		t.Errorf("summary = %+v", snap.Summary)
	}
}

func TestHandleBulkScan_WatchlistError(t *testing.T) {
	h, _ := newTestHandler(&stubFeed{}, &stubWatchlist{err: errors.New("disk gone")})

	rec := httptest.NewRecorder()
	h.HandleBulkScan(rec, httptest.NewRequest(http.MethodGet, "/api/bulk_scan", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestHandleLatest(t *testing.T) {
	h, repo := newTestHandler(&stubFeed{}, &stubWatchlist{})

	rec := httptest.NewRecorder()
	h.HandleLatest(rec, httptest.NewRequest(http.MethodGet, "/api/latest", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var empty map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&empty); err != nil {
		t.Fatal(err)
	}
	if empty["status"] == "" {
		t.Error("expected a no-scan status message")
	}

	repo.SaveSnapshot(&domain.ScanSnapshot{Timestamp: time.Now()})
	rec = httptest.NewRecorder()
	h.HandleLatest(rec, httptest.NewRequest(http.MethodGet, "/api/latest", nil))
	var snap domain.ScanSnapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Timestamp.IsZero() {
		t.Error("expected the saved snapshot")
	}
}

func TestHandleAudit(t *testing.T) {
	feed := &stubFeed{data: map[string]domain.Series{
		"TCS.NS": risingSeries(250),
	}}
	h, _ := newTestHandler(feed, &stubWatchlist{})

	rec := httptest.NewRecorder()
	h.HandleAudit(rec, httptest.NewRequest(http.MethodGet, "/api/audit/TCS.NS", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var payload struct {
		Symbol      string             `json:"symbol"`
		Result      usecase.RuleResult `json:"result"`
		RecentTrend []float64          `json:"recentTrend"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if payload.Symbol != "TCS.NS" || len(payload.RecentTrend) != 5 {
		t.Errorf("payload = %+v", payload)
	}
	if payload.Result.Verdict != domain.VerdictWait {
		t.Errorf("verdict = %s, want WAIT", payload.Result.Verdict)
	}
}
