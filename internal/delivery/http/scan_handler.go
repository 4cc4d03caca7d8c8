package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"titan-screener/internal/domain"
	"titan-screener/internal/usecase"
)

// ScanHandler exposes the screener over plain HTTP: single-symbol scan,
// rule audit, live bulk scan and the latest snapshot. Thin glue; all
// decisions live in the usecase layer.
type ScanHandler struct {
	scanner   *usecase.Scanner
	watchlist domain.WatchlistRepository
	repo      domain.ScanRepository
	log       zerolog.Logger
}

func NewScanHandler(scanner *usecase.Scanner, watchlist domain.WatchlistRepository, repo domain.ScanRepository, log zerolog.Logger) *ScanHandler {
	return &ScanHandler{
		scanner:   scanner,
		watchlist: watchlist,
		repo:      repo,
		log:       log,
	}
}

// HandleScanSymbol serves GET /api/scan/{symbol}.
func (h *ScanHandler) HandleScanSymbol(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	symbol := strings.TrimPrefix(r.URL.Path, "/api/scan/")
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	report, err := h.scanner.ScanSymbol(r.Context(), symbol)
	if err != nil {
		h.log.Warn().Str("symbol", symbol).Err(err).Msg("symbol scan failed")
		http.Error(w, "Scan failed", http.StatusBadGateway)
		return
	}
	if report.Verdict == domain.VerdictNoData {
		writeJSON(w, http.StatusNotFound, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleAudit serves GET /api/audit/{symbol}: the per-rule breakdown plus
// the recent close trend.
func (h *ScanHandler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	symbol := strings.TrimPrefix(r.URL.Path, "/api/audit/")
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	result, recentTrend, err := h.scanner.Audit(r.Context(), symbol)
	if err != nil {
		h.log.Warn().Str("symbol", symbol).Err(err).Msg("audit failed")
		writeJSON(w, http.StatusNotFound, map[string]string{
			"verdict": "ERROR",
			"reason":  "could not fetch live data",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":      symbol,
		"result":      result,
		"recentTrend": recentTrend,
	})
}

// HandleBulkScan serves GET /api/bulk_scan: a full live scan of the
// watchlist, blocking until complete.
func (h *ScanHandler) HandleBulkScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	symbols, err := h.watchlist.Symbols()
	if err != nil {
		h.log.Error().Err(err).Msg("watchlist load failed")
		http.Error(w, "Watchlist unavailable", http.StatusInternalServerError)
		return
	}

	snap := h.scanner.Scan(r.Context(), symbols)
	if snap == nil {
		// Client went away mid-scan.
		return
	}
	h.repo.SaveSnapshot(snap)
	writeJSON(w, http.StatusOK, snap)
}

// HandleLatest serves GET /api/latest: the snapshot of the most recent
// completed scan, if any.
func (h *ScanHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.repo.Latest()
	if snap == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "no scan completed yet"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
