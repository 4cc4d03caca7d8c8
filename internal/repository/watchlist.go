package repository

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// FileWatchlistRepository reads the symbol universe from a plain text
// file, one symbol per line. Bare NSE symbols get a ".NS" suffix; all-digit
// BSE codes get ".BO". Duplicates are collapsed.
type FileWatchlistRepository struct {
	path string
}

func NewFileWatchlistRepository(path string) *FileWatchlistRepository {
	return &FileWatchlistRepository{path: path}
}

// Symbols returns the normalized, deduplicated watchlist. The file is
// re-read every call so edits apply to the next scan without a restart.
func (r *FileWatchlistRepository) Symbols() ([]string, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open watchlist: %w", err)
	}
	defer f.Close()

	seen := make(map[string]struct{})
	var symbols []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		s = normalizeSymbol(s)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		symbols = append(symbols, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}

	sort.Strings(symbols)
	return symbols, nil
}

func normalizeSymbol(s string) string {
	s = strings.ToUpper(s)
	if strings.HasSuffix(s, ".NS") || strings.HasSuffix(s, ".BO") {
		return s
	}
	if isAllDigits(s) {
		return s + ".BO"
	}
	return s + ".NS"
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
