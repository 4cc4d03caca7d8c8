package domain

import "context"

// CandleFeed supplies historical candles for a symbol at a bar interval.
// Implementations own their retry/throttle policy; a short or empty
// response surfaces as ErrNoData, not as a transport failure.
type CandleFeed interface {
	Candles(ctx context.Context, symbol, interval string, limit int) (Series, error)
}

// ScanRepository holds the latest completed scan snapshot.
type ScanRepository interface {
	SaveSnapshot(snap *ScanSnapshot)
	Latest() *ScanSnapshot
}

// WatchlistRepository supplies the symbol universe to scan.
type WatchlistRepository interface {
	Symbols() ([]string, error)
}

// DeviceTokenRepository manages push notification device tokens.
type DeviceTokenRepository interface {
	RegisterToken(token, platform string, timestamp int64) error
	UnregisterToken(token string) error
	GetAllTokens() []string
	GetTokenCount() int
}
