package domain

import "errors"

// Feed and indicator failure modes. None of these are fatal to a bulk
// scan: the orchestrator maps them to NO_DATA/WAIT and keeps going.
var (
	// ErrNoData means the feed returned nothing, or fewer bars than the
	// configured minimum. Equivalent outcomes by contract.
	ErrNoData = errors.New("no data for symbol")

	// ErrInsufficientHistory means an indicator window could not be filled.
	ErrInsufficientHistory = errors.New("insufficient history for indicator")

	// ErrStaleData means the latest candle is older than the freshness
	// window. A stale series must never produce a BUY.
	ErrStaleData = errors.New("stale candle data")
)
