package analysis

import "titan-screener/internal/domain"

// StructureClassifier labels the trend regime by comparing the most recent
// window of candles against the window before it. Pure function of the two
// windows; no state between calls.
type StructureClassifier struct {
	window int
}

// NewStructureClassifier builds a classifier comparing windows of the
// given length (default 20).
func NewStructureClassifier(window int) *StructureClassifier {
	if window <= 0 {
		window = 20
	}
	return &StructureClassifier{window: window}
}

// Classify returns BULLISH when the recent window makes both a higher high
// and a higher low than the prior window, BEARISH when both are lower, and
// SIDEWAYS otherwise. Any series shorter than two windows is SIDEWAYS.
func (c *StructureClassifier) Classify(series domain.Series) domain.StructureLabel {
	w := c.window
	if len(series) < 2*w {
		return domain.StructureSideways
	}

	recent := series[len(series)-w:]
	previous := series[len(series)-2*w : len(series)-w]

	curHigh, curLow := windowExtremes(recent)
	prevHigh, prevLow := windowExtremes(previous)

	switch {
	case curHigh > prevHigh && curLow > prevLow:
		return domain.StructureBullish
	case curHigh < prevHigh && curLow < prevLow:
		return domain.StructureBearish
	default:
		return domain.StructureSideways
	}
}

func windowExtremes(window domain.Series) (high, low float64) {
	high = window[0].High
	low = window[0].Low
	for _, c := range window[1:] {
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}
	return high, low
}
