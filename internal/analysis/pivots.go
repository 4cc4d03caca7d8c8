package analysis

import "titan-screener/internal/domain"

// PivotExtractor finds strict local extrema in a candle series. A candle
// is a HIGH pivot when its high is strictly greater than the highs of all
// `order` neighbors on both sides; LOW pivots are symmetric on lows.
type PivotExtractor struct {
	order   int
	minBars int
}

// NewPivotExtractor builds an extractor with the given window radius and
// minimum series length. Values <= 0 fall back to the usual defaults
// (order 5, 50 bars).
func NewPivotExtractor(order, minBars int) *PivotExtractor {
	if order <= 0 {
		order = 5
	}
	if minBars <= 0 {
		minBars = 50
	}
	return &PivotExtractor{order: order, minBars: minBars}
}

// Extract returns HIGH and LOW pivots in series order. The first and last
// `order` candles can never be pivots. A series too short to analyze
// yields empty slices, not an error; the caller treats zero pivots as a
// valid outcome.
func (e *PivotExtractor) Extract(series domain.Series) (highs, lows []domain.Pivot) {
	n := len(series)
	if n < e.minBars || n < 2*e.order+1 {
		return nil, nil
	}

	for i := e.order; i < n-e.order; i++ {
		if e.isPivotHigh(series, i) {
			highs = append(highs, domain.Pivot{
				Price: series[i].High,
				Time:  series[i].Time,
				Kind:  domain.PivotHigh,
			})
		}
		if e.isPivotLow(series, i) {
			lows = append(lows, domain.Pivot{
				Price: series[i].Low,
				Time:  series[i].Time,
				Kind:  domain.PivotLow,
			})
		}
	}
	return highs, lows
}

func (e *PivotExtractor) isPivotHigh(series domain.Series, i int) bool {
	h := series[i].High
	for j := 1; j <= e.order; j++ {
		if series[i-j].High >= h || series[i+j].High >= h {
			return false
		}
	}
	return true
}

func (e *PivotExtractor) isPivotLow(series domain.Series, i int) bool {
	l := series[i].Low
	for j := 1; j <= e.order; j++ {
		if series[i-j].Low <= l || series[i+j].Low <= l {
			return false
		}
	}
	return true
}
