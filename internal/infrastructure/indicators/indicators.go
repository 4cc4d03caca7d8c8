// Package indicators computes the EMA/RSI/SMA values the rule engine
// consumes. TA-Lib fills the warmup window with zeros, which a naive
// caller would happily compare against; every function here reports
// whether its value is actually defined so that short history forces a
// WAIT instead of a silent false pass.
package indicators

import talib "github.com/markcheno/go-talib"

// LastEMA returns the exponential moving average of the final sample.
// ok is false while fewer than period samples exist.
func LastEMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	out := talib.Ema(values, period)
	return out[len(out)-1], true
}

// LastRSI returns the relative strength index of the final sample.
// RSI needs period+1 samples before its first defined value.
func LastRSI(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period+1 {
		return 0, false
	}
	out := talib.Rsi(values, period)
	return out[len(out)-1], true
}

// LastSMA returns the simple moving average of the final sample. Used for
// the volume baseline.
func LastSMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	out := talib.Sma(values, period)
	return out[len(out)-1], true
}
