package usecase

import (
	"strings"
	"testing"
	"time"

	"titan-screener/internal/domain"
)

// trendSeries builds n candles stepping +2, +2, -2 from 100. The net
// uptrend keeps the close above both EMAs while the periodic losses hold
// RSI(14) near 67, inside the momentum band. Highs sit half a point above
// the close so a +2 step always clears the previous high.
func trendSeries(n int) domain.Series {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(domain.Series, n)
	price := 100.0
	for i := 0; i < n; i++ {
		if i > 0 {
			if i%3 == 2 {
				price -= 2
			} else {
				price += 2
			}
		}
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

func TestEvaluate_Buy(t *testing.T) {
	s := trendSeries(250)
	s[249].Volume = 5000 // volume blast against the 1000 baseline

	res := NewRuleEngine(DefaultRuleConfig()).Evaluate(s)

	if res.Verdict != domain.VerdictBuy {
		t.Fatalf("verdict = %s (reason %q), want BUY", res.Verdict, res.Reason)
	}
	if !res.Trend || !res.Momentum || !res.Volume || !res.Breakout {
		t.Errorf("rule breakdown = %+v, want all true", res)
	}
	if res.RSI <= 50 || res.RSI >= 75 {
		t.Errorf("RSI = %.1f, expected inside the momentum band", res.RSI)
	}
	if res.EMAFast <= res.EMASlow {
		t.Errorf("EMA50 %.2f not above EMA200 %.2f", res.EMAFast, res.EMASlow)
	}
}

func TestEvaluate_LowVolume(t *testing.T) {
	s := trendSeries(250) // every volume equal, no blast

	res := NewRuleEngine(DefaultRuleConfig()).Evaluate(s)

	if res.Verdict != domain.VerdictWait {
		t.Fatalf("verdict = %s, want WAIT", res.Verdict)
	}
	if res.Reason != "low volume" {
		t.Errorf("reason = %q, want low volume", res.Reason)
	}
	if !res.Trend || !res.Momentum {
		t.Errorf("trend/momentum should still pass: %+v", res)
	}
}

func TestEvaluate_NoBreakout(t *testing.T) {
	s := trendSeries(250)
	s[249].Volume = 5000
	s[248].High = s[249].Close + 1 // previous high not cleared

	res := NewRuleEngine(DefaultRuleConfig()).Evaluate(s)

	if res.Verdict != domain.VerdictWait || res.Reason != "no breakout" {
		t.Fatalf("got %s %q, want WAIT no breakout", res.Verdict, res.Reason)
	}
}

func TestEvaluate_Downtrend(t *testing.T) {
	s := trendSeries(250)
	// Mirror the series below its start so the close finishes under the EMAs.
	for i := range s {
		s[i].Open = 200 - s[i].Open
		s[i].Close = 200 - s[i].Close
		s[i].High, s[i].Low = 200-s[i].Low, 200-s[i].High
	}
	s[249].Volume = 5000

	res := NewRuleEngine(DefaultRuleConfig()).Evaluate(s)

	if res.Verdict != domain.VerdictWait || res.Reason != "downtrend" {
		t.Fatalf("got %s %q, want WAIT downtrend", res.Verdict, res.Reason)
	}
}

func TestEvaluate_OverboughtRSI(t *testing.T) {
	// Strictly rising closes saturate RSI above the ceiling.
	s := trendSeries(250)
	price := 100.0
	for i := range s {
		price += 2
		s[i].Close = price
		s[i].High = price + 0.5
		s[i].Low = price - 1.5
	}
	s[249].Volume = 5000

	res := NewRuleEngine(DefaultRuleConfig()).Evaluate(s)

	if res.Verdict != domain.VerdictWait {
		t.Fatalf("verdict = %s, want WAIT", res.Verdict)
	}
	if !strings.HasPrefix(res.Reason, "weak RSI") {
		t.Errorf("reason = %q, want weak RSI", res.Reason)
	}
}

func TestEvaluate_InsufficientHistory(t *testing.T) {
	// 100 bars is plenty for RSI but not for the 200-period EMA. An
	// undefined indicator must force WAIT, never BUY.
	s := trendSeries(100)
	s[99].Volume = 5000

	res := NewRuleEngine(DefaultRuleConfig()).Evaluate(s)

	if res.Verdict != domain.VerdictWait {
		t.Fatalf("verdict = %s, want WAIT", res.Verdict)
	}
	if res.Reason != domain.ErrInsufficientHistory.Error() {
		t.Errorf("reason = %q", res.Reason)
	}
	if res.Trend || res.Momentum || res.Volume || res.Breakout {
		t.Errorf("no rule may pass on undefined indicators: %+v", res)
	}
}

func TestEvaluate_NoData(t *testing.T) {
	for _, s := range []domain.Series{nil, trendSeries(1)} {
		res := NewRuleEngine(DefaultRuleConfig()).Evaluate(s)
		if res.Verdict != domain.VerdictNoData {
			t.Errorf("verdict for %d candles = %s, want NO_DATA", len(s), res.Verdict)
		}
	}
}
