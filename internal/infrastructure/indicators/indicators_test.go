package indicators

import (
	"math"
	"testing"
)

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func TestLastSMA(t *testing.T) {
	got, ok := LastSMA([]float64{1, 2, 3, 4, 5}, 5)
	if !ok {
		t.Fatal("expected defined SMA")
	}
	if math.Abs(got-3) > 1e-9 {
		t.Errorf("SMA = %f, want 3", got)
	}
}

func TestLastEMA_DefinedAtExactlyPeriodSamples(t *testing.T) {
	if _, ok := LastEMA(ramp(9), 10); ok {
		t.Error("EMA defined with 9 samples for period 10")
	}
	got, ok := LastEMA(ramp(10), 10)
	if !ok {
		t.Fatal("EMA undefined with exactly period samples")
	}
	if math.Abs(got-5.5) > 1e-9 {
		t.Errorf("first EMA value = %f, want the seed SMA 5.5", got)
	}
}

func TestLastRSI_NeedsPeriodPlusOne(t *testing.T) {
	if _, ok := LastRSI(ramp(14), 14); ok {
		t.Error("RSI defined with only period samples")
	}
	got, ok := LastRSI(ramp(15), 14)
	if !ok {
		t.Fatal("RSI undefined with period+1 samples")
	}
	// Monotonic gains saturate RSI.
	if got < 99 {
		t.Errorf("RSI of all-gains series = %f, want ~100", got)
	}
}

func TestUndefinedOnShortOrBadInput(t *testing.T) {
	if _, ok := LastEMA(nil, 50); ok {
		t.Error("EMA defined on empty input")
	}
	if _, ok := LastSMA(ramp(19), 20); ok {
		t.Error("SMA defined below its window")
	}
	if _, ok := LastRSI(ramp(10), 0); ok {
		t.Error("RSI defined for period 0")
	}
}
