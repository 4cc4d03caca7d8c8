package usecase

import (
	"fmt"

	"titan-screener/internal/domain"
	"titan-screener/internal/infrastructure/indicators"
)

// RuleConfig carries the Titan Criteria thresholds. Injected at
// construction so tests can vary them.
type RuleConfig struct {
	EMAFast      int     // trend EMA, 50
	EMASlow      int     // long trend EMA, 200
	RSIPeriod    int     // 14
	VolSMAPeriod int     // volume baseline, 20
	RSIMin       float64 // momentum floor, 50
	RSIMax       float64 // momentum ceiling, 75
	VolumeMult   float64 // volume blast multiple, 1.5
}

func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		EMAFast:      50,
		EMASlow:      200,
		RSIPeriod:    14,
		VolSMAPeriod: 20,
		RSIMin:       50,
		RSIMax:       75,
		VolumeMult:   1.5,
	}
}

// RuleResult is the rule engine's full output: the verdict plus the
// per-rule breakdown used by the audit endpoint.
type RuleResult struct {
	Verdict  domain.Verdict `json:"verdict"`
	Reason   string         `json:"reason,omitempty"`
	Trend    bool           `json:"trend"`
	Momentum bool           `json:"momentum"`
	Volume   bool           `json:"volume"`
	Breakout bool           `json:"breakout"`
	Price    float64        `json:"price"`
	RSI      float64        `json:"rsi"`
	EMAFast  float64        `json:"emaFast"`
	EMASlow  float64        `json:"emaSlow"`
	VolumeX  float64        `json:"volumeX"`
}

// RuleEngine evaluates the four Titan momentum conditions on the most
// recent candle. Stateless; every call recomputes from the series alone.
type RuleEngine struct {
	cfg RuleConfig
}

func NewRuleEngine(cfg RuleConfig) *RuleEngine {
	return &RuleEngine{cfg: cfg}
}

// Evaluate returns BUY only when all four conditions hold on the latest
// candle. A missing series is NO_DATA; an undefined indicator (not enough
// history for its window) short-circuits to WAIT and never passes a rule.
func (e *RuleEngine) Evaluate(series domain.Series) RuleResult {
	if len(series) < 2 {
		return RuleResult{Verdict: domain.VerdictNoData, Reason: "no candle data"}
	}

	closes := series.Closes()
	volumes := series.Volumes()
	curr := series[len(series)-1]
	prev := series[len(series)-2]

	emaFast, okFast := indicators.LastEMA(closes, e.cfg.EMAFast)
	emaSlow, okSlow := indicators.LastEMA(closes, e.cfg.EMASlow)
	rsi, okRSI := indicators.LastRSI(closes, e.cfg.RSIPeriod)
	volSMA, okVol := indicators.LastSMA(volumes, e.cfg.VolSMAPeriod)

	if !okFast || !okSlow || !okRSI || !okVol {
		return RuleResult{
			Verdict: domain.VerdictWait,
			Reason:  domain.ErrInsufficientHistory.Error(),
			Price:   curr.Close,
		}
	}

	if volSMA == 0 {
		volSMA = 1 // avoid zero division on dead volume
	}
	volumeX := curr.Volume / volSMA

	res := RuleResult{
		Trend:    curr.Close > emaFast && emaFast > emaSlow,
		Momentum: e.cfg.RSIMin < rsi && rsi < e.cfg.RSIMax,
		Volume:   curr.Volume > volSMA*e.cfg.VolumeMult,
		Breakout: curr.Close > prev.High,
		Price:    curr.Close,
		RSI:      rsi,
		EMAFast:  emaFast,
		EMASlow:  emaSlow,
		VolumeX:  volumeX,
	}

	switch {
	case res.Trend && res.Momentum && res.Volume && res.Breakout:
		res.Verdict = domain.VerdictBuy
	case !res.Trend:
		res.Verdict = domain.VerdictWait
		res.Reason = "downtrend"
	case !res.Momentum:
		res.Verdict = domain.VerdictWait
		res.Reason = fmt.Sprintf("weak RSI (%.0f)", rsi)
	case !res.Volume:
		res.Verdict = domain.VerdictWait
		res.Reason = "low volume"
	default:
		res.Verdict = domain.VerdictWait
		res.Reason = "no breakout"
	}
	return res
}
