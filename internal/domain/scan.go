package domain

import "time"

// Verdict is the rule engine's decision for one symbol at one scan tick.
// It is recomputed from the latest series only; no memory of prior ticks.
type Verdict string

const (
	VerdictBuy    Verdict = "BUY"
	VerdictWait   Verdict = "WAIT"
	VerdictNoData Verdict = "NO_DATA"
)

// TaskState tracks one symbol's task inside a bulk scan.
type TaskState string

const (
	TaskPending TaskState = "PENDING"
	TaskRunning TaskState = "RUNNING"
	TaskDone    TaskState = "DONE"
	TaskFailed  TaskState = "FAILED"
)

// ScanTask is owned by the orchestrator for the duration of one bulk scan.
type ScanTask struct {
	Symbol string    `json:"symbol"`
	State  TaskState `json:"state"`
	Err    string    `json:"error,omitempty"`
}

// SymbolReport is the full per-symbol result: verdict plus the structural
// features derived from the same series.
type SymbolReport struct {
	Symbol      string         `json:"symbol"`
	Verdict     Verdict        `json:"verdict"`
	Reason      string         `json:"reason,omitempty"`
	Price       float64        `json:"price"`
	RSI         float64        `json:"rsi"`
	VolumeX     float64        `json:"volumeX"`
	Zones       []Zone         `json:"zones"`
	Structure   StructureLabel `json:"structure"`
	Chart       []Candle       `json:"chartData,omitempty"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// GemResult is a symbol that passed every rule, enriched for display.
type GemResult struct {
	Symbol    string         `json:"symbol"`
	Price     float64        `json:"currentPrice"`
	RSI       float64        `json:"rsi"`
	VolumeX   float64        `json:"volumeX"`
	Zones     []Zone         `json:"zones"`
	Structure StructureLabel `json:"structure"`
	Chart     []Candle       `json:"chartData"`
}

// ScanSummary aggregates one bulk scan.
type ScanSummary struct {
	Total    int         `json:"total"`
	Scanned  int         `json:"scanned"`
	Skipped  int         `json:"skipped"`
	GemCount int         `json:"gemCount"`
	Failed   []ScanTask  `json:"failed,omitempty"`
	Duration string      `json:"duration"`
}

// ScanSnapshot is the latest completed bulk scan, replace-on-write.
type ScanSnapshot struct {
	Gems      []GemResult `json:"gems"`
	Summary   ScanSummary `json:"summary"`
	Timestamp time.Time   `json:"timestamp"`
}

// ScanEventType enumerates the streaming event kinds.
type ScanEventType string

const (
	EventStart    ScanEventType = "start"
	EventProgress ScanEventType = "progress"
	EventGem      ScanEventType = "gem"
	EventComplete ScanEventType = "complete"
	EventError    ScanEventType = "error"
)

// ScanEvent is one item of the incremental scan stream. Progress and gem
// events arrive in completion order, not submission order.
type ScanEvent struct {
	Type      ScanEventType `json:"type"`
	Total     int           `json:"total,omitempty"`
	Done      int           `json:"done,omitempty"`
	Percent   float64       `json:"percent,omitempty"`
	GemsFound int           `json:"gemsFound,omitempty"`
	Symbol    string        `json:"symbol,omitempty"`
	Error     string        `json:"error,omitempty"`
	Gem       *GemResult    `json:"gem,omitempty"`
	Snapshot  *ScanSnapshot `json:"snapshot,omitempty"`
}
