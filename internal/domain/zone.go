package domain

import "time"

// PivotKind distinguishes local maxima of highs from local minima of lows.
type PivotKind string

const (
	PivotHigh PivotKind = "HIGH"
	PivotLow  PivotKind = "LOW"
)

// Pivot is a local price extreme. Derived from a series, never mutated.
type Pivot struct {
	Price float64   `json:"price"`
	Time  time.Time `json:"time"`
	Kind  PivotKind `json:"kind"`
}

// ZoneKind labels a price band as supply or demand.
type ZoneKind string

const (
	ZoneResistance ZoneKind = "RESISTANCE"
	ZoneSupport    ZoneKind = "SUPPORT"
)

// Zone is a price band the market has revisited. Strength is the number of
// pivots backing it; StartDate/EndDate span the contributing pivots.
// Top >= Bottom always holds.
type Zone struct {
	Kind      ZoneKind  `json:"kind"`
	Top       float64   `json:"top"`
	Bottom    float64   `json:"bottom"`
	Strength  int       `json:"strength"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// Overlaps reports whether two zones share any part of their price interval.
func (z Zone) Overlaps(other Zone) bool {
	return !(z.Top < other.Bottom || z.Bottom > other.Top)
}

// Contains reports whether price falls inside the zone.
func (z Zone) Contains(price float64) bool {
	return z.Bottom <= price && price <= z.Top
}

// StructureLabel is the trend regime derived from recent candle windows.
type StructureLabel string

const (
	StructureBullish  StructureLabel = "BULLISH"
	StructureBearish  StructureLabel = "BEARISH"
	StructureSideways StructureLabel = "SIDEWAYS"
)
