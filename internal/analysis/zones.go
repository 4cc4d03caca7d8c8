package analysis

import (
	"sort"

	"titan-screener/internal/domain"
)

// ZoneConfig carries the tunables for supply/demand zone detection. All of
// them are injected at construction so tests can vary them freely.
type ZoneConfig struct {
	PivotOrder   int     // window radius for pivot extraction
	MinBars      int     // minimum series length to analyze at all
	BandPct      float64 // half-width of the zone band around a centroid, e.g. 0.005
	ProximityPct float64 // zones further than this from the last close are dropped, e.g. 0.20
	MinTouches   int     // minimum pivots backing a surviving zone
	MaxZones     int     // cap on surviving zones after ranking
}

// DefaultZoneConfig mirrors the production thresholds: order-5 pivots,
// +/-0.5% centroid bands, 20% proximity, 2 touches, top 10 zones.
func DefaultZoneConfig() ZoneConfig {
	return ZoneConfig{
		PivotOrder:   5,
		MinBars:      50,
		BandPct:      0.005,
		ProximityPct: 0.20,
		MinTouches:   2,
		MaxZones:     10,
	}
}

// ZoneDetector turns a candle series into a ranked, non-overlapping set of
// supply/demand zones: pivot extraction, price clustering, centroid-band
// construction, proximity filtering and strength-biased deduplication.
type ZoneDetector struct {
	cfg    ZoneConfig
	pivots *PivotExtractor
}

func NewZoneDetector(cfg ZoneConfig) *ZoneDetector {
	if cfg.MinTouches < 2 {
		cfg.MinTouches = 2
	}
	if cfg.MaxZones <= 0 {
		cfg.MaxZones = 10
	}
	return &ZoneDetector{
		cfg:    cfg,
		pivots: NewPivotExtractor(cfg.PivotOrder, cfg.MinBars),
	}
}

// Detect computes the zone set for one series. Too little data, or too few
// pivots to cluster, yields an empty set and no error. Every call
// recomputes from scratch; nothing is cached between invocations.
func (d *ZoneDetector) Detect(series domain.Series) []domain.Zone {
	if len(series) < d.cfg.MinBars {
		return nil
	}
	last, ok := series.Last()
	if !ok {
		return nil
	}
	currentPrice := last.Close

	highPivots, lowPivots := d.pivots.Extract(series)

	var zones []domain.Zone
	for _, c := range clusterPivots(highPivots, d.cfg.MinTouches) {
		zones = append(zones, d.buildZone(domain.ZoneResistance, c))
	}
	for _, c := range clusterPivots(lowPivots, d.cfg.MinTouches) {
		zones = append(zones, d.buildZone(domain.ZoneSupport, c))
	}

	return d.FilterAndDedupe(zones, currentPrice)
}

// buildZone creates a fixed band around the cluster centroid. Strength is
// the touch count; the date span covers the contributing pivots.
func (d *ZoneDetector) buildZone(kind domain.ZoneKind, c priceCluster) domain.Zone {
	band := c.Centroid * d.cfg.BandPct
	z := domain.Zone{
		Kind:     kind,
		Top:      c.Centroid + band,
		Bottom:   c.Centroid - band,
		Strength: len(c.Pivots),
	}
	for i, p := range c.Pivots {
		if i == 0 || p.Time.Before(z.StartDate) {
			z.StartDate = p.Time
		}
		if i == 0 || p.Time.After(z.EndDate) {
			z.EndDate = p.Time
		}
	}
	return z
}

// FilterAndDedupe applies the relevance filter, strength ranking, cap and
// overlap resolution. It is idempotent: running it on its own output with
// the same price returns the same set.
func (d *ZoneDetector) FilterAndDedupe(zones []domain.Zone, currentPrice float64) []domain.Zone {
	var relevant []domain.Zone
	for _, z := range zones {
		if z.Strength < d.cfg.MinTouches {
			continue
		}
		if d.isRelevant(z, currentPrice) {
			relevant = append(relevant, z)
		}
	}

	// Rank by strength, tie-break on bottom price to keep ordering stable
	// across runs.
	sort.SliceStable(relevant, func(i, j int) bool {
		if relevant[i].Strength != relevant[j].Strength {
			return relevant[i].Strength > relevant[j].Strength
		}
		return relevant[i].Bottom < relevant[j].Bottom
	})
	if len(relevant) > d.cfg.MaxZones {
		relevant = relevant[:d.cfg.MaxZones]
	}

	return dedupeOverlaps(relevant)
}

// isRelevant keeps a zone when the price sits inside it or the zone lies
// within the proximity band above or below the price.
func (d *ZoneDetector) isRelevant(z domain.Zone, price float64) bool {
	if z.Contains(price) {
		return true
	}
	notTooHigh := z.Bottom <= price*(1+d.cfg.ProximityPct)
	notTooLow := z.Top >= price*(1-d.cfg.ProximityPct)
	return notTooHigh && notTooLow
}

// dedupeOverlaps walks zones in ranked order. A candidate that overlaps an
// accepted zone evicts it only when strictly stronger; otherwise the
// candidate is dropped. The result is pairwise non-overlapping, biased
// toward the strongest levels. Quadratic, but the input is already capped.
func dedupeOverlaps(ranked []domain.Zone) []domain.Zone {
	var accepted []domain.Zone
	for _, z := range ranked {
		dropped := false
		for i := 0; i < len(accepted); i++ {
			if !z.Overlaps(accepted[i]) {
				continue
			}
			if z.Strength > accepted[i].Strength {
				accepted = append(accepted[:i], accepted[i+1:]...)
				i--
				continue
			}
			dropped = true
			break
		}
		if !dropped {
			accepted = append(accepted, z)
		}
	}
	return accepted
}
