package analysis

import (
	"reflect"
	"testing"

	"titan-screener/internal/domain"
)

func TestDetect_ShortSeries(t *testing.T) {
	d := NewZoneDetector(DefaultZoneConfig())
	if zones := d.Detect(flatSeries(30, 100, 90)); zones != nil {
		t.Fatalf("expected no zones for 30 bars, got %d", len(zones))
	}
}

func TestDetect_RepeatedLevelBecomesZone(t *testing.T) {
	// Resistance tested three times around 110, support twice around 80.
	s := flatSeries(100, 100, 90)
	for _, i := range []int{20, 45, 70} {
		s[i].High = 110
	}
	for _, i := range []int{30, 60} {
		s[i].Low = 80
	}

	d := NewZoneDetector(DefaultZoneConfig())
	zones := d.Detect(s)

	var res, sup int
	for _, z := range zones {
		if z.Top < z.Bottom {
			t.Errorf("inverted zone band: %+v", z)
		}
		switch z.Kind {
		case domain.ZoneResistance:
			res++
			if !z.Contains(110) {
				t.Errorf("resistance zone does not cover 110: %+v", z)
			}
			if z.Strength != 3 {
				t.Errorf("resistance strength = %d, want 3", z.Strength)
			}
			if !z.EndDate.After(z.StartDate) {
				t.Errorf("zone date span collapsed: %+v", z)
			}
		case domain.ZoneSupport:
			sup++
			if z.Strength != 2 {
				t.Errorf("support strength = %d, want 2", z.Strength)
			}
		}
	}
	if res == 0 {
		t.Error("no resistance zone detected")
	}
	if sup == 0 {
		t.Error("no support zone detected")
	}
}

func TestFilterAndDedupe_DropsWeakAndDistant(t *testing.T) {
	d := NewZoneDetector(DefaultZoneConfig())
	zones := []domain.Zone{
		{Kind: domain.ZoneResistance, Top: 111, Bottom: 109, Strength: 1},   // too weak
		{Kind: domain.ZoneResistance, Top: 201, Bottom: 199, Strength: 4},   // far above 100
		{Kind: domain.ZoneSupport, Top: 51, Bottom: 49, Strength: 4},        // far below 100
		{Kind: domain.ZoneResistance, Top: 110.5, Bottom: 109.5, Strength: 3},
	}
	got := d.FilterAndDedupe(zones, 100)
	if len(got) != 1 {
		t.Fatalf("expected 1 surviving zone, got %d: %+v", len(got), got)
	}
	if got[0].Strength != 3 {
		t.Errorf("wrong survivor: %+v", got[0])
	}
}

func TestFilterAndDedupe_StrongerEvictsOverlapping(t *testing.T) {
	d := NewZoneDetector(DefaultZoneConfig())
	zones := []domain.Zone{
		{Kind: domain.ZoneResistance, Top: 106, Bottom: 104, Strength: 3},
		{Kind: domain.ZoneResistance, Top: 105, Bottom: 103, Strength: 5},
		{Kind: domain.ZoneSupport, Top: 96, Bottom: 94, Strength: 2},
	}
	got := d.FilterAndDedupe(zones, 100)

	if len(got) != 2 {
		t.Fatalf("expected 2 zones after dedup, got %d: %+v", len(got), got)
	}
	for i := 0; i < len(got); i++ {
		for j := i + 1; j < len(got); j++ {
			if got[i].Overlaps(got[j]) {
				t.Fatalf("overlapping zones survived: %+v and %+v", got[i], got[j])
			}
		}
	}
	if got[0].Strength != 5 {
		t.Errorf("strongest zone not ranked first: %+v", got[0])
	}
}

func TestFilterAndDedupe_CapsAtMaxZones(t *testing.T) {
	cfg := DefaultZoneConfig()
	cfg.ProximityPct = 10 // keep everything in range for this test
	d := NewZoneDetector(cfg)

	var zones []domain.Zone
	for i := 0; i < 15; i++ {
		base := 100 + float64(i)*5
		zones = append(zones, domain.Zone{
			Kind:     domain.ZoneResistance,
			Top:      base + 1,
			Bottom:   base,
			Strength: 2 + i,
		})
	}
	got := d.FilterAndDedupe(zones, 100)
	if len(got) != cfg.MaxZones {
		t.Fatalf("expected %d zones, got %d", cfg.MaxZones, len(got))
	}
	// Ranking keeps the strongest.
	if got[0].Strength != 16 {
		t.Errorf("expected strongest zone first, got strength %d", got[0].Strength)
	}
}

func TestFilterAndDedupe_Idempotent(t *testing.T) {
	d := NewZoneDetector(DefaultZoneConfig())
	zones := []domain.Zone{
		{Kind: domain.ZoneResistance, Top: 106, Bottom: 104, Strength: 3},
		{Kind: domain.ZoneResistance, Top: 105, Bottom: 103, Strength: 5},
		{Kind: domain.ZoneSupport, Top: 96, Bottom: 94, Strength: 2},
		{Kind: domain.ZoneSupport, Top: 95.5, Bottom: 93.5, Strength: 2},
	}
	once := d.FilterAndDedupe(zones, 100)
	twice := d.FilterAndDedupe(once, 100)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second pass changed the zone set:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestDetect_Deterministic(t *testing.T) {
	s := flatSeries(120, 100, 90)
	for _, i := range []int{15, 40, 65, 90} {
		s[i].High = 112
	}
	for _, i := range []int{25, 50, 75} {
		s[i].Low = 82
	}
	d := NewZoneDetector(DefaultZoneConfig())
	first := d.Detect(s)
	for i := 0; i < 5; i++ {
		if got := d.Detect(s); !reflect.DeepEqual(got, first) {
			t.Fatalf("detection run %d diverged", i)
		}
	}
}
