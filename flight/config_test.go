package flight

import "testing"

func TestDefaultConfigMatchesRecognisedOptionTable(t *testing.T) {
	cfg := DefaultConfig()
	cases := map[string]float64{
		"MinFixes":                 float64(cfg.MinFixes),
		"MaxSecondsBetweenFixes":   cfg.MaxSecondsBetweenFixes,
		"MinSecondsBetweenFixes":   cfg.MinSecondsBetweenFixes,
		"MaxTimeViolations":        float64(cfg.MaxTimeViolations),
		"MaxNewDaysInFlight":       float64(cfg.MaxNewDaysInFlight),
		"MinAvgAbsAltChange":       cfg.MinAvgAbsAltChange,
		"MaxAltChangeRate":         cfg.MaxAltChangeRate,
		"MaxAltChangeViolations":   float64(cfg.MaxAltChangeViolations),
		"MaxAlt":                   cfg.MaxAlt,
		"MinAlt":                   cfg.MinAlt,
		"MinGspFlight":             cfg.MinGspFlight,
		"MinLandingTime":           cfg.MinLandingTime,
		"MinBearingChangeCircling": cfg.MinBearingChangeCircling,
		"MinTimeForBearingChange":  cfg.MinTimeForBearingChange,
		"MinTimeForThermal":        cfg.MinTimeForThermal,
	}
	want := map[string]float64{
		"MinFixes":                 50,
		"MaxSecondsBetweenFixes":   50.0,
		"MinSecondsBetweenFixes":   1.0,
		"MaxTimeViolations":        10,
		"MaxNewDaysInFlight":       2,
		"MinAvgAbsAltChange":       0.01,
		"MaxAltChangeRate":         50.0,
		"MaxAltChangeViolations":   3,
		"MaxAlt":                   10000.0,
		"MinAlt":                   -600.0,
		"MinGspFlight":             15.0,
		"MinLandingTime":           300.0,
		"MinBearingChangeCircling": 6.0,
		"MinTimeForBearingChange":  5.0,
		"MinTimeForThermal":        60.0,
	}
	for k, v := range want {
		if cases[k] != v {
			t.Errorf("%s: expected %v, got %v", k, v, cases[k])
		}
	}
	if cfg.WhichFlightToPick != Concatenate {
		t.Errorf("expected default WhichFlightToPick CONCATENATE, got %v", cfg.WhichFlightToPick)
	}
}

func TestLoadConfigEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestAltSourceString(t *testing.T) {
	if AltSourcePressure.String() != "PRESSURE" {
		t.Fatalf("unexpected string: %s", AltSourcePressure.String())
	}
	if AltSourceGNSS.String() != "GNSS" {
		t.Fatalf("unexpected string: %s", AltSourceGNSS.String())
	}
	if AltSourceUnset.String() != "UNSET" {
		t.Fatalf("unexpected string: %s", AltSourceUnset.String())
	}
}
