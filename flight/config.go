package flight

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// AltSource identifies which sensor a Flight uses for its chosen altitude.
type AltSource int

const (
	// AltSourceUnset means the sensor choice has not been made yet (or the
	// flight is invalid and the choice was never reached).
	AltSourceUnset AltSource = iota
	// AltSourcePressure selects the pressure altitude sensor.
	AltSourcePressure
	// AltSourceGNSS selects the GNSS altitude sensor.
	AltSourceGNSS
)

func (a AltSource) String() string {
	switch a {
	case AltSourcePressure:
		return "PRESSURE"
	case AltSourceGNSS:
		return "GNSS"
	default:
		return "UNSET"
	}
}

// WhichFlightToPick selects the policy used when the flying/standing
// decoder yields more than one flying segment in a single log.
type WhichFlightToPick int

const (
	// First keeps only the first detected flight segment.
	First WhichFlightToPick = iota
	// Concatenate keeps scanning and records the last landing found,
	// spanning every segment (including the down time between them).
	Concatenate
)

func (w WhichFlightToPick) String() string {
	if w == First {
		return "FIRST"
	}
	return "CONCATENATE"
}

// Config is the flat set of numeric tunables that drive validation and
// segmentation. Construct one with DefaultConfig and override only the
// fields a caller cares about; this mirrors the teacher's preference for a
// plain value type built once and passed by reference over subclassable
// class-level constants (see config.go's _smdconfig).
type Config struct {
	MinFixes                  int
	MaxSecondsBetweenFixes    float64
	MinSecondsBetweenFixes    float64
	MaxTimeViolations         int
	MaxNewDaysInFlight        int
	MinAvgAbsAltChange        float64
	MaxAltChangeRate          float64
	MaxAltChangeViolations    int
	MaxAlt                    float64
	MinAlt                    float64
	MinGspFlight              float64
	MinLandingTime            float64
	WhichFlightToPick         WhichFlightToPick
	MinBearingChangeCircling float64
	MinTimeForBearingChange  float64
	MinTimeForThermal        float64
}

// DefaultConfig returns the recognised-option defaults from the
// configuration surface table.
func DefaultConfig() Config {
	return Config{
		MinFixes:                 50,
		MaxSecondsBetweenFixes:   50.0,
		MinSecondsBetweenFixes:   1.0,
		MaxTimeViolations:        10,
		MaxNewDaysInFlight:       2,
		MinAvgAbsAltChange:       0.01,
		MaxAltChangeRate:         50.0,
		MaxAltChangeViolations:   3,
		MaxAlt:                   10000.0,
		MinAlt:                   -600.0,
		MinGspFlight:             15.0,
		MinLandingTime:           300.0,
		WhichFlightToPick:        Concatenate,
		MinBearingChangeCircling: 6.0,
		MinTimeForBearingChange:  5.0,
		MinTimeForThermal:        60.0,
	}
}

// LoadConfig returns DefaultConfig with any values present in the file at
// path layered on top. An empty path returns the defaults untouched. The
// file may be TOML, YAML or JSON (anything viper.ReadInConfig supports);
// only the keys present override their default, matching the
// defaults-then-override precedence the teacher's smdConfig() applies to
// conf.toml.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("flight: reading config %q: %w", path, err)
	}

	intField := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	floatField := func(key string, dst *float64) {
		if v.IsSet(key) {
			*dst = v.GetFloat64(key)
		}
	}

	intField("min_fixes", &cfg.MinFixes)
	floatField("max_seconds_between_fixes", &cfg.MaxSecondsBetweenFixes)
	floatField("min_seconds_between_fixes", &cfg.MinSecondsBetweenFixes)
	intField("max_time_violations", &cfg.MaxTimeViolations)
	intField("max_new_days_in_flight", &cfg.MaxNewDaysInFlight)
	floatField("min_avg_abs_alt_change", &cfg.MinAvgAbsAltChange)
	floatField("max_alt_change_rate", &cfg.MaxAltChangeRate)
	intField("max_alt_change_violations", &cfg.MaxAltChangeViolations)
	floatField("max_alt", &cfg.MaxAlt)
	floatField("min_alt", &cfg.MinAlt)
	floatField("min_gsp_flight", &cfg.MinGspFlight)
	floatField("min_landing_time", &cfg.MinLandingTime)
	floatField("min_bearing_change_circling", &cfg.MinBearingChangeCircling)
	floatField("min_time_for_bearing_change", &cfg.MinTimeForBearingChange)
	floatField("min_time_for_thermal", &cfg.MinTimeForThermal)

	if v.IsSet("which_flight_to_pick") {
		switch strings.ToUpper(v.GetString("which_flight_to_pick")) {
		case "FIRST":
			cfg.WhichFlightToPick = First
		case "CONCATENATE":
			cfg.WhichFlightToPick = Concatenate
		default:
			return cfg, fmt.Errorf("flight: which_flight_to_pick must be FIRST or CONCATENATE, got %q", v.GetString("which_flight_to_pick"))
		}
	}

	return cfg, nil
}
