package flight

import (
	"fmt"
	"math"
)

// Glide is a straight inter-thermal transit between two fixes.
type Glide struct {
	Enter         *Fix
	Exit          *Fix
	TrackLengthKm float64
}

// Duration returns the glide's length in seconds.
func (g *Glide) Duration() float64 {
	return g.Exit.Timestamp - g.Enter.Timestamp
}

// AltitudeChange returns the altitude lost (negative) or gained
// (positive) over the glide, in meters.
func (g *Glide) AltitudeChange() float64 {
	return g.Exit.Alt - g.Enter.Alt
}

// AverageSpeedKmh returns the mean ground speed over the glide's track
// length. Returns 0 for a zero-duration glide.
func (g *Glide) AverageSpeedKmh() float64 {
	d := g.Duration()
	if d <= 0 {
		return 0
	}
	return g.TrackLengthKm / (d / 3600.0)
}

// GlideRatio returns the ratio of horizontal distance flown (meters) to
// altitude change. Returns 0 when the altitude change is within 1e-7m of
// zero, matching the original's guard against a near-infinite ratio.
func (g *Glide) GlideRatio() float64 {
	change := g.AltitudeChange()
	if math.Abs(change) < 1e-7 {
		return 0
	}
	return (g.TrackLengthKm * 1000.0) / change
}

func (g *Glide) String() string {
	return fmt.Sprintf("Glide(duration=%.0fs, track_length=%.2fkm, alt_change=%.1fm, avg_speed=%.1fkm/h)",
		g.Duration(), g.TrackLengthKm, g.AltitudeChange(), g.AverageSpeedKmh())
}
