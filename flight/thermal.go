package flight

import "fmt"

// Thermal is a circling climb between two fixes, bookended by the first
// fix of a circling run and the first fix after it ends.
type Thermal struct {
	Enter *Fix
	Exit  *Fix
}

// Duration returns the thermal's length in seconds.
func (th *Thermal) Duration() float64 {
	return th.Exit.RawTime - th.Enter.RawTime
}

// AltitudeGain returns the altitude gained over the thermal, in meters.
// Negative for a sinking "thermal" (a circling descent).
func (th *Thermal) AltitudeGain() float64 {
	return th.Exit.Alt - th.Enter.Alt
}

// AverageVerticalVelocity returns the mean climb rate in m/s. Returns 0
// for a zero-duration thermal rather than dividing by zero.
func (th *Thermal) AverageVerticalVelocity() float64 {
	d := th.Duration()
	if d <= 0 {
		return 0
	}
	return th.AltitudeGain() / d
}

func (th *Thermal) String() string {
	return fmt.Sprintf("Thermal(duration=%.0fs, alt_gain=%.1fm, avg_vario=%.2fm/s)",
		th.Duration(), th.AltitudeGain(), th.AverageVerticalVelocity())
}
