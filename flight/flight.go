package flight

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	kitlog "github.com/go-kit/kit/log"

	"igcflight/internal/viterbi"
)

// Named HMM constants, per the contract these decoders must reproduce
// bit-exactly: callers never configure them, only Config's thresholds
// feed the emission streams.
var (
	flyingInit       = []float64{0.80, 0.20}
	flyingTransition = [][]float64{
		{0.9995, 0.0005},
		{0.0005, 0.9995},
	}
	flyingEmission = [][]float64{
		{0.8, 0.2},
		{0.2, 0.8},
	}

	circlingInit       = []float64{0.80, 0.20}
	circlingTransition = [][]float64{
		{0.982, 0.018},
		{0.030, 0.970},
	}
	circlingEmission = [][]float64{
		{0.942, 0.058},
		{0.093, 0.907},
	}
)

func flyingDecoder() *viterbi.Decoder {
	return viterbi.NewDecoder(flyingInit, flyingTransition, flyingEmission)
}

func circlingDecoder() *viterbi.Decoder {
	return viterbi.NewDecoder(circlingInit, circlingTransition, circlingEmission)
}

// Flight is the aggregate root: an ordered fix sequence plus the
// validation, segmentation and metadata state the engine derives from
// it. A Flight is built once by NewFlight (or CreateFromFile) and is
// logically immutable once construction returns.
type Flight struct {
	Fixes []*Fix
	Valid bool
	Notes []string

	AltSource     AltSource
	PressAltValid bool
	GNSSAltValid  bool

	DateTimestamp float64
	dateSet       bool

	MidnightCrossings int

	TakeoffFix *Fix
	LandingFix *Fix
	Thermals   []*Thermal
	Glides     []*Glide

	FRManufacturerCode *string
	FRUniqueID         *string
	GliderType         *string
	CompetitionClass   *string
	FRFirmwareVersion  *string
	FRHardwareVersion  *string
	FRRecorderType     *string
	FRGPSReceiver      *string
	FRPressureSensor   *string
	IRecord            string

	cfg    Config
	logger kitlog.Logger
}

func (fl *Flight) addNote(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	var note string
	switch level {
	case "Error", "Warning":
		note = level + ": " + msg
	default:
		note = msg
	}
	fl.Notes = append(fl.Notes, note)
	if fl.logger != nil {
		fl.logger.Log("level", strings.ToLower(level), "subsys", "flight", "msg", msg)
	}
}

func (fl *Flight) fail(format string, args ...interface{}) {
	fl.Valid = false
	fl.addNote("Error", format, args...)
}

// ReadIGCFile reads the file at path and splits it into lines on any of
// CR, LF or CRLF. File I/O is kept separate from parsing so a caller
// needing interruption can perform the read itself and hand the fix
// list to NewFlight directly (see §5 of the design notes this engine
// follows: the engine itself is synchronous and single-pass).
func ReadIGCFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("flight: opening %q: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		for i, c := range data {
			if c == '\r' || c == '\n' {
				return i + 1, data[:i], nil
			}
		}
		if atEOF && len(data) > 0 {
			return len(data), data, nil
		}
		return 0, nil, nil
	})
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("flight: reading %q: %w", path, err)
	}
	return lines, nil
}

// CreateFromFile reads path and runs the full engine over its contents.
func CreateFromFile(path string, cfg Config, logger kitlog.Logger) (*Flight, error) {
	lines, err := ReadIGCFile(path)
	if err != nil {
		return nil, err
	}
	return NewFlight(lines, cfg, logger), nil
}

// NewFlight runs the fixed sequence of engine passes (steps A through J)
// over raw IGC lines and returns the resulting Flight. logger may be
// nil; when non-nil, every note is also emitted as a structured log
// line.
func NewFlight(lines []string, cfg Config, logger kitlog.Logger) *Flight {
	fl := &Flight{Valid: true, cfg: cfg, logger: logger}

	var aLines, hLines, iLines []string
	fl.ingest(lines, &aLines, &hLines, &iLines)
	if !fl.Valid {
		return fl
	}

	fl.checkAltitudes()
	if !fl.Valid {
		return fl
	}

	fl.checkFixRawtime()
	if !fl.Valid {
		return fl
	}

	fl.parseMetadata(aLines, hLines, iLines)
	if !fl.Valid {
		return fl
	}

	fl.attachFixes()
	fl.computeGroundSpeeds()
	fl.computeFlying()

	if fl.TakeoffFix == nil {
		fl.addNote("Info", "did not detect takeoff.")
		return fl
	}

	if len(fl.Fixes) < 2 {
		return fl
	}

	fl.computeBearings()
	fl.computeBearingChangeRates()
	fl.computeCircling()
	fl.findThermals()

	return fl
}

// Step A — ingest & minimum size.
func (fl *Flight) ingest(lines []string, aLines, hLines, iLines *[]string) {
	var fixes []*Fix
	var lastRawtime float64
	haveLast := false

	for _, line := range lines {
		if line == "" {
			continue
		}
		switch line[0] {
		case 'A':
			*aLines = append(*aLines, line)
		case 'H':
			*hLines = append(*hLines, line)
		case 'I':
			*iLines = append(*iLines, line)
		case 'B':
			f, ok := ParseBRecord(line, len(fixes))
			if !ok {
				continue
			}
			if haveLast && math.Abs(f.RawTime-lastRawtime) < 1e-5 {
				continue
			}
			lastRawtime = f.RawTime
			haveLast = true
			fixes = append(fixes, f)
		default:
			// silently ignored
		}
	}

	fl.Fixes = fixes
	if len(fl.Fixes) < fl.cfg.MinFixes {
		fl.fail("only %d fixes parsed, need at least %d.", len(fl.Fixes), fl.cfg.MinFixes)
	}
}

// Step B — altitude sanity.
func (fl *Flight) checkAltitudes() {
	cfg := fl.cfg
	var pressSum, gnssSum float64
	var pressHuge, gnssHuge int
	var pressEnvelope, gnssEnvelope bool

	for _, f := range fl.Fixes {
		if f.PressAlt < cfg.MinAlt || f.PressAlt > cfg.MaxAlt {
			pressEnvelope = true
		}
		if f.GNSSAlt < cfg.MinAlt || f.GNSSAlt > cfg.MaxAlt {
			gnssEnvelope = true
		}
	}

	for i := 1; i < len(fl.Fixes); i++ {
		f0, f1 := fl.Fixes[i-1], fl.Fixes[i]
		dt := f1.RawTime - f0.RawTime
		if dt <= 0.5 {
			continue
		}

		pressDelta := math.Abs(f1.PressAlt - f0.PressAlt)
		if pressDelta/dt > cfg.MaxAltChangeRate {
			pressHuge++
		} else {
			pressSum += pressDelta
		}

		gnssDelta := math.Abs(f1.GNSSAlt - f0.GNSSAlt)
		if gnssDelta/dt > cfg.MaxAltChangeRate {
			gnssHuge++
		} else {
			gnssSum += gnssDelta
		}
	}

	pressAvg := avgOrZero(pressSum, len(fl.Fixes)-1)
	gnssAvg := avgOrZero(gnssSum, len(fl.Fixes)-1)

	fl.PressAltValid = pressAvg >= cfg.MinAvgAbsAltChange &&
		pressHuge <= cfg.MaxAltChangeViolations && !pressEnvelope
	fl.GNSSAltValid = gnssAvg >= cfg.MinAvgAbsAltChange &&
		gnssHuge <= cfg.MaxAltChangeViolations && !gnssEnvelope

	if !fl.PressAltValid {
		fl.addNote("Warning", "pressure altitude sensor failed validation.")
	}
	if !fl.GNSSAltValid {
		fl.addNote("Warning", "GNSS altitude sensor failed validation.")
	}

	switch {
	case fl.PressAltValid:
		fl.AltSource = AltSourcePressure
	case fl.GNSSAltValid:
		fl.AltSource = AltSourceGNSS
	default:
		fl.fail("both altitude sensors failed validation.")
	}
}

func avgOrZero(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// Step C — time sanity & midnight rollover.
func (fl *Flight) checkFixRawtime() {
	const day = 86400.0
	const crossingThreshold = 200.0

	cfg := fl.cfg
	var offset float64
	var violations, crossings int

	for i := 1; i < len(fl.Fixes); i++ {
		f0, f1 := fl.Fixes[i-1], fl.Fixes[i]
		f1.RawTime += offset
		gap := f1.RawTime - f0.RawTime
		if gap < 0 {
			if gap+day < crossingThreshold {
				offset += day
				f1.RawTime += day
				crossings++
				gap = f1.RawTime - f0.RawTime
			}
		}
		if gap < cfg.MinSecondsBetweenFixes || gap > cfg.MaxSecondsBetweenFixes {
			violations++
		}
	}

	fl.MidnightCrossings = crossings

	if violations > cfg.MaxTimeViolations {
		fl.fail("too many inter-fix time violations: %d (max %d).", violations, cfg.MaxTimeViolations)
		return
	}
	if crossings > cfg.MaxNewDaysInFlight {
		fl.fail("too many midnight crossings: %d (max %d).", crossings, cfg.MaxNewDaysInFlight)
	}
}

// Step D — metadata.
func (fl *Flight) parseMetadata(aLines, hLines, iLines []string) {
	if len(aLines) > 0 {
		if a, ok := parseARecord(aLines[0]); ok {
			manufacturer, uniqueID := a.manufacturer, a.uniqueID
			fl.FRManufacturerCode = &manufacturer
			fl.FRUniqueID = &uniqueID
		}
	}
	fl.IRecord = parseIRecords(iLines)

	hf := parseHRecords(hLines)
	fl.GliderType = hf.gliderType
	fl.CompetitionClass = hf.competitionClass
	fl.FRFirmwareVersion = hf.frFirmwareVersion
	fl.FRHardwareVersion = hf.frHardwareVersion
	fl.FRRecorderType = hf.frRecorderType
	fl.FRGPSReceiver = hf.frGPSReceiver
	fl.FRPressureSensor = hf.frPressureSensor

	if !hf.dateSet {
		fl.fail("missing date header (HFDTE).")
		return
	}
	fl.dateSet = true
	fl.DateTimestamp = float64(time.Date(hf.dateYear, time.Month(hf.dateMonth), hf.dateDay, 0, 0, 0, 0, time.UTC).Unix())
}

func (fl *Flight) attachFixes() {
	for _, f := range fl.Fixes {
		f.Timestamp = f.RawTime + fl.DateTimestamp
		if fl.AltSource == AltSourcePressure {
			f.Alt = f.PressAlt
		} else {
			f.Alt = f.GNSSAlt
		}
	}
}

// Step E — ground speed.
func (fl *Flight) computeGroundSpeeds() {
	for i, f := range fl.Fixes {
		if i == 0 {
			f.GSp = 0
			continue
		}
		prev := fl.Fixes[i-1]
		dt := f.RawTime - prev.RawTime
		if math.Abs(dt) < 1e-5 {
			f.GSp = 0
			continue
		}
		f.GSp = f.DistanceTo(prev) / dt * 3600.0
	}
}

// Step F — flying segmentation plus the landing-duration filter.
func (fl *Flight) computeFlying() {
	n := len(fl.Fixes)
	emissions := make([]int, n)
	for i, f := range fl.Fixes {
		if f.GSp > fl.cfg.MinGspFlight {
			emissions[i] = 1
		}
	}

	labels := flyingDecoder().Decode(emissions)
	final := applyLandingFilter(fl.Fixes, labels, fl.cfg.MinLandingTime)

	for i, f := range fl.Fixes {
		f.Flying = final[i] == 1
	}

	fl.TakeoffFix, fl.LandingFix = pickFlight(fl.Fixes, final, fl.cfg.WhichFlightToPick)
}

// applyLandingFilter overrides standing runs shorter than minLandingTime
// back to flying. A standing run with no following flying fix (the tail
// of the log) is always accepted as a landing, regardless of duration.
func applyLandingFilter(fixes []*Fix, labels []int, minLandingTime float64) []int {
	n := len(labels)
	final := append([]int(nil), labels...)

	i := 0
	for i < n {
		if labels[i] == 1 {
			i++
			continue
		}
		s := i
		for i < n && labels[i] == 0 {
			i++
		}
		e := i - 1
		if i >= n {
			// Tail of the log: accept the standing verdict as-is.
			continue
		}
		gap := fixes[i].RawTime - fixes[s].RawTime
		if gap < minLandingTime {
			for k := s; k <= e; k++ {
				final[k] = 1
			}
		}
	}
	return final
}

// pickFlight scans the final flying/standing labels for takeoff/landing
// events, honoring the FIRST/CONCATENATE policy.
func pickFlight(fixes []*Fix, final []int, which WhichFlightToPick) (*Fix, *Fix) {
	n := len(final)
	var takeoff, landing *Fix

	i := 0
	for i < n {
		if final[i] == 0 {
			i++
			continue
		}
		s := i
		for i < n && final[i] == 1 {
			i++
		}
		e := i - 1

		if takeoff == nil {
			takeoff = fixes[s]
		}
		if e == n-1 {
			landing = fixes[n-1]
		} else {
			landing = fixes[e+1]
		}

		if which == First {
			break
		}
	}

	return takeoff, landing
}

// Step G — bearings.
func (fl *Flight) computeBearings() {
	n := len(fl.Fixes)
	for i := 0; i < n-1; i++ {
		fl.Fixes[i].Bearing = fl.Fixes[i].BearingTo(fl.Fixes[i+1])
	}
	fl.Fixes[n-1].Bearing = fl.Fixes[n-2].Bearing
}

// Step H — bearing-change rate.
func (fl *Flight) computeBearingChangeRates() {
	threshold := fl.cfg.MinTimeForBearingChange - 1e-7
	for i, f := range fl.Fixes {
		j := i - 1
		for j >= 0 && !(f.Timestamp-fl.Fixes[j].Timestamp > threshold) {
			j--
		}
		if j < 0 {
			f.BearingChangeRate = 0
			continue
		}
		ref := fl.Fixes[j]
		dt := f.Timestamp - ref.Timestamp
		if dt < 1e-7 {
			f.BearingChangeRate = 0
			continue
		}
		db := normalizeBearingDiff(f.Bearing - ref.Bearing)
		f.BearingChangeRate = db / dt
	}
}

// normalizeBearingDiff normalises a bearing difference to (-180, 180].
func normalizeBearingDiff(diff float64) float64 {
	norm := math.Mod(diff, 360)
	switch {
	case norm > 180:
		norm -= 360
	case norm <= -180:
		norm += 360
	}
	return norm
}

// Step I — circling segmentation.
func (fl *Flight) computeCircling() {
	n := len(fl.Fixes)
	emissions := make([]int, n)
	for i, f := range fl.Fixes {
		if f.Flying && math.Abs(f.BearingChangeRate) > fl.cfg.MinBearingChangeCircling {
			emissions[i] = 1
		}
	}
	labels := circlingDecoder().Decode(emissions)
	for i, f := range fl.Fixes {
		f.Circling = labels[i] == 1
	}
}

// Step J — thermal / glide extraction.
func (fl *Flight) findThermals() {
	start, end := fl.TakeoffFix.Index, fl.LandingFix.Index
	if start > end {
		return
	}
	fixes := fl.Fixes[start : end+1]

	var thermals []*Thermal
	var glides []*Glide

	circlingNow := false
	glidingNow := false
	var firstFix *Fix
	var firstGlideFix, lastGlideFix *Fix
	var distance, distanceStartCircling float64

	minThermal := fl.cfg.MinTimeForThermal - 1e-5

	for _, fix := range fixes {
		if fix.Circling && !circlingNow {
			circlingNow = true
			firstFix = fix
			distanceStartCircling = distance
		} else if !fix.Circling && circlingNow {
			circlingNow = false
			candidate := &Thermal{Enter: firstFix, Exit: fix}
			if candidate.Duration() > minThermal {
				thermals = append(thermals, candidate)
				if glidingNow {
					glides = append(glides, &Glide{
						Enter:         firstGlideFix,
						Exit:          firstFix,
						TrackLengthKm: distanceStartCircling,
					})
					glidingNow = false
				}
			}
		}

		if !glidingNow {
			firstGlideFix = fix
			lastGlideFix = fix
			distance = 0
			glidingNow = true
		} else {
			distance += fix.DistanceTo(lastGlideFix)
			lastGlideFix = fix
		}
	}

	if glidingNow {
		glides = append(glides, &Glide{
			Enter:         firstGlideFix,
			Exit:          lastGlideFix,
			TrackLengthKm: distance,
		})
	}

	fl.Thermals = thermals
	fl.Glides = glides
}
