package flight

import (
	"regexp"
	"strconv"
	"strings"
)

// printable reports whether r belongs to the allowed extracted-string
// charset: ASCII alphanumerics, the punctuation set from the IGC spec,
// and space.
func printable(r rune) bool {
	if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
		return true
	}
	switch r {
	case '!', '"', '#', '$', '%', '&', '\'', '(', ')', '*', '+', ',', '-', '.',
		'/', ':', ';', '<', '=', '>', '?', '@', '[', '\\', ']', '^', '_', '`',
		'{', '|', '}', '~', ' ':
		return true
	}
	return false
}

// stripNonPrintable removes every byte not in the allowed charset.
func stripNonPrintable(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if printable(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// arecord holds the manufacturer/unique-ID pair extracted from an
// A-record.
type arecord struct {
	manufacturer string
	uniqueID     string
}

func parseARecord(line string) (arecord, bool) {
	if len(line) < 7 || line[0] != 'A' {
		return arecord{}, false
	}
	return arecord{
		manufacturer: stripNonPrintable(line[1:4]),
		uniqueID:     stripNonPrintable(line[4:7]),
	}, true
}

func parseIRecords(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(stripNonPrintable(l))
	}
	return b.String()
}

var (
	hfdteDigitsRe = regexp.MustCompile(`(?i)^HFDTE\s*(\d{2})(\d{2})(\d{2})`)
	hfdteLongRe   = regexp.MustCompile(`(?i)^HFDTEDATE\s*:\s*(\d{2})(\d{2})(\d{2})`)
	hfKeywordRe   = regexp.MustCompile(`(?i)^(HFGTY|HFRFW|HFRHW|HFFTY|HFGPS|HFPRS|HFCCL)\w*\s*:?\s*(.*)$`)
)

// headerFields accumulates the header attributes the engine cares
// about, filled in by parseHRecords as H-lines are walked.
type headerFields struct {
	dateDay, dateMonth, dateYear int
	dateSet                      bool

	gliderType        *string
	competitionClass  *string
	frFirmwareVersion *string
	frHardwareVersion *string
	frRecorderType    *string
	frGPSReceiver     *string
	frPressureSensor  *string
}

func parseHRecords(lines []string) headerFields {
	var hf headerFields
	for _, line := range lines {
		if len(line) == 0 || (line[0] != 'H' && line[0] != 'h') {
			continue
		}
		if !hf.dateSet {
			if m := hfdteLongRe.FindStringSubmatch(line); m != nil {
				applyDate(&hf, m)
				continue
			}
			if m := hfdteDigitsRe.FindStringSubmatch(line); m != nil {
				applyDate(&hf, m)
				continue
			}
		}
		m := hfKeywordRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := stripNonPrintable(strings.TrimSpace(m[2]))
		switch strings.ToUpper(m[1]) {
		case "HFGTY":
			hf.gliderType = &value
		case "HFCCL":
			hf.competitionClass = &value
		case "HFRFW":
			hf.frFirmwareVersion = &value
		case "HFRHW":
			hf.frHardwareVersion = &value
		case "HFFTY":
			hf.frRecorderType = &value
		case "HFGPS":
			hf.frGPSReceiver = &value
		case "HFPRS":
			hf.frPressureSensor = &value
		}
	}
	return hf
}

func applyDate(hf *headerFields, m []string) {
	dd, errD := strconv.Atoi(m[1])
	mm, errM := strconv.Atoi(m[2])
	yy, errY := strconv.Atoi(m[3])
	if errD != nil || errM != nil || errY != nil {
		return
	}
	if mm < 1 || mm > 12 || dd < 1 || dd > 31 {
		return
	}
	hf.dateDay = dd
	hf.dateMonth = mm
	hf.dateYear = 2000 + yy
	hf.dateSet = true
}
