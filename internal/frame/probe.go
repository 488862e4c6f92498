package frame

import (
	"strconv"
	"strings"
)

// midpointFromStream parses ffprobe stream output of the form
//
//	duration_ts=451584
//	time_base=1/90000
//
// and returns duration_ts/2 (integer division, truncating) converted to
// seconds via the time base. ok is false when either field is missing or
// unparsable (streams often report duration_ts=N/A).
func midpointFromStream(out string) (float64, bool) {
	fields := parseProbeOutput(out)

	durationTS, err := strconv.ParseInt(fields["duration_ts"], 10, 64)
	if err != nil || durationTS <= 0 {
		return 0, false
	}

	num, den, ok := parseTimeBase(fields["time_base"])
	if !ok {
		return 0, false
	}

	midTS := durationTS / 2
	return float64(midTS) * float64(num) / float64(den), true
}

// midpointFromDuration parses ffprobe format output of the form
//
//	duration=10.032000
//
// and returns half the duration, truncated to whole milliseconds before
// halving so the division stays integral.
func midpointFromDuration(out string) (float64, bool) {
	fields := parseProbeOutput(out)

	duration, err := strconv.ParseFloat(fields["duration"], 64)
	if err != nil || duration <= 0 {
		return 0, false
	}

	midMs := int64(duration*1000) / 2
	return float64(midMs) / 1000, true
}

// parseProbeOutput splits "key=value" lines into a map. Unknown lines are
// ignored.
func parseProbeOutput(out string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		fields[key] = value
	}
	return fields
}

// parseTimeBase parses a rational like "1/90000".
func parseTimeBase(tb string) (num, den int64, ok bool) {
	numStr, denStr, found := strings.Cut(tb, "/")
	if !found {
		return 0, 0, false
	}
	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil || num <= 0 {
		return 0, 0, false
	}
	den, err = strconv.ParseInt(denStr, 10, 64)
	if err != nil || den <= 0 {
		return 0, 0, false
	}
	return num, den, true
}
