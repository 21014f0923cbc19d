// Package isotime converts ISO-8601 extended timestamps into Unix epoch
// seconds using self-contained calendar arithmetic. It intentionally avoids
// time.Parse so that behavior is identical for every input shape the
// transcript format produces, and fail-soft for everything else.
package isotime

import (
	"math"
	"strconv"
	"strings"
)

// EpochSeconds parses a timestamp of the shape
// YYYY-MM-DDTHH:MM:SS[.fraction](Z|±HH:MM) into epoch seconds (UTC),
// including fractional seconds. The second return value is false when the
// input cannot be parsed; callers treat that the same as a missing
// timestamp.
func EpochSeconds(value string) (float64, bool) {
	s := strings.ReplaceAll(value, "Z", "+00:00")

	datePart, rest, found := strings.Cut(s, "T")
	if !found {
		return 0, false
	}

	dateFields := strings.Split(datePart, "-")
	if len(dateFields) != 3 {
		return 0, false
	}
	year, err := strconv.ParseInt(dateFields[0], 10, 64)
	if err != nil {
		return 0, false
	}
	month, err := strconv.ParseInt(dateFields[1], 10, 64)
	if err != nil {
		return 0, false
	}
	day, err := strconv.ParseInt(dateFields[2], 10, 64)
	if err != nil {
		return 0, false
	}

	// A '-' only counts as a timezone sign when it appears after the time
	// digits; earlier positions would be date separators. This mirrors the
	// two offset shapes the transcript format emits and stays fail-soft for
	// anything else.
	timeStr := rest
	var tzOffset int64
	if idx := strings.LastIndexByte(rest, '+'); idx > 0 {
		tzOffset = offsetSeconds(rest[idx+1:])
		timeStr = rest[:idx]
	} else if idx := strings.LastIndexByte(rest, '-'); idx > 6 {
		tzOffset = -offsetSeconds(rest[idx+1:])
		timeStr = rest[:idx]
	}

	timeFields := strings.Split(timeStr, ":")
	if len(timeFields) < 2 {
		return 0, false
	}
	hour, err := strconv.ParseInt(timeFields[0], 10, 64)
	if err != nil {
		return 0, false
	}
	minute, err := strconv.ParseInt(timeFields[1], 10, 64)
	if err != nil {
		return 0, false
	}

	secondField := "0"
	if len(timeFields) > 2 {
		secondField = timeFields[2]
	}
	secPart, fracPart, hasFrac := strings.Cut(secondField, ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return 0, false
	}
	var frac float64
	if hasFrac {
		fracVal, err := strconv.ParseFloat(fracPart, 64)
		if err != nil {
			return 0, false
		}
		frac = fracVal / math.Pow10(len(fracPart))
	}

	days := DaysFromCivil(year, month, day)
	epoch := days*86400 + hour*3600 + minute*60 + sec
	return float64(epoch) + frac - float64(tzOffset), true
}

// offsetSeconds parses HH[:MM] with missing or malformed components
// defaulting to zero.
func offsetSeconds(s string) int64 {
	fields := strings.Split(s, ":")
	var hours, minutes int64
	if len(fields) > 0 {
		hours, _ = strconv.ParseInt(fields[0], 10, 64)
	}
	if len(fields) > 1 {
		minutes, _ = strconv.ParseInt(fields[1], 10, 64)
	}
	return hours*3600 + minutes*60
}

// DaysFromCivil returns the number of days from 1970-01-01 to the given
// proleptic Gregorian date. January and February are shifted to months 13
// and 14 of the prior year so that the leap day lands at the end of the
// shifted year. Exact for all dates, before and after the epoch, including
// negative years.
func DaysFromCivil(year, month, day int64) int64 {
	y, m := year, month
	if m <= 2 {
		y--
		m += 9
	} else {
		m -= 3
	}
	era := y / 400
	if y < 0 {
		era = (y - 399) / 400
	}
	yoe := y - era*400
	doy := (153*m+2)/5 + day - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}
