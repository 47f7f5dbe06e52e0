package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimeFormat is the canonical textual format every normalized timestamp is
// rendered into. Sorting re-parses this exact format, so format→parse must
// round-trip to the same instant.
const TimeFormat = "2006-01-02 15:04:05"

// Cleanup patterns applied before any parse attempt.
var (
	trailingParen  = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	leadingAt      = regexp.MustCompile(`(?i)^\s*at\s+`)
	trailingUTC    = regexp.MustCompile(`\s*UTC.*$`)
	trailingGMT    = regexp.MustCompile(`\s*GMT.*$`)
	trailingOffset = regexp.MustCompile(`\s*\+\d{4}.*$`)
)

// cleanTimestamp strips annotations that no layout understands: trailing
// parentheticals, a leading "at", UTC/GMT suffixes and numeric offsets, then
// collapses internal whitespace.
func cleanTimestamp(ts string) string {
	ts = trailingParen.ReplaceAllString(ts, "")
	ts = leadingAt.ReplaceAllString(ts, "")
	ts = trailingUTC.ReplaceAllString(ts, "")
	ts = trailingGMT.ReplaceAllString(ts, "")
	ts = trailingOffset.ReplaceAllString(ts, "")
	return strings.Join(strings.Fields(ts), " ")
}

// khmerMonths maps Khmer month names to month numbers, scanned in calendar
// order.
var khmerMonths = []struct {
	name  string
	month int
}{
	{"មករា", 1}, {"កុម្ភៈ", 2}, {"មីនា", 3}, {"មេសា", 4},
	{"ឧសភា", 5}, {"មិថុនា", 6}, {"កក្កដា", 7}, {"សីហា", 8},
	{"កញ្ញា", 9}, {"តុលា", 10}, {"វិច្ឆិកា", 11}, {"ធ្នូ", 12},
}

// Khmer day-period markers: ល្ងាច (evening) pushes an hour below 12 into the
// afternoon, ព្រឹក (morning) maps hour 12 back to midnight.
const (
	khmerEvening = "ល្ងាច"
	khmerMorning = "ព្រឹក"
)

var digitRun = regexp.MustCompile(`\d+`)

// parseKhmerDate handles timestamps written with Khmer month names. The
// embedded integers are read positionally as day/year/hour/minute[/second].
func parseKhmerDate(ts string) (time.Time, bool) {
	month := 0
	for _, m := range khmerMonths {
		if strings.Contains(ts, m.name) {
			month = m.month
			break
		}
	}
	if month == 0 {
		return time.Time{}, false
	}

	numbers := digitRun.FindAllString(ts, -1)
	if len(numbers) < 4 {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(numbers[0])
	year, _ := strconv.Atoi(numbers[1])
	hour, _ := strconv.Atoi(numbers[2])
	minute, _ := strconv.Atoi(numbers[3])
	second := 0
	if len(numbers) >= 5 {
		second, _ = strconv.Atoi(numbers[4])
	}

	if strings.Contains(ts, khmerEvening) && hour < 12 {
		hour += 12
	} else if strings.Contains(ts, khmerMorning) && hour == 12 {
		hour = 0
	}

	return makeDate(year, month, day, hour, minute, second)
}

// timestampLayouts is the fixed-priority list of explicit formats. Order is
// load-bearing: month-first slashed dates are tried before day-first ones,
// and full date-times before date-only forms.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2.1.2006 15:04:05",
	"2.1.2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04",
	"1/2/2006 3:04 PM",
	"1/2/06 15:04:05",
	"1/2/06 3:04:05 PM",
	"2/1/2006 15:04:05",
	"2/1/2006 3:04:05 PM",
	"2/1/2006 15:04",
	"Jan 2, 2006, 3:04 PM",
	"Jan 2, 2006 3:04:05 PM",
	"January 2, 2006, 3:04 PM",
	"January 2, 2006 3:04:05 PM",
	"Jan 2, 2006, 15:04:05",
	"January 2, 2006, 15:04:05",
	"Jan 2, 2006 15:04:05",
	"January 2, 2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-1-2006",
	"1-2-2006",
	"2006-1-2",
	"2/1/2006",
	"1/2/2006",
}

// monthNameFallback captures "DD Mon YYYY HH:MM:SS [AM/PM]" when no fixed
// layout matched.
var monthNameFallback = regexp.MustCompile(
	`(?i)(\d{1,2})\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+(\d{4})\s+(\d{1,2}:\d{2}:\d{2}(?:\s+[AP]M)?)`)

var monthAbbrs = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

func parseMonthNameFallback(ts string) (time.Time, bool) {
	match := monthNameFallback.FindStringSubmatch(ts)
	if match == nil {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(match[1])
	month := monthAbbrs[strings.ToLower(match[2])]
	year, _ := strconv.Atoi(match[3])
	timeStr := match[4]

	parts := strings.Split(timeStr, ":")
	hour, _ := strconv.Atoi(parts[0])
	upper := strings.ToUpper(timeStr)
	if strings.Contains(upper, "PM") && hour < 12 {
		hour += 12
	} else if strings.Contains(upper, "AM") && hour == 12 {
		hour = 0
	}
	minute, _ := strconv.Atoi(parts[1])
	second, _ := strconv.Atoi(strings.SplitN(parts[2], " ", 2)[0])

	return makeDate(year, month, day, hour, minute, second)
}

var yearToken = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// parsePositional is the last-resort heuristic: find a 4-digit year and
// assign the remaining embedded integers positionally to month, day, hour,
// minute and second. The AM/PM adjustment reads the raw, uncleaned string.
func parsePositional(cleaned, raw string) (time.Time, bool) {
	yearStr := yearToken.FindString(cleaned)
	if yearStr == "" {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(yearStr)

	var numbers []int
	for _, s := range digitRun.FindAllString(cleaned, -1) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return time.Time{}, false
		}
		numbers = append(numbers, n)
	}
	if len(numbers) < 3 {
		return time.Time{}, false
	}

	yearIdx := -1
	for i, n := range numbers {
		if n == year {
			yearIdx = i
			break
		}
	}
	if yearIdx < 0 {
		return time.Time{}, false
	}

	remaining := append(append([]int{}, numbers[:yearIdx]...), numbers[yearIdx+1:]...)
	if len(remaining) < 2 {
		return time.Time{}, false
	}

	month := remaining[0]
	day := remaining[1]
	if remaining[0] > 12 {
		if remaining[1] <= 12 {
			month = remaining[1]
		} else {
			month = 1
		}
		if remaining[0] <= 31 {
			day = remaining[0]
		} else {
			day = 1
		}
	}
	if month > 12 {
		month, day = day, month
	}
	if day > 31 {
		day = 1
	}
	if month > 12 {
		month = 1
	}

	hour, minute, second := 0, 0, 0
	if len(remaining) > 2 && remaining[2] <= 23 {
		hour = remaining[2]
	}
	if len(remaining) > 3 && remaining[3] <= 59 {
		minute = remaining[3]
	}
	if len(remaining) > 4 && remaining[4] <= 59 {
		second = remaining[4]
	}

	upper := strings.ToUpper(raw)
	if strings.Contains(upper, "PM") && hour < 12 {
		hour += 12
	} else if strings.Contains(upper, "AM") && hour == 12 {
		hour = 0
	}

	return makeDate(year, month, day, hour, minute, second)
}

// makeDate builds an instant and rejects components that do not survive
// time.Date unchanged, mirroring strict calendar validation (e.g. day 31 in
// a 30-day month normalizes, so its components shift and it is rejected).
func makeDate(year, month, day, hour, minute, second int) (time.Time, bool) {
	if year < 1 || month < 1 || month > 12 || day < 1 ||
		hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// ParseTimestamp converts a free-form timestamp string into an instant.
// The precedence is deliberate and must hold: cleanup, then the Khmer
// calendar attempt, then the fixed layout list, then the month-name regex,
// then the positional heuristic. The later steps are intentionally loose and
// would misparse inputs the earlier steps handle correctly.
func ParseTimestamp(ts string) (time.Time, bool) {
	if ts == "" {
		return time.Time{}, false
	}

	cleaned := cleanTimestamp(ts)

	if t, ok := parseKhmerDate(cleaned); ok {
		return t, true
	}

	hasDigit := strings.ContainsAny(cleaned, "0123456789")
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, cleaned)
		if err != nil {
			continue
		}
		// Guard against a default-year false positive on digitless input.
		if t.Year() == 1900 && !hasDigit {
			continue
		}
		return t, true
	}

	if t, ok := parseMonthNameFallback(cleaned); ok {
		return t, true
	}

	return parsePositional(cleaned, ts)
}

// NormalizeTimestamp rewrites a raw timestamp into the canonical format.
// The second return value is false when the timestamp is unparseable.
func NormalizeTimestamp(ts string) (string, bool) {
	t, ok := ParseTimestamp(ts)
	if !ok {
		return "", false
	}
	return t.Format(TimeFormat), true
}
