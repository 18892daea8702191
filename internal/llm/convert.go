package llm

import (
	"regexp"
	"strconv"
	"strings"
)

// Conversion helpers for free-text recipe fields. The structuring prompt asks
// the model to do these conversions itself, but source pages and transcribed
// photos carry times and servings as free text, so the normalizer applies the
// same rules again to fill anything the model left null.

var unicodeFractions = map[rune]float64{
	'½': 0.5,
	'⅓': 0.33,
	'⅔': 0.67,
	'¼': 0.25,
	'¾': 0.75,
	'⅛': 0.125,
}

var textFractions = map[string]float64{
	"1/2": 0.5,
	"1/3": 0.33,
	"2/3": 0.67,
	"1/4": 0.25,
	"3/4": 0.75,
	"1/8": 0.125,
}

var (
	rangeRe    = regexp.MustCompile(`(\d+)\s*(?:-|–|—|\bto\b)\s*(\d+)`)
	integerRe  = regexp.MustCompile(`\d+`)
	hoursRe    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:hours?|hrs?|h)\b`)
	minutesRe  = regexp.MustCompile(`(\d+)\s*(?:minutes?|mins?|m)\b`)
	isoDayRe   = regexp.MustCompile(`(\d+)d`)
	isoHourRe  = regexp.MustCompile(`(\d+)h`)
	isoMinRe   = regexp.MustCompile(`(\d+)m`)
	mixedNumRe = regexp.MustCompile(`^(\d+)[\s]+(\d+/\d+)$`)
)

// ParseQuantity converts a quantity string to a decimal amount. It handles
// plain numbers, vulgar fraction characters, textual fractions, and mixed
// numbers in either form ("1½", "1 1/2"). Returns nil for unparseable input.
func ParseQuantity(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// Whole number glued to a unicode fraction, e.g. "1½".
	runes := []rune(s)
	if frac, ok := unicodeFractions[runes[len(runes)-1]]; ok {
		whole := strings.TrimSpace(string(runes[:len(runes)-1]))
		if whole == "" {
			return &frac
		}
		if n, err := strconv.ParseFloat(whole, 64); err == nil {
			v := n + frac
			return &v
		}
		return nil
	}

	// Mixed number with a textual fraction, e.g. "1 1/2".
	if m := mixedNumRe.FindStringSubmatch(s); m != nil {
		whole, _ := strconv.ParseFloat(m[1], 64)
		if frac, ok := fractionValue(m[2]); ok {
			v := whole + frac
			return &v
		}
		return nil
	}

	if frac, ok := fractionValue(s); ok {
		return &frac
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return &n
	}
	return nil
}

func fractionValue(s string) (float64, bool) {
	if v, ok := textFractions[s]; ok {
		return v, true
	}
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, false
	}
	num, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	den, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0, false
	}
	return num / den, true
}

// ParseDurationMinutes converts a free-text or ISO-8601 duration to whole
// minutes. "1 hour 30 minutes" and "PT1H30M" both yield 90. Returns nil when
// no duration can be read.
func ParseDurationMinutes(s string) *int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}

	if strings.HasPrefix(s, "p") {
		return parseISODuration(s)
	}

	total := 0
	found := false
	if m := hoursRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.ParseFloat(m[1], 64)
		total += int(h * 60)
		found = true
	}
	if m := minutesRe.FindStringSubmatch(s); m != nil {
		mins, _ := strconv.Atoi(m[1])
		total += mins
		found = true
	}
	if found {
		return &total
	}

	// Bare number, assume minutes.
	if m := integerRe.FindString(s); m != "" {
		n, _ := strconv.Atoi(m)
		return &n
	}
	return nil
}

func parseISODuration(s string) *int {
	// Split the date part from the time part so "m" is unambiguous; months
	// never appear in recipe durations, so the date part only reads days.
	date, clock := s, ""
	if idx := strings.IndexByte(s, 't'); idx >= 0 {
		date, clock = s[:idx], s[idx+1:]
	}

	total := 0
	found := false
	if m := isoDayRe.FindStringSubmatch(date); m != nil {
		d, _ := strconv.Atoi(m[1])
		total += d * 24 * 60
		found = true
	}
	if m := isoHourRe.FindStringSubmatch(clock); m != nil {
		h, _ := strconv.Atoi(m[1])
		total += h * 60
		found = true
	}
	if m := isoMinRe.FindStringSubmatch(clock); m != nil {
		mins, _ := strconv.Atoi(m[1])
		total += mins
		found = true
	}
	if !found {
		return nil
	}
	return &total
}

// ParseServings extracts an integer serving count from free text. Ranges
// resolve to their midpoint rounded half up, so "Serves 4-6" yields 5.
func ParseServings(s string) *int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}

	if m := rangeRe.FindStringSubmatch(s); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		mid := (lo + hi + 1) / 2
		return &mid
	}
	if m := integerRe.FindString(s); m != "" {
		n, _ := strconv.Atoi(m)
		return &n
	}
	return nil
}
