package grammar

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateTimeRules tells the extractor which date/time shapes a vendor prints.
// Patterns use the named groups day, mon (month code) or month (number),
// year and time.
type DateTimeRules struct {
	Combined []*regexp.Regexp
	Dates    []*regexp.Regexp
	Times    []*regexp.Regexp
	// FromBottom scans the stream last token first.
	FromBottom bool
	// Normalize prepares a token before matching, e.g. dropping a "Date:" label.
	Normalize func(string) string
}

// ExtractDateTime recovers the shopping date and time. A combined token wins;
// otherwise date and time are scanned for independently. Candidates that
// match structurally but not semantically are skipped.
func ExtractDateTime(s Stream, r DateTimeRules) (*time.Time, *string) {
	for _, tok := range r.order(s) {
		for _, re := range r.Combined {
			g := namedGroups(re, tok)
			if g == nil {
				continue
			}
			d, okDate := dateFromGroups(g)
			c, okClock := clockFrom(g["time"])
			if okDate && okClock {
				return &d, &c
			}
		}
	}

	var date *time.Time
	var clock *string
	for _, tok := range r.order(s) {
		if c, ok := matchClock(r.Times, tok); ok {
			clock = &c
			break
		}
	}
	for _, tok := range r.order(s) {
		if d, ok := matchDate(r.Dates, tok); ok {
			date = &d
			break
		}
	}
	return date, clock
}

func (r DateTimeRules) order(s Stream) []string {
	toks := s.Tokens()
	for i, t := range toks {
		t = strings.TrimSpace(t)
		if r.Normalize != nil {
			t = r.Normalize(t)
		}
		toks[i] = t
	}
	if r.FromBottom {
		for i, j := 0, len(toks)-1; i < j; i, j = i+1, j-1 {
			toks[i], toks[j] = toks[j], toks[i]
		}
	}
	return toks
}

func matchDate(res []*regexp.Regexp, tok string) (time.Time, bool) {
	for _, re := range res {
		if g := namedGroups(re, tok); g != nil {
			if d, ok := dateFromGroups(g); ok {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

func matchClock(res []*regexp.Regexp, tok string) (string, bool) {
	for _, re := range res {
		if g := namedGroups(re, tok); g != nil {
			if c, ok := clockFrom(g["time"]); ok {
				return c, true
			}
		}
	}
	return "", false
}

// dateFromGroups validates the captured parts and builds a UTC calendar date
func dateFromGroups(g map[string]string) (time.Time, bool) {
	day, err := strconv.Atoi(g["day"])
	if err != nil {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(g["year"])
	if err != nil {
		return time.Time{}, false
	}
	if len(g["year"]) == 2 {
		year += 2000
	}

	var month int
	if code, ok := g["mon"]; ok {
		if month, ok = MonthNumber(code); !ok {
			return time.Time{}, false
		}
	} else if month, err = strconv.Atoi(g["month"]); err != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, false
	}
	return d, true
}

// clockFrom validates "HH:MM" or "HH:MM:SS"
func clockFrom(s string) (string, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", false
	}
	limits := []int{24, 60, 60}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n >= limits[i] {
			return "", false
		}
	}
	return s, true
}
