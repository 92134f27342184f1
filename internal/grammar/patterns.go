package grammar

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Canonical token shapes. Each one must match the whole token.
var (
	DecimalPrice     = regexp.MustCompile(`^\d+\.\d{2}$`)
	PriceWithTaxCode = regexp.MustCompile(`^(\d+\.\d{2})([A-Z])$`)
	DateSlash        = regexp.MustCompile(`^(?P<day>\d{2})/(?P<month>\d{2})/(?P<year>\d{4})$`)
	DateSlashShort   = regexp.MustCompile(`^(?P<day>\d{2})/(?P<month>\d{2})/(?P<year>\d{2})$`)
	DateCompact      = regexp.MustCompile(`^(?P<day>\d{1,2})(?P<mon>[A-Za-z]{3})(?P<year>\d{4})$`)
	TimeHHMMSS       = regexp.MustCompile(`^(?P<time>\d{2}:\d{2}:\d{2})$`)
	TimeHHMM         = regexp.MustCompile(`^(?P<time>\d{2}:\d{2})$`)

	// OCR fuses the till time onto the compact date on Sainsbury's slips.
	TimeThenCompactDate = regexp.MustCompile(`^(?P<time>\d{2}:\d{2}:\d{2})\s*(?P<day>\d{1,2})(?P<mon>[A-Za-z]{3})(?P<year>\d{4})$`)
	SlashDateThenTime   = regexp.MustCompile(`^(?P<day>\d{2})/(?P<month>\d{2})/(?P<year>\d{4})\s+(?P<time>\d{2}:\d{2})$`)

	integerToken = regexp.MustCompile(`^\d+$`)
)

// Amount is a parsed price token
type Amount struct {
	Value    decimal.Decimal // always >= 0
	Negative bool            // the token carried a leading minus
}

// ParsePrice reads a price token such as "1.99", "£1.99" or "-0.50".
// Only the DecimalPrice shape is accepted once the currency sign, blanks
// and a leading minus are stripped.
func ParsePrice(token string) (Amount, bool) {
	t := strings.TrimSpace(token)
	t = strings.ReplaceAll(t, "£", "")
	t = strings.ReplaceAll(t, " ", "")
	neg := strings.HasPrefix(t, "-")
	t = strings.TrimPrefix(t, "-")
	if !DecimalPrice.MatchString(t) {
		return Amount{}, false
	}
	v, err := decimal.NewFromString(t)
	if err != nil {
		return Amount{}, false
	}
	return Amount{Value: v, Negative: neg}, true
}

// ParseGluedPrice reads a price fused to its VAT code, e.g. "1.65A" or "1.65 A"
func ParseGluedPrice(token string) (Amount, string, bool) {
	t := strings.ReplaceAll(strings.TrimSpace(token), " ", "")
	neg := strings.HasPrefix(t, "-")
	t = strings.TrimPrefix(t, "-")
	m := PriceWithTaxCode.FindStringSubmatch(t)
	if m == nil {
		return Amount{}, "", false
	}
	v, err := decimal.NewFromString(m[1])
	if err != nil {
		return Amount{}, "", false
	}
	return Amount{Value: v, Negative: neg}, m[2], true
}

// IsInteger reports whether the token is a bare run of digits
func IsInteger(token string) bool {
	return integerToken.MatchString(strings.TrimSpace(token))
}

func namedGroups(re *regexp.Regexp, s string) map[string]string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if name != "" && m[i] != "" {
			out[name] = m[i]
		}
	}
	return out
}
