package address

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
)

// Result carries structural findings for one address. Errors block submission
// (the caller decides), warnings are advisory only.
type Result struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

var postalPatterns = map[string]*regexp.Regexp{
	"US": regexp.MustCompile(`^\d{5}(-\d{4})?$`),
	"CA": regexp.MustCompile(`^[A-Za-z]\d[A-Za-z][ -]?\d[A-Za-z]\d$`),
	"GB": regexp.MustCompile(`^[A-Za-z]{1,2}\d[A-Za-z\d]?\s?\d[A-Za-z]{2}$`),
	"DE": regexp.MustCompile(`^\d{5}$`),
	"FR": regexp.MustCompile(`^\d{5}$`),
	"NL": regexp.MustCompile(`^\d{4}\s?[A-Za-z]{2}$`),
	"JP": regexp.MustCompile(`^\d{3}-?\d{4}$`),
	"AU": regexp.MustCompile(`^\d{4}$`),
	"BR": regexp.MustCompile(`^\d{5}-?\d{3}$`),
	"IN": regexp.MustCompile(`^\d{6}$`),
}

// Countries where an empty state/province is unusual enough to warn about.
var stateExpected = map[string]bool{
	"US": true,
	"CA": true,
	"AU": true,
	"BR": true,
}

// Validate performs purely structural checks: required fields plus a
// per-country postal code pattern. No external lookups. It is pure, so it can
// run on every field change and once more as the submission gate.
//
// A country with no known postal pattern produces no pattern error. That is a
// deliberate permissive default: better to accept an unknown format than to
// block a real customer over a pattern table gap.
func Validate(addr domain.Address, countryCode string) Result {
	var res Result

	country := strings.ToUpper(strings.TrimSpace(countryCode))
	if country == "" {
		country = strings.ToUpper(strings.TrimSpace(addr.CountryCode))
	}

	if strings.TrimSpace(addr.FirstName) == "" && strings.TrimSpace(addr.LastName) == "" {
		res.Errors = append(res.Errors, "recipient name is required")
	}
	if strings.TrimSpace(addr.Line1) == "" {
		res.Errors = append(res.Errors, "address line1 is required")
	}
	if strings.TrimSpace(addr.City) == "" {
		res.Errors = append(res.Errors, "city is required")
	}
	if country == "" {
		res.Errors = append(res.Errors, "country is required")
	}

	postal := strings.TrimSpace(addr.PostalCode)
	if postal == "" {
		res.Errors = append(res.Errors, "postal code is required")
	} else if pattern, known := postalPatterns[country]; known && !pattern.MatchString(postal) {
		res.Errors = append(res.Errors, fmt.Sprintf("postal code %q does not match the %s format", postal, country))
	}

	if stateExpected[country] && strings.TrimSpace(addr.State) == "" {
		res.Warnings = append(res.Warnings, "state or province is usually required for "+country)
	}
	if strings.TrimSpace(addr.Phone) == "" {
		res.Warnings = append(res.Warnings, "phone number helps the carrier reach the recipient")
	}

	return res
}
