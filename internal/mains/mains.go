// Package mains guesses the local electrical mains frequency so the
// hum-notch composite can target the right fundamental. Detection goes
// system timezone -> country -> 50/60 Hz.
package mains

import (
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// DefaultHz is used whenever detection fails; 50 Hz covers most of the
// world's grids.
const DefaultHz = 50

// Region describes the detected mains environment. Country is empty when
// detection fell back to the default.
type Region struct {
	Hz      int
	Country string
}

// Detect resolves the runtime timezone and returns the mains region.
func Detect() Region {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return Region{Hz: DefaultHz}
	}
	return ForTimezone(timezone)
}

// ForTimezone returns the mains region for an IANA timezone name.
func ForTimezone(timezone string) Region {
	// UTC and the Etc/ zones carry no country association.
	if timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return Region{Hz: DefaultHz}
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return Region{Hz: DefaultHz}
	}
	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return Region{Hz: DefaultHz}
	}

	hz := DefaultHz
	if sixtyHzCountries[country] {
		hz = 60
	}
	return Region{Hz: hz, Country: country}
}

// sixtyHzCountries lists the grids running at 60 Hz; everywhere else is
// treated as 50 Hz. Japan is split by region and is left at the 50 Hz
// default (Tokyo side).
var sixtyHzCountries = map[string]bool{
	"United States": true,
	"Canada":        true,
	"Mexico":        true,

	"Belize":      true,
	"Costa Rica":  true,
	"El Salvador": true,
	"Guatemala":   true,
	"Honduras":    true,
	"Nicaragua":   true,
	"Panama":      true,

	"Bahamas":             true,
	"Barbados":            true,
	"Cayman Islands":      true,
	"Cuba":                true,
	"Dominican Republic":  true,
	"Haiti":               true,
	"Jamaica":             true,
	"Puerto Rico":         true,
	"Trinidad and Tobago": true,
	"U.S. Virgin Islands": true,

	"Brazil":    true,
	"Colombia":  true,
	"Ecuador":   true,
	"Guyana":    true,
	"Peru":      true,
	"Suriname":  true,
	"Venezuela": true,

	"South Korea":  true,
	"Taiwan":       true,
	"Philippines":  true,
	"Saudi Arabia": true,

	"Guam":             true,
	"American Samoa":   true,
	"Marshall Islands": true,
	"Micronesia":       true,
	"Palau":            true,
}
