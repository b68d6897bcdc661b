package identity

import (
	"regexp"
	"strings"
)

// Location is a station's broadcast market. State is a two-letter US state or
// territory abbreviation; City may be empty when only the state was
// recoverable.
type Location struct {
	State string
	City  string
}

// stateAbbreviations covers the fifty states, DC, and the US territories.
var stateAbbreviations = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {},
	"DE": {}, "FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {}, "IN": {},
	"IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {}, "MA": {},
	"MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {}, "NV": {},
	"NH": {}, "NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {},
	"OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {}, "SD": {}, "TN": {},
	"TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {},
	"WY": {}, "DC": {}, "PR": {}, "VI": {}, "GU": {}, "AS": {}, "MP": {},
}

// ValidState reports whether token is a recognized US state or territory
// abbreviation.
func ValidState(token string) bool {
	_, ok := stateAbbreviations[strings.ToUpper(token)]
	return ok
}

var (
	// "- STATE City Words" up to an opening paren or end of string.
	dashLocationPattern = regexp.MustCompile(`-\s*([A-Z]{2})\b\s+([^()]+?)\s*(?:\(|$)`)
	// "(CALLSIGN) STATE City Words" and the reversed "STATE City Words (CALLSIGN)".
	callsignThenLocation = regexp.MustCompile(`\([KWCD][A-Z]{2,3}(?:-[A-Z0-9]{1,2})?\)\s+([A-Z]{2})\b\s*([^()]*)`)
	locationThenCallsign = regexp.MustCompile(`\b([A-Z]{2})\b\s+([^()]+?)\s*\([KWCD][A-Z]{2,3}(?:-[A-Z0-9]{1,2})?\)`)
)

// ExtractLocation derives a station's market from a channel name. Three
// layouts are tried in order: a dash-prefixed "- ST City" segment, a state
// and city adjacent to a parenthesized call sign (either order), and finally
// a bare two-letter state token anywhere in the name (state only). The zero
// Location is returned when nothing matches.
func ExtractLocation(name string) Location {
	if name == "" {
		return Location{}
	}

	upper := strings.ToUpper(name)
	for _, pattern := range []*regexp.Regexp{dashLocationPattern, callsignThenLocation, locationThenCallsign} {
		for _, m := range pattern.FindAllStringSubmatch(upper, -1) {
			if ValidState(m[1]) {
				return Location{State: m[1], City: cleanCity(m[2])}
			}
		}
	}

	for _, token := range strings.Fields(upper) {
		if len(token) == 2 && ValidState(token) {
			return Location{State: token}
		}
	}
	return Location{}
}

func cleanCity(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
