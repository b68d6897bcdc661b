package identity

import (
	"regexp"
	"strings"
)

// North American broadcast call signs are three or four letters starting with
// K, W, C, or D, optionally carrying a subchannel suffix like -DT or -2.
var (
	parenPattern        = regexp.MustCompile(`\(([^)]*)\)`)
	callsignTokenExact  = regexp.MustCompile(`^([KWCD][A-Z]{2,3})(?:-[A-Z0-9]{1,2})?$`)
	callsignWordPattern = regexp.MustCompile(`\b([KWCD][A-Z]{2,3})(?:-[A-Z0-9]{1,2})?\b`)
)

// callsignExclusions lists common channel-name words and network brands that
// are shaped like call signs but never identify a station.
var callsignExclusions = map[string]struct{}{
	"CBS":  {},
	"CINE": {},
	"CITY": {},
	"CLUB": {},
	"CMT":  {},
	"CNBC": {},
	"CNN":  {},
	"DISC": {},
	"EAST": {},
	"KIDS": {},
	"WEST": {},
	"WWE":  {},
}

// ExtractCallsign finds a broadcast call sign in a channel name.
// Parenthesized substrings are searched first since providers conventionally
// append the station code there; the whole name is searched as a fallback.
// Excluded words are skipped even when they look like call signs. The
// returned code is the base call sign without any subchannel suffix, or the
// empty string when nothing usable is present.
func ExtractCallsign(name string) string {
	if name == "" {
		return ""
	}
	upper := strings.ToUpper(name)

	for _, group := range parenPattern.FindAllStringSubmatch(upper, -1) {
		for _, token := range strings.Fields(group[1]) {
			if m := callsignTokenExact.FindStringSubmatch(token); m != nil {
				if _, excluded := callsignExclusions[m[1]]; !excluded {
					return m[1]
				}
			}
		}
	}

	for _, m := range callsignWordPattern.FindAllStringSubmatch(upper, -1) {
		if _, excluded := callsignExclusions[m[1]]; !excluded {
			return m[1]
		}
	}
	return ""
}
