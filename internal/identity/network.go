package identity

import (
	"regexp"
	"strings"
)

// networkPattern matches the major US broadcast network affiliations as whole
// words, case-insensitively. IND marks independent stations.
var networkPattern = regexp.MustCompile(`(?i)\b(ABC|NBC|CBS|FOX|PBS|CW|ION|MNT|IND)\b`)

// ExtractNetwork returns the network affiliation token present in a channel
// name, uppercased, or the empty string when none is found.
func ExtractNetwork(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(networkPattern.FindString(name))
}
