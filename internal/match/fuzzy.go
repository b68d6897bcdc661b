package match

import "github.com/hbollon/go-edlib"

// LCSSimilarity is the default fuzzy fallback: a longest-common-subsequence
// based similarity ratio in [0,1] over canonicalized names. It is the last
// resort for names carrying no structured identity signal at all.
func LCSSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	ratio, err := edlib.StringsSimilarity(a, b, edlib.Lcs)
	if err != nil {
		return 0
	}
	return float64(ratio)
}
