package match

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"epgdoctor/internal/identity"
)

// Signal weights. A call-sign agreement is definitive station identity and
// carries full confidence on its own; the partial signals are additive and
// the total is clamped to maxScore.
const (
	callsignScore = 100
	stateScore    = 30
	cityScore     = 20
	networkScore  = 10
	maxScore      = 100

	// fuzzyCeiling caps the fallback: even a perfect name-similarity ratio
	// only reaches half confidence, keeping fuzzy matches below any
	// structured two-signal match.
	fuzzyCeiling = 50
)

// Signal tags reported in MatchResult.Signals.
const (
	SignalCallsign = "Callsign"
	SignalState    = "State"
	SignalCity     = "City"
	SignalNetwork  = "Network"
	SignalFuzzy    = "Fuzzy"
)

// SimilarityFunc computes a normalized similarity ratio in [0,1] between two
// canonicalized names.
type SimilarityFunc func(a, b string) float64

// Scorer computes weighted confidence scores for candidates against one
// channel identity.
type Scorer struct {
	flags      identity.Flags
	threshold  float64
	similarity SimilarityFunc
}

// ScorerOption customizes a Scorer.
type ScorerOption func(*Scorer)

// WithSimilarity overrides the fuzzy similarity function. Tests use this to
// pin exact ratios.
func WithSimilarity(fn SimilarityFunc) ScorerOption {
	return func(s *Scorer) {
		if fn != nil {
			s.similarity = fn
		}
	}
}

// NewScorer validates cfg and builds a scorer.
func NewScorer(cfg Config, opts ...ScorerOption) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Scorer{
		flags:      cfg.Decorations,
		threshold:  float64(cfg.FuzzyThreshold) / 100,
		similarity: LCSSimilarity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Score computes the confidence score and contributing signal tags for one
// candidate. Structured signals are tried first; the fuzzy fallback only runs
// when no structured signal matched at all.
func (s *Scorer) Score(channel identity.ChannelIdentity, candidate RankedCandidate) (int, []string) {
	score := 0
	var signals []string
	candidateName := identity.Normalize(candidate.Name)

	if channel.Callsign != "" {
		if candidate.Identity.Callsign == channel.Callsign || containsWord(candidateName, channel.Callsign) {
			score += callsignScore
			signals = append(signals, SignalCallsign)
		}
	}
	if channel.Location.State != "" && candidate.Identity.Location.State == channel.Location.State {
		score += stateScore
		signals = append(signals, SignalState)
		chCity := strings.ToUpper(channel.Location.City)
		candCity := strings.ToUpper(candidate.Identity.Location.City)
		if chCity != "" && candCity != "" &&
			(strings.Contains(chCity, candCity) || strings.Contains(candCity, chCity)) {
			score += cityScore
			signals = append(signals, SignalCity)
		}
	}
	if channel.Network != "" && containsWord(candidateName, channel.Network) {
		score += networkScore
		signals = append(signals, SignalNetwork)
	}
	if score > maxScore {
		score = maxScore
	}
	if score > 0 {
		return score, signals
	}

	ratio := s.similarity(identity.Normalize(channel.RawName), candidateName)
	if ratio >= s.threshold {
		return int(math.Floor(ratio * fuzzyCeiling)), []string{SignalFuzzy}
	}
	return 0, nil
}

// Rank scores every candidate, discards the zero scores, and returns the rest
// ordered by descending score with ties broken by ascending source priority.
// The sort is stable, so equal-score, equal-priority candidates keep their
// pool order.
func (s *Scorer) Rank(channel identity.ChannelIdentity, candidates []RankedCandidate) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		score, signals := s.Score(channel, candidate)
		if score == 0 {
			continue
		}
		candidate.Score = score
		candidate.Signals = signals
		ranked = append(ranked, candidate)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Priority < ranked[j].Priority
	})
	return ranked
}

// Flags returns the decoration flags the scorer strips with, so callers parse
// the channel side identically.
func (s *Scorer) Flags() identity.Flags {
	return s.flags
}

var wordSplitPattern = regexp.MustCompile(`\s+`)

// containsWord reports whether token appears as a whole word in the
// already-normalized text.
func containsWord(normalizedText, token string) bool {
	if normalizedText == "" || token == "" {
		return false
	}
	for _, word := range wordSplitPattern.Split(normalizedText, -1) {
		if word == token {
			return true
		}
	}
	return false
}
