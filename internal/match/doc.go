// Package match decides which guide identity, if any, represents a broadcast
// channel. Candidates are filtered and ordered by configured source priority,
// scored against the channel's extracted identity signals (call sign, state,
// city, network) with a fuzzy name-similarity fallback, then validated in
// strict descending-score order against a schedule.Validator.
//
// The rank-then-validate order is the central design decision: a candidate is
// only ever returned after its schedule data has been confirmed, so a
// higher-scoring but empty identity can never beat a lower-scoring working
// one. The healing variant re-runs the search while excluding the identity
// already known to be broken.
//
// Matching is a pure function of its inputs; the Selector holds no mutable
// state and is safe for concurrent use across channels.
package match
