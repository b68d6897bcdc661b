// Package identity extracts identity signals from broadcast channel display
// names. Provider-supplied names carry inconsistent decorations (quality tags,
// regional markers, geographic prefixes) around the signals that actually
// identify a station: its call sign, its broadcast location, and its network
// affiliation.
//
// Parse strips the configured decoration categories and derives a
// ChannelIdentity holding whichever signals were present. Extraction never
// fails; an absent signal is an empty field, not an error.
package identity
