package identity

// ChannelIdentity holds the signals derived from one channel display name.
// Fields are empty when the corresponding signal could not be extracted.
type ChannelIdentity struct {
	RawName  string
	Callsign string
	Location Location
	Network  string
}

// Parse strips the enabled decoration categories from a display name and
// extracts every available identity signal from what remains. The raw name is
// preserved for fuzzy comparison.
func Parse(name string, flags Flags) ChannelIdentity {
	stripped := StripDecorations(name, flags)
	return ChannelIdentity{
		RawName:  name,
		Callsign: ExtractCallsign(stripped),
		Location: ExtractLocation(stripped),
		Network:  ExtractNetwork(stripped),
	}
}

// HasSignals reports whether any structured signal was extracted. When false,
// only fuzzy name similarity can support a match.
func (c ChannelIdentity) HasSignals() bool {
	return c.Callsign != "" || c.Location.State != "" || c.Network != ""
}
