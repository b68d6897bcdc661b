package identity

import "testing"

func TestExtractCallsign(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"parenthesized", "ABC - IL Harrisburg (WSIL)", "WSIL"},
		{"parenthesized with suffix", "NBC 4 (WSMV-DT)", "WSMV"},
		{"standalone word", "WGN America", "WGN"},
		{"standalone with suffix", "WSIL-DT", "WSIL"},
		{"suffix with digit", "KTLA-5 Los Angeles", "KTLA"},
		{"lowercase input", "abc (wsil)", "WSIL"},
		{"prefers parenthesized", "KTLA News (WGN)", "WGN"},
		{"wrong leading letter", "ESPN News", ""},
		{"too long", "WSILXY Sports", ""},
		{"no callsign", "Premium Movie Channel", ""},
		{"excluded word west", "HBO West", ""},
		{"excluded word kids", "KIDS TV", ""},
		{"excluded network cnn", "CNN International", ""},
		{"excluded network cbs", "CBS Sports", ""},
		{"excluded in parens", "Nick (KIDS)", ""},
		{"excluded then real", "KIDS WQED Pittsburgh", "WQED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractCallsign(tc.input); got != tc.want {
				t.Fatalf("ExtractCallsign(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestExtractCallsignNeverReturnsExcludedWords(t *testing.T) {
	for word := range callsignExclusions {
		if got := ExtractCallsign(word); got != "" {
			t.Fatalf("ExtractCallsign(%q) = %q, want empty", word, got)
		}
		if got := ExtractCallsign("(" + word + ")"); got != "" {
			t.Fatalf("ExtractCallsign(%q in parens) = %q, want empty", word, got)
		}
	}
}
