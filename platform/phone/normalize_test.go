package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		in, region, want string
	}{
		{"(415) 555-2671", "US", "+14155552671"},
		{"+31 6 12345678", "US", "+31612345678"},
		{"  555-1234  ", "US", "555-1234"},
		{"", "US", ""},
		{"not a number", "", "not a number"},
	}

	for _, tc := range cases {
		if got := NormalizeE164(tc.in, tc.region); got != tc.want {
			t.Errorf("NormalizeE164(%q, %q) = %q, want %q", tc.in, tc.region, got, tc.want)
		}
	}
}
