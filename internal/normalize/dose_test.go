package normalize

import "testing"

func TestNormalizeDose(t *testing.T) {
	t.Parallel()

	n := newNormalizer()
	tests := []struct {
		in, want string
	}{
		{"40 pills", "40 mg"},
		{"2 tablets", "2 mg"},
		{"1 capsule", "1 mg"},
		{"2 packs", "2 unit"},
		{"2 sprays", "2 spray"},
		{"1 vial", "1 unit"},

		// Already carries a real unit, left alone even with a delivery token.
		{"500 mg", "500 mg"},
		{"5 ml syrup", "5 ml syrup"},
		{"3 drops", "3 drops"},

		// No numeric part or no known token, returned unchanged.
		{"as needed", "as needed"},
		{"2 sachets", "2 sachets"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := n.NormalizeDose(tt.in); got != tt.want {
			t.Errorf("NormalizeDose(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
