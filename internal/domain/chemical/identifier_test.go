package chemical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeCandidateIDs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "plain two words",
			in:   "ethyl acetate",
			want: []string{"EthylAcetate", "EthylAcetate"},
		},
		{
			name: "mixed case is re-titled",
			in:   "sULFURIC aCID",
			want: []string{"SulfuricAcid", "SulfuricAcid"},
		},
		{
			name: "brackets are stripped",
			in:   "Sodium Hydroxide (Caustic Soda)",
			want: []string{"SodiumHydroxideCausticSoda", "SodiumHydroxideCausticSoda"},
		},
		{
			name: "comma compound",
			in:   "aluminum, diethyl ether",
			want: []string{
				"AluminumDiethylEther",
				"aluminum..diethyl ether",
				"Aluminum..DiethylEther",
				"AluminumDiethylEther",
			},
		},
		{
			name: "digits untouched",
			in:   "2-propanone",
			want: []string{"2-propanone", "2-propanone"},
		},
		{
			name: "extra whitespace collapses",
			in:   "  hydrogen \t peroxide ",
			want: []string{"HydrogenPeroxide", "HydrogenPeroxide"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SynthesizeCandidateIDs(tt.in))
		})
	}
}

func TestSynthesizeCandidateIDs_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "   "} {
		got := SynthesizeCandidateIDs(in)
		require.Len(t, got, 1)
		assert.Equal(t, "", got[0])
	}
}

func TestSynthesizeCandidateIDs_MatchesFormattedIdentifier(t *testing.T) {
	// A synthesized candidate must round-trip through FormatIdentifier back
	// to the comma form users type.
	ids := SynthesizeCandidateIDs("Aluminum, Diethyl Ether")
	assert.Contains(t, ids, "Aluminum..DiethylEther")
	assert.Equal(t, "Aluminum, Diethyl Ether", FormatIdentifier("Aluminum..DiethylEther"))
}

func TestTitleToken(t *testing.T) {
	assert.Equal(t, "", titleToken(""))
	assert.Equal(t, "Acid", titleToken("aCID"))
	assert.Equal(t, "Éther", titleToken("éTHER"))
}
