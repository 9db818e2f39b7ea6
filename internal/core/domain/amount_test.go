package domain

import (
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want *uint256.Int
	}{
		{"0", uint256.NewInt(0)},
		{"42", uint256.NewInt(42)},
		{"1ether", uint256.NewInt(1_000_000_000_000_000_000)},
		{"1.5ether", uint256.NewInt(1_500_000_000_000_000_000)},
		{"0.000000000000000001 ether", uint256.NewInt(1)},
	}
	for _, tc := range tests {
		got, err := ParseAmount(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	hugeEther := "1" + strings.Repeat("0", 70) + "ether"
	for _, bad := range []string{"", "abc", "-1ether", "1.5", hugeEther, "1" + strings.Repeat("0", 78)} {
		_, err := ParseAmount(bad)
		require.ErrorIs(t, err, ErrInvalidAmount, bad)
	}
}

func TestParseEther_Bounds(t *testing.T) {
	maxWei := new(uint256.Int).SetAllOne()
	got, err := ParseEther(FormatEther(maxWei))
	require.NoError(t, err)
	assert.Equal(t, maxWei, got)

	_, err = ParseEther("115792089237316195423570985008687907853269984665640564039458")
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "1.500000000000000000", FormatEther(MustParseEther("1.5")))
}
