package units

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

func TestConvert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   string
		from     string
		to       string
		expected string
	}{
		{
			name:     "one ether in wei",
			amount:   "1000000000000000000",
			from:     "wei",
			to:       "ether",
			expected: "1",
		},
		{
			name:     "one ether back to wei",
			amount:   "1",
			from:     "ether",
			to:       "wei",
			expected: "1000000000000000000",
		},
		{
			name:     "gwei to wei",
			amount:   "20",
			from:     "gwei",
			to:       "wei",
			expected: "20000000000",
		},
		{
			name:     "fractional ether",
			amount:   "0.5",
			from:     "ether",
			to:       "wei",
			expected: "500000000000000000",
		},
		{
			name:     "wei to gwei with fraction",
			amount:   "1500000000",
			from:     "wei",
			to:       "gwei",
			expected: "1.5",
		},
		{
			name:     "sub-unit result",
			amount:   "1",
			from:     "wei",
			to:       "ether",
			expected: "0.000000000000000001",
		},
		{
			name:     "same unit",
			amount:   "42",
			from:     "wei",
			to:       "wei",
			expected: "42",
		},
		{
			name:     "zero",
			amount:   "0",
			from:     "ether",
			to:       "wei",
			expected: "0",
		},
		{
			name:     "alias shannon equals gwei",
			amount:   "7",
			from:     "shannon",
			to:       "wei",
			expected: "7000000000",
		},
		{
			name:     "exceeds float64 mantissa exactly",
			amount:   "123456789012345678901234567890",
			from:     "wei",
			to:       "kwei",
			expected: "123456789012345678901234567.89",
		},
		{
			name:     "case insensitive names",
			amount:   "1",
			from:     "Ether",
			to:       "GWEI",
			expected: "1000000000",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result, err := Convert(tc.amount, tc.from, tc.to)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestConvertRoundTrip(t *testing.T) {
	t.Parallel()

	// wei -> ether -> wei is exact
	asEther, err := Convert("1000000000000000000", "wei", "ether")
	require.NoError(t, err)
	back, err := Convert(asEther, "ether", "wei")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", back)
}

func TestConvertErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount string
		from   string
		to     string
	}{
		{"unknown source denomination", "1", "parsec", "wei"},
		{"unknown target denomination", "1", "wei", "parsec"},
		{"empty amount", "", "wei", "ether"},
		{"non-numeric amount", "abc", "wei", "ether"},
		{"negative amount", "-1", "wei", "ether"},
		{"two decimal points", "1.2.3", "wei", "ether"},
		{"lone decimal point", ".", "wei", "ether"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Convert(tc.amount, tc.from, tc.to)
			require.Error(t, err)
			assert.ErrorIs(t, err, ethrawerr.ErrParse)
		})
	}
}

func TestUnknownDenominationSuggestion(t *testing.T) {
	t.Parallel()

	_, err := Convert("1", "ethre", "wei")
	require.Error(t, err)

	var e *ethrawerr.Error
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Suggestion, "ether")
}

func TestToWei(t *testing.T) {
	t.Parallel()

	v, err := ToWei("1.5", "ether")
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", v.String())

	v, err = ToWei("21000", "wei")
	require.NoError(t, err)
	assert.Equal(t, "21000", v.String())

	// Trailing zeros past the wei boundary are fine
	v, err = ToWei("1.000000000000000000", "ether")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", v.String())

	// A fraction of a wei is not
	_, err = ToWei("0.5", "wei")
	require.Error(t, err)
	assert.ErrorIs(t, err, ethrawerr.ErrParse)

	_, err = ToWei("1.0000000000000000001", "ether")
	require.Error(t, err)
}

func TestFromWei(t *testing.T) {
	t.Parallel()

	s, err := FromWei(big.NewInt(1500000000), "gwei")
	require.NoError(t, err)
	assert.Equal(t, "1.5", s)

	s, err = FromWei(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil), "ether")
	require.NoError(t, err)
	assert.Equal(t, "1", s)

	_, err = FromWei(big.NewInt(-1), "ether")
	assert.Error(t, err)

	_, err = FromWei(nil, "ether")
	assert.Error(t, err)
}

func TestNames(t *testing.T) {
	t.Parallel()

	names := Names()
	assert.Contains(t, names, "wei")
	assert.Contains(t, names, "ether")
	assert.Contains(t, names, "tether")
	assert.True(t, len(names) >= 15)
	assert.Equal(t, strings.ToLower(strings.Join(names, " ")), strings.Join(names, " "))
}
