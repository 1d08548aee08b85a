// Package units converts amounts between wei denominations using exact
// decimal arithmetic. Scale factors are integer powers of ten; floating
// point is never involved, so amounts beyond 53 bits of mantissa convert
// without precision loss.
package units

import (
	"math"
	"math/big"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

// exponents maps denomination names to their power-of-ten scale relative
// to wei.
//
//nolint:gochecknoglobals // Fixed denomination table
var exponents = map[string]int{
	"wei":        0,
	"kwei":       3,
	"babbage":    3,
	"mwei":       6,
	"lovelace":   6,
	"gwei":       9,
	"shannon":    9,
	"szabo":      12,
	"microether": 12,
	"finney":     15,
	"milliether": 15,
	"ether":      18,
	"kether":     21,
	"grand":      21,
	"mether":     24,
	"gether":     27,
	"tether":     30,
}

// Names returns the known denomination names, sorted.
func Names() []string {
	names := make([]string, 0, len(exponents))
	for name := range exponents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exponent returns the power-of-ten scale of a denomination relative to
// wei, or a parse error for an unknown name.
func Exponent(name string) (int, error) {
	exp, ok := exponents[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, unknownDenominationError(name)
	}
	return exp, nil
}

// Convert rescales amount from one denomination to another. The amount
// is a decimal string with an optional fraction part. The result is a
// decimal string with trailing zeros in the fraction trimmed; it is
// always exact because the scale ratio is a power of ten.
func Convert(amount, from, to string) (string, error) {
	fromExp, err := Exponent(from)
	if err != nil {
		return "", err
	}
	toExp, err := Exponent(to)
	if err != nil {
		return "", err
	}

	digits, frac, err := splitDecimal(amount)
	if err != nil {
		return "", err
	}

	// amount = digits * 10^-frac in from-units
	// result exponent relative to to-units:
	shift := fromExp - toExp - frac
	return shiftDecimal(digits, shift), nil
}

// ToWei converts an amount in the given denomination to an integer wei
// value. A fraction that does not resolve to a whole number of wei is a
// parse error.
func ToWei(amount, denomination string) (*big.Int, error) {
	exp, err := Exponent(denomination)
	if err != nil {
		return nil, err
	}

	digits, frac, err := splitDecimal(amount)
	if err != nil {
		return nil, err
	}

	shift := exp - frac
	if shift < 0 {
		// The fraction is finer than one wei; only trailing zeros may
		// be dropped
		cut := len(digits) + shift
		if cut < 0 || strings.Trim(digits[cut:], "0") != "" {
			return nil, ethrawerr.WithDetails(ethrawerr.ErrParse, map[string]string{
				"reason": "amount is not a whole number of wei",
				"amount": amount,
			})
		}
		digits = digits[:cut]
		shift = 0
	}

	result, ok := new(big.Int).SetString(digits+strings.Repeat("0", shift), 10)
	if !ok {
		// digits is validated decimal, so this cannot happen
		return nil, ethrawerr.ErrParse
	}
	return result, nil
}

// FromWei renders an integer wei value in the given denomination.
func FromWei(wei *big.Int, denomination string) (string, error) {
	if wei == nil || wei.Sign() < 0 {
		return "", ethrawerr.WithDetails(ethrawerr.ErrParse, map[string]string{
			"reason": "wei value must be a non-negative integer",
		})
	}
	exp, err := Exponent(denomination)
	if err != nil {
		return "", err
	}
	return shiftDecimal(wei.String(), -exp), nil
}

// splitDecimal validates a non-negative decimal string and returns the
// digits with the point removed plus the fraction length.
func splitDecimal(amount string) (digits string, fracLen int, err error) {
	s := strings.TrimSpace(amount)
	if s == "" {
		return "", 0, invalidAmountError(amount)
	}

	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart = s[:dot]
		fracPart = s[dot+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return "", 0, invalidAmountError(amount)
		}
	}
	if intPart == "" && fracPart == "" {
		return "", 0, invalidAmountError(amount)
	}

	for _, part := range []string{intPart, fracPart} {
		for i := 0; i < len(part); i++ {
			if part[i] < '0' || part[i] > '9' {
				return "", 0, invalidAmountError(amount)
			}
		}
	}

	digits = strings.TrimLeft(intPart+fracPart, "0")
	if digits == "" {
		digits = "0"
		fracPart = ""
	}
	return digits, len(fracPart), nil
}

// shiftDecimal multiplies a digit string by 10^shift and renders the
// exact decimal result.
func shiftDecimal(digits string, shift int) string {
	if digits == "0" {
		return "0"
	}
	if shift >= 0 {
		return digits + strings.Repeat("0", shift)
	}

	point := len(digits) + shift
	var intPart, fracPart string
	if point <= 0 {
		intPart = "0"
		fracPart = strings.Repeat("0", -point) + digits
	} else {
		intPart = digits[:point]
		fracPart = digits[point:]
	}

	fracPart = strings.TrimRight(fracPart, "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

// unknownDenominationError builds a parse error with a closest-match
// suggestion when the name looks like a typo.
func unknownDenominationError(name string) error {
	err := ethrawerr.WithDetails(ethrawerr.ErrParse, map[string]string{
		"reason":       "unknown denomination",
		"denomination": name,
	})

	if suggestion := suggestDenomination(name); suggestion != "" {
		return ethrawerr.WithSuggestion(err, "did you mean '"+suggestion+"'?")
	}
	return err
}

// maxTypoDistance is the largest Levenshtein distance still offered as a
// suggestion.
const maxTypoDistance = 2

// suggestDenomination finds the closest denomination name to the input.
// Returns empty string if nothing is close enough.
func suggestDenomination(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))

	minDist := math.MaxInt
	var suggestion string

	for _, name := range Names() {
		dist := levenshtein.ComputeDistance(input, name)
		if dist < minDist {
			minDist = dist
			suggestion = name
		}
		if dist == 0 {
			return name
		}
	}

	if minDist <= maxTypoDistance {
		return suggestion
	}
	return ""
}

func invalidAmountError(amount string) error {
	return ethrawerr.WithDetails(ethrawerr.ErrParse, map[string]string{
		"reason": "amount is not a decimal number",
		"amount": amount,
	})
}
