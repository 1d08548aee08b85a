package keys

import (
	"strings"

	"github.com/tyler-smith/go-bip39"

	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

// GenerateMnemonic creates a new BIP39 mnemonic phrase.
// wordCount must be 12 (128 bits entropy) or 24 (256 bits entropy).
func GenerateMnemonic(wordCount int) (string, error) {
	var bitSize int
	switch wordCount {
	case 12:
		bitSize = 128
	case 24:
		bitSize = 256
	default:
		return "", ethrawerr.WithDetails(ethrawerr.ErrInvalidMnemonic, map[string]string{
			"reason": "word count must be 12 or 24",
		})
	}

	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", err
	}

	return bip39.NewMnemonic(entropy)
}

// ValidateMnemonic checks word count, word validity, and checksum.
func ValidateMnemonic(mnemonic string) error {
	if !bip39.IsMnemonicValid(normalizeMnemonic(mnemonic)) {
		return ethrawerr.ErrInvalidMnemonic
	}
	return nil
}

// MnemonicToSeed converts a BIP39 mnemonic phrase to a 64-byte seed.
// The passphrase is optional. The returned seed should be zeroed after
// use.
func MnemonicToSeed(mnemonic, passphrase string) ([]byte, error) {
	normalized := normalizeMnemonic(mnemonic)
	seed, err := bip39.NewSeedWithErrorChecking(normalized, passphrase)
	if err != nil {
		return nil, ethrawerr.ErrInvalidMnemonic
	}
	return seed, nil
}

// normalizeMnemonic lowercases and collapses whitespace.
func normalizeMnemonic(mnemonic string) string {
	return strings.Join(strings.Fields(strings.ToLower(mnemonic)), " ")
}
