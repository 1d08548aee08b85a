// Package address implements 20-byte account addresses with EIP-55
// checksum casing and the ICAP (IBAN-style) indirect encoding.
package address

import (
	"encoding/hex"
	"strconv"
	"strings"

	ethcrypto "github.com/nexeth/ethraw/internal/eth/crypto"
	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

// Length is the byte length of an account address.
const Length = 20

// Address represents a 20-byte account address.
type Address [Length]byte

// FromBytes converts a byte slice to an Address. The slice must be
// exactly 20 bytes.
func FromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != Length {
		return Address{}, ethrawerr.WithDetails(ethrawerr.ErrAddress, map[string]string{
			"reason": "wrong length",
			"length": strconv.Itoa(len(b)),
		})
	}
	copy(a[:], b)
	return a, nil
}

// FromHex converts a hex string to an Address. The string may optionally
// start with "0x".
func FromHex(s string) (Address, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s) != Length*2 {
		return Address{}, ethrawerr.WithDetails(ethrawerr.ErrAddress, map[string]string{
			"reason": "hex string must be 40 characters",
		})
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, ethrawerr.WithDetails(ethrawerr.ErrAddress, map[string]string{
			"reason": "malformed hex",
		})
	}

	return FromBytes(b)
}

// PubkeyToAddress derives an address from a public key: the last 20
// bytes of keccak256 of the X,Y coordinates. Accepts the uncompressed
// 65-byte form (0x04-prefixed) or the bare 64-byte coordinates.
func PubkeyToAddress(publicKey []byte) (Address, error) {
	var coords []byte

	switch len(publicKey) {
	case 65:
		if publicKey[0] != 0x04 {
			return Address{}, ethrawerr.WithDetails(ethrawerr.ErrAddress, map[string]string{
				"reason": "public key prefix must be 0x04",
			})
		}
		coords = publicKey[1:]
	case 64:
		coords = publicKey
	default:
		return Address{}, ethrawerr.WithDetails(ethrawerr.ErrAddress, map[string]string{
			"reason": "public key must be 64 or 65 bytes",
		})
	}

	hash := ethcrypto.Keccak256(coords)
	return FromBytes(hash[12:])
}

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte {
	return a[:]
}

// Hex returns the address as a lowercase hex string with 0x prefix.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// String returns the EIP-55 checksummed representation.
func (a Address) String() string {
	return a.Checksum()
}

// Checksum returns the EIP-55 mixed-case rendering: each hex letter is
// uppercased when the corresponding nibble of keccak256 of the lowercase
// hex digits is >= 8.
func (a Address) Checksum() string {
	addrHex := hex.EncodeToString(a[:]) // always 40 lowercase chars
	hash := ethcrypto.Keccak256([]byte(addrHex))

	result := make([]byte, Length*2)
	for i := 0; i < len(result); i++ {
		result[i] = checksumChar(addrHex[i], hash[i/2], i%2 == 1)
	}

	return "0x" + string(result)
}

// checksumChar applies checksum casing to a single hex character.
func checksumChar(c, hashByte byte, isOddPosition bool) byte {
	if c >= '0' && c <= '9' {
		return c
	}

	nibble := hashByte >> 4
	if isOddPosition {
		nibble = hashByte & 0x0f
	}

	if nibble >= 8 {
		return c - 32 // Uppercase
	}
	return c
}

// ValidChecksum reports whether s carries valid checksum casing for the
// address it spells. All-lowercase and all-uppercase inputs always pass:
// a single-case string carries no checksum information. Callers that
// need typo detection must require mixed-case input.
func ValidChecksum(s string) bool {
	trimmed := strings.TrimPrefix(s, "0x")
	if len(trimmed) != Length*2 {
		return false
	}

	a, err := FromHex(s)
	if err != nil {
		return false
	}

	lower := strings.ToLower(trimmed)
	if trimmed == lower || trimmed == strings.ToUpper(trimmed) {
		return true
	}

	return "0x"+trimmed == a.Checksum()
}

// IsHexAddress reports whether s spells a syntactically valid address:
// optional 0x prefix and 40 hex digits.
func IsHexAddress(s string) bool {
	s = strings.TrimPrefix(s, "0x")
	if len(s) != Length*2 {
		return false
	}
	for _, c := range s {
		if !isHexChar(c) {
			return false
		}
	}
	return true
}

func isHexChar(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
