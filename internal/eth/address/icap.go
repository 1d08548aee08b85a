package address

import (
	"math/big"
	"strings"

	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

// ICAP encodes addresses in the IBAN layout: a two-letter system
// identifier ("XE"), two mod-97 check digits, and a base-36 payload.
//
// The direct form carries the address itself as 30 or 31 base-36 digits
// (31 fits every 160-bit address; 30 only those below 36^30). The
// indirect form carries a 16-character asset/institution/client
// identifier instead of an address.
const (
	icapPrefix = "XE"

	directPayloadLen    = 31
	directPayloadLenMin = 30

	indirectAssetLen       = 3
	indirectInstitutionLen = 4
	indirectClientLen      = 9
	indirectPayloadLen     = indirectAssetLen + indirectInstitutionLen + indirectClientLen
)

// IndirectICAP is the asset/institution-qualified identifier carried by
// the 20-character indirect form. Resolving it to an address requires an
// institution lookup, which is outside this codec.
type IndirectICAP struct {
	Asset       string
	Institution string
	Client      string
}

// EncodeICAP encodes an address in the direct ICAP form. The payload is
// always 31 digits (zero-padded) so any 20-byte address round-trips.
func EncodeICAP(a Address) string {
	payload := strings.ToUpper(new(big.Int).SetBytes(a[:]).Text(36))
	if pad := directPayloadLen - len(payload); pad > 0 {
		payload = strings.Repeat("0", pad) + payload
	}
	return icapPrefix + computeCheckDigits(payload) + payload
}

// DecodeICAP decodes a direct-form ICAP string back to the address.
// It fails with an address error when the prefix, length, mod-97
// checksum, or payload range is wrong.
func DecodeICAP(s string) (Address, error) {
	payload, err := validateICAP(s)
	if err != nil {
		return Address{}, err
	}
	if len(payload) != directPayloadLen && len(payload) != directPayloadLenMin {
		return Address{}, ethrawerr.WithDetails(ethrawerr.ErrAddress, map[string]string{
			"reason": "direct ICAP must be 34 or 35 characters",
		})
	}

	n, ok := new(big.Int).SetString(payload, 36)
	if !ok {
		return Address{}, ethrawerr.WithDetails(ethrawerr.ErrAddress, map[string]string{
			"reason": "payload is not base-36",
		})
	}
	if n.BitLen() > Length*8 {
		return Address{}, ethrawerr.WithDetails(ethrawerr.ErrAddress, map[string]string{
			"reason": "payload exceeds 160 bits",
		})
	}

	var a Address
	n.FillBytes(a[:])
	return a, nil
}

// EncodeIndirectICAP encodes an asset/institution/client identifier in
// the 20-character indirect form.
func EncodeIndirectICAP(ind IndirectICAP) (string, error) {
	asset := strings.ToUpper(ind.Asset)
	institution := strings.ToUpper(ind.Institution)
	client := strings.ToUpper(ind.Client)

	if len(asset) != indirectAssetLen ||
		len(institution) != indirectInstitutionLen ||
		len(client) != indirectClientLen {
		return "", ethrawerr.WithDetails(ethrawerr.ErrAddress, map[string]string{
			"reason": "indirect ICAP fields must be 3+4+9 characters",
		})
	}

	payload := asset + institution + client
	if !isBase36(payload) {
		return "", ethrawerr.WithDetails(ethrawerr.ErrAddress, map[string]string{
			"reason": "payload is not base-36",
		})
	}

	return icapPrefix + computeCheckDigits(payload) + payload, nil
}

// DecodeIndirectICAP decodes the 20-character indirect form into its
// components.
func DecodeIndirectICAP(s string) (IndirectICAP, error) {
	payload, err := validateICAP(s)
	if err != nil {
		return IndirectICAP{}, err
	}
	if len(payload) != indirectPayloadLen {
		return IndirectICAP{}, ethrawerr.WithDetails(ethrawerr.ErrAddress, map[string]string{
			"reason": "indirect ICAP must be 20 characters",
		})
	}

	return IndirectICAP{
		Asset:       payload[:indirectAssetLen],
		Institution: payload[indirectAssetLen : indirectAssetLen+indirectInstitutionLen],
		Client:      payload[indirectAssetLen+indirectInstitutionLen:],
	}, nil
}

// validateICAP checks the prefix, character set, and mod-97 checksum,
// returning the uppercase payload after the four header characters.
func validateICAP(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	if len(s) < 5 || !strings.HasPrefix(s, icapPrefix) {
		return "", ethrawerr.WithDetails(ethrawerr.ErrAddress, map[string]string{
			"reason": "ICAP must start with " + icapPrefix,
		})
	}
	if !isBase36(s) {
		return "", ethrawerr.WithDetails(ethrawerr.ErrAddress, map[string]string{
			"reason": "ICAP must be alphanumeric",
		})
	}

	// IBAN validation: move the first four characters to the end; the
	// expanded number must be ≡ 1 (mod 97)
	if mod97(s[4:]+s[:4]) != 1 {
		return "", ethrawerr.WithDetails(ethrawerr.ErrChecksumMismatch, map[string]string{
			"icap": s,
		})
	}

	return s[4:], nil
}

// computeCheckDigits derives the two check digits for a payload so the
// assembled string validates.
func computeCheckDigits(payload string) string {
	remainder := mod97(payload + icapPrefix + "00")
	check := 98 - remainder
	return string([]byte{byte('0' + check/10), byte('0' + check%10)})
}

// mod97 computes the ISO 7064 mod-97 remainder of an alphanumeric
// string, expanding letters to their two-digit values (A=10 .. Z=35).
// Input must be uppercase base-36.
func mod97(s string) int {
	m := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			m = (m*10 + int(c-'0')) % 97
		} else {
			m = (m*100 + int(c-'A') + 10) % 97
		}
	}
	return m
}

func isBase36(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
