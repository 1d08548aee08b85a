package ethcrypto

import (
	"errors"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

var (
	// ErrInvalidPrivateKey indicates the private key is invalid.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidHashLength indicates the hash length is not 32 bytes.
	ErrInvalidHashLength = errors.New("hash must be 32 bytes")

	// ErrInvalidSignatureValues indicates r or s is out of range.
	ErrInvalidSignatureValues = errors.New("signature r and s must be in (0, N)")

	// ErrInvalidRecoveryID indicates v does not resolve to 27 or 28.
	ErrInvalidRecoveryID = errors.New("recovery indicator must resolve to 27 or 28")

	// ErrRecoveryFailed indicates no valid curve point recovers for the
	// given hash and signature.
	ErrRecoveryFailed = errors.New("public key recovery failed")

	// ErrInvalidPublicKeyPrefix indicates an invalid public key prefix.
	ErrInvalidPublicKeyPrefix = errors.New("invalid public key prefix")

	// ErrInvalidPublicKeyLength indicates an invalid public key length.
	ErrInvalidPublicKeyLength = errors.New("invalid public key length")

	// ErrInvalidCompactLength indicates a compact signature that is not 65 bytes.
	ErrInvalidCompactLength = errors.New("compact signature must be 65 bytes")
)

// Curve order constants, initialized once at startup.
//
//nolint:gochecknoglobals // Cryptographic constants for secp256k1 elliptic curve
var (
	curveOrder     *big.Int
	halfCurveOrder *big.Int
)

//nolint:gochecknoinits // Required for cryptographic constant initialization
func init() {
	curveOrder = new(big.Int).Set(secp256k1.S256().N)
	halfCurveOrder = new(big.Int).Rsh(curveOrder, 1)
}

// CurveOrder returns the order of the secp256k1 group.
func CurveOrder() *big.Int {
	return new(big.Int).Set(curveOrder)
}

// Signature is an ECDSA signature with the legacy recovery indicator.
// V is 27 or 28 ("27 + parity bit").
type Signature struct {
	R *big.Int
	S *big.Int
	V byte
}

// NewSignature builds a Signature from raw components, normalizing a
// parity-bit recovery indicator (v < 27) to the legacy 27/28 form.
// The components are not range-checked; call Validate for that.
func NewSignature(r, s *big.Int, v byte) *Signature {
	return &Signature{
		R: new(big.Int).Set(r),
		S: new(big.Int).Set(s),
		V: normalizeV(v),
	}
}

// normalizeV shifts a raw parity bit up to the legacy 27/28 form.
// Values already >= 27 pass through unchanged.
func normalizeV(v byte) byte {
	if v < 27 {
		return v + 27
	}
	return v
}

// Validate checks that r and s are in (0, N) and that v resolves to 27
// or 28. Malleability is not a validity condition; see IsMalleable.
func (sig *Signature) Validate() error {
	if sig.R == nil || sig.S == nil {
		return ErrInvalidSignatureValues
	}
	if sig.R.Sign() <= 0 || sig.S.Sign() <= 0 {
		return ErrInvalidSignatureValues
	}
	if sig.R.Cmp(curveOrder) >= 0 || sig.S.Cmp(curveOrder) >= 0 {
		return ErrInvalidSignatureValues
	}
	if sig.V != 27 && sig.V != 28 {
		return ErrInvalidRecoveryID
	}
	return nil
}

// IsMalleable reports whether s exceeds N/2. Such a signature is still
// mathematically valid and recoverable, but stricter validation policies
// reject it. Callers decide how to treat the condition.
func (sig *Signature) IsMalleable() bool {
	return sig.S != nil && sig.S.Cmp(halfCurveOrder) > 0
}

// Compact returns the 65-byte wire form r ‖ s ‖ (v - 27).
func (sig *Signature) Compact() []byte {
	out := make([]byte, 65)
	sig.R.FillBytes(out[0:32])
	sig.S.FillBytes(out[32:64])
	out[64] = sig.V - 27
	return out
}

// SignatureFromCompact parses the 65-byte wire form r ‖ s ‖ v, accepting
// both the raw parity bit (0/1) and the legacy offset form (27/28) for v.
func SignatureFromCompact(b []byte) (*Signature, error) {
	if len(b) != 65 {
		return nil, ErrInvalidCompactLength
	}
	return &Signature{
		R: new(big.Int).SetBytes(b[0:32]),
		S: new(big.Int).SetBytes(b[32:64]),
		V: normalizeV(b[64]),
	}, nil
}

// Sign signs the given 32-byte hash with the private key. The signature
// is deterministic (RFC 6979 nonces) with s already in the lower half of
// the group order. The key material is not retained.
func Sign(hash, privateKey []byte) (*Signature, error) {
	if len(hash) != HashLength {
		return nil, ErrInvalidHashLength
	}
	if err := ValidatePrivateKey(privateKey); err != nil {
		return nil, err
	}

	privKey := secp256k1.PrivKeyFromBytes(privateKey)
	defer privKey.Zero()

	// SignCompact returns [V || R || S] (65 bytes) with V already in the
	// legacy 27/28 form for an uncompressed public key
	compact := ecdsa.SignCompact(privKey, hash, false)

	return &Signature{
		R: new(big.Int).SetBytes(compact[1:33]),
		S: new(big.Int).SetBytes(compact[33:65]),
		V: compact[0],
	}, nil
}

// Recover returns the uncompressed public key (65 bytes, 0x04-prefixed)
// that produced sig over hash. Recovery is a pure function of its inputs.
func Recover(hash []byte, sig *Signature) ([]byte, error) {
	if len(hash) != HashLength {
		return nil, ErrInvalidHashLength
	}
	if err := sig.Validate(); err != nil {
		return nil, err
	}

	// RecoverCompact wants [V || R || S] with V in the 27/28 form
	compact := make([]byte, 65)
	compact[0] = sig.V
	sig.R.FillBytes(compact[1:33])
	sig.S.FillBytes(compact[33:65])

	pubKey, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, ErrRecoveryFailed
	}

	return pubKey.SerializeUncompressed(), nil
}

// ValidatePrivateKey checks that the key is a 32-byte scalar in (0, N).
func ValidatePrivateKey(privateKey []byte) error {
	if len(privateKey) != 32 {
		return ErrInvalidPrivateKey
	}
	k := new(big.Int).SetBytes(privateKey)
	defer k.SetInt64(0)
	if k.Sign() == 0 || k.Cmp(curveOrder) >= 0 {
		return ErrInvalidPrivateKey
	}
	return nil
}

// PrivateKeyToPublicKey derives the uncompressed public key
// (65 bytes: 0x04 || X || Y) from a private key.
func PrivateKeyToPublicKey(privateKey []byte) ([]byte, error) {
	if err := ValidatePrivateKey(privateKey); err != nil {
		return nil, err
	}

	privKey := secp256k1.PrivKeyFromBytes(privateKey)
	defer privKey.Zero()

	return privKey.PubKey().SerializeUncompressed(), nil
}

// ZeroBytes zeros out sensitive byte material.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
