// Package keys supplies private key material to the signing layer:
// raw keys, BIP39 mnemonic seeds, and BIP32 path derivation.
package keys

import (
	"encoding/hex"
	"strings"

	"github.com/nexeth/ethraw/internal/eth/address"
	ethcrypto "github.com/nexeth/ethraw/internal/eth/crypto"
	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

// KeySource provides private key material and the derived public
// identity. Implementations return fresh copies; callers zero the key
// bytes after use.
type KeySource interface {
	PrivateKey() ([]byte, error)
	PublicKey() ([]byte, error)
	Address() (address.Address, error)
}

// RawKey is a KeySource backed by an in-memory 32-byte private key.
// The backing memory is mlocked where the platform allows it.
type RawKey struct {
	priv   []byte
	locked bool
}

// NewRawKey creates a RawKey from a 32-byte scalar. The input slice is
// copied; the caller keeps ownership of its own copy.
func NewRawKey(priv []byte) (*RawKey, error) {
	if err := ethcrypto.ValidatePrivateKey(priv); err != nil {
		return nil, ethrawerr.WithDetails(ethrawerr.ErrInvalidKey, map[string]string{
			"reason": err.Error(),
		})
	}
	k := make([]byte, len(priv))
	copy(k, priv)
	return &RawKey{priv: k, locked: mlock(k)}, nil
}

// RawKeyFromHex creates a RawKey from a hex string, with or without a
// 0x prefix.
func RawKeyFromHex(s string) (*RawKey, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, ethrawerr.WithDetails(ethrawerr.ErrInvalidKey, map[string]string{
			"reason": "malformed hex",
		})
	}
	defer ethcrypto.ZeroBytes(b)
	return NewRawKey(b)
}

// PrivateKey returns a fresh copy of the private key bytes.
func (k *RawKey) PrivateKey() ([]byte, error) {
	if k.priv == nil {
		return nil, ethrawerr.WithDetails(ethrawerr.ErrState, map[string]string{
			"reason": "key has been zeroed",
		})
	}
	out := make([]byte, len(k.priv))
	copy(out, k.priv)
	return out, nil
}

// PublicKey returns the uncompressed public key (65 bytes).
func (k *RawKey) PublicKey() ([]byte, error) {
	priv, err := k.PrivateKey()
	if err != nil {
		return nil, err
	}
	defer ethcrypto.ZeroBytes(priv)
	return ethcrypto.PrivateKeyToPublicKey(priv)
}

// Address returns the account address derived from the public key.
func (k *RawKey) Address() (address.Address, error) {
	pub, err := k.PublicKey()
	if err != nil {
		return address.Address{}, err
	}
	return address.PubkeyToAddress(pub)
}

// Zero wipes the key material. The RawKey is unusable afterwards.
func (k *RawKey) Zero() {
	ethcrypto.ZeroBytes(k.priv)
	if k.locked {
		munlock(k.priv)
		k.locked = false
	}
	k.priv = nil
}
