// Package ethtypes implements the legacy account transaction record: its
// RLP serialization, signing-hash derivation, and signature assembly.
package ethtypes

import (
	"encoding/hex"
	"math/big"

	"github.com/nexeth/ethraw/internal/eth/address"
	ethcrypto "github.com/nexeth/ethraw/internal/eth/crypto"
	"github.com/nexeth/ethraw/internal/eth/rlp"
	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

// SigState tags how a transaction's signature came to be. An Assembled
// transaction carries externally supplied v/r/s that were never checked
// against the curve; treat its signature as unverified until a recovery
// succeeds.
type SigState int

// Signature provenance states.
const (
	// Unsigned: no signature present.
	Unsigned SigState = iota
	// Signed: the signature was produced locally over the signing hash.
	Signed
	// Assembled: v/r/s were supplied externally without verification.
	Assembled
)

// String returns the state name.
func (s SigState) String() string {
	switch s {
	case Unsigned:
		return "unsigned"
	case Signed:
		return "signed"
	case Assembled:
		return "assembled"
	default:
		return "unknown"
	}
}

// Transaction is a legacy account transaction. Immutable once serialized;
// the only sanctioned mutation is signing in place.
type Transaction struct {
	Nonce    uint64
	GasPrice *big.Int
	GasLimit uint64
	To       *address.Address // nil for contract creation
	Value    *big.Int         // wei
	Data     []byte

	// Signature values, present for Signed and Assembled transactions
	V *big.Int
	R *big.Int
	S *big.Int

	state SigState
}

// NewTransaction creates an unsigned transaction.
func NewTransaction(nonce uint64, to *address.Address, value *big.Int, gasLimit uint64, gasPrice *big.Int, data []byte) *Transaction {
	return &Transaction{
		Nonce:    nonce,
		GasPrice: gasPrice,
		GasLimit: gasLimit,
		To:       to,
		Value:    value,
		Data:     data,
	}
}

// AssembleTransaction creates a transaction from a complete record
// including externally supplied v/r/s. No curve membership check is
// performed; the result serializes and inspects like a signed
// transaction but its signature is only trusted after SenderAddress
// succeeds.
func AssembleTransaction(nonce uint64, to *address.Address, value *big.Int, gasLimit uint64, gasPrice *big.Int, data []byte, v, r, s *big.Int) *Transaction {
	return &Transaction{
		Nonce:    nonce,
		GasPrice: gasPrice,
		GasLimit: gasLimit,
		To:       to,
		Value:    value,
		Data:     data,
		V:        v,
		R:        r,
		S:        s,
		state:    Assembled,
	}
}

// State returns the signature provenance.
func (tx *Transaction) State() SigState {
	return tx.state
}

// IsSigned reports whether signature values are present.
func (tx *Transaction) IsSigned() bool {
	return tx.state != Unsigned && tx.V != nil && tx.R != nil && tx.S != nil
}

// ToRLP maps the transaction to its ordered RLP list:
// [nonce, gasPrice, gasLimit, to, value, data], with [v, r, s] appended
// when includeSignature is set and a signature is present. Numeric
// fields are minimal big-endian strings (zero is the empty string); an
// absent To is the empty string.
func (tx *Transaction) ToRLP(includeSignature bool) rlp.Item {
	var to []byte
	if tx.To != nil {
		to = tx.To.Bytes()
	}

	elems := []rlp.Item{
		rlp.Uint64(tx.Nonce),
		rlp.BigInt(tx.GasPrice),
		rlp.Uint64(tx.GasLimit),
		rlp.String(to),
		rlp.BigInt(tx.Value),
		rlp.String(tx.Data),
	}

	if includeSignature && tx.IsSigned() {
		elems = append(elems,
			rlp.BigInt(tx.V),
			rlp.BigInt(tx.R),
			rlp.BigInt(tx.S),
		)
	}

	return rlp.List(elems...)
}

// SigningHash returns keccak256 of the six unsigned fields' encoding.
// This is the value signed and recovered against, never the full
// serialized transaction.
func (tx *Transaction) SigningHash() [ethcrypto.HashLength]byte {
	return ethcrypto.Keccak256Hash(rlp.Encode(tx.ToRLP(false)))
}

// Sign signs the transaction in place with the given 32-byte private
// key and tags it Signed. The key bytes are zeroed before returning.
func (tx *Transaction) Sign(privateKey []byte) error {
	defer ethcrypto.ZeroBytes(privateKey)

	hash := tx.SigningHash()
	sig, err := ethcrypto.Sign(hash[:], privateKey)
	if err != nil {
		return ethrawerr.WithDetails(ethrawerr.ErrSignature, map[string]string{
			"reason": err.Error(),
		})
	}

	tx.V = big.NewInt(int64(sig.V))
	tx.R = sig.R
	tx.S = sig.S
	tx.state = Signed

	return nil
}

// Signature returns the transaction's signature with v normalized to
// the legacy 27/28 form. StateError when unsigned.
func (tx *Transaction) Signature() (*ethcrypto.Signature, error) {
	if !tx.IsSigned() {
		return nil, ethrawerr.WithDetails(ethrawerr.ErrState, map[string]string{
			"reason": "transaction is not signed",
		})
	}
	if !tx.V.IsUint64() || tx.V.Uint64() > 255 {
		return nil, ethrawerr.WithDetails(ethrawerr.ErrSignature, map[string]string{
			"reason": "v out of range",
		})
	}
	return ethcrypto.NewSignature(tx.R, tx.S, byte(tx.V.Uint64())), nil
}

// SenderAddress recovers the signer's address from the signature over
// the signing hash. For Assembled transactions this is the point where
// the external signature is actually validated.
func (tx *Transaction) SenderAddress() (address.Address, error) {
	sig, err := tx.Signature()
	if err != nil {
		return address.Address{}, err
	}

	hash := tx.SigningHash()
	pubKey, err := ethcrypto.Recover(hash[:], sig)
	if err != nil {
		return address.Address{}, ethrawerr.WithDetails(ethrawerr.ErrSignature, map[string]string{
			"reason": err.Error(),
		})
	}

	return address.PubkeyToAddress(pubKey)
}

// Serialize returns the full RLP encoding including the signature.
// StateError when the transaction carries no signature.
func (tx *Transaction) Serialize() ([]byte, error) {
	if !tx.IsSigned() {
		return nil, ethrawerr.WithDetails(ethrawerr.ErrState, map[string]string{
			"reason": "cannot serialize without a signature",
		})
	}
	return rlp.Encode(tx.ToRLP(true)), nil
}

// SerializeUnsigned returns the six-field RLP encoding regardless of
// signature state.
func (tx *Transaction) SerializeUnsigned() []byte {
	return rlp.Encode(tx.ToRLP(false))
}

// Hash returns keccak256 of the serialized signed transaction.
func (tx *Transaction) Hash() ([]byte, error) {
	raw, err := tx.Serialize()
	if err != nil {
		return nil, err
	}
	return ethcrypto.Keccak256(raw), nil
}

// HashHex returns the transaction hash as a 0x-prefixed hex string.
func (tx *Transaction) HashHex() (string, error) {
	h, err := tx.Hash()
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(h), nil
}

// FromRLP reconstructs a transaction from its RLP item. The item must be
// a list of exactly 6 or 9 byte strings; anything else is a decode
// error. A 9-element list yields an Assembled transaction since the
// signature's origin is unknown.
func FromRLP(item rlp.Item) (*Transaction, error) {
	if !item.IsList() {
		return nil, decodeError("transaction must be a list")
	}

	elems := item.Elems()
	if len(elems) != 6 && len(elems) != 9 {
		return nil, decodeError("transaction list must have 6 or 9 elements")
	}
	for _, el := range elems {
		if el.IsList() {
			return nil, decodeError("transaction fields must be byte strings")
		}
	}

	nonce, err := uintField(elems[0], "nonce")
	if err != nil {
		return nil, err
	}
	gasLimit, err := uintField(elems[2], "gasLimit")
	if err != nil {
		return nil, err
	}

	var to *address.Address
	if toBytes := elems[3].Str(); len(toBytes) > 0 {
		a, err := address.FromBytes(toBytes)
		if err != nil {
			return nil, decodeError("to must be empty or 20 bytes")
		}
		to = &a
	}

	tx := &Transaction{
		Nonce:    nonce,
		GasPrice: new(big.Int).SetBytes(elems[1].Str()),
		GasLimit: gasLimit,
		To:       to,
		Value:    new(big.Int).SetBytes(elems[4].Str()),
		Data:     elems[5].Str(),
	}

	if len(elems) == 9 {
		tx.V = new(big.Int).SetBytes(elems[6].Str())
		tx.R = new(big.Int).SetBytes(elems[7].Str())
		tx.S = new(big.Int).SetBytes(elems[8].Str())
		tx.state = Assembled
	}

	return tx, nil
}

// DecodeTransaction parses untrusted raw transaction bytes. Signature
// recovery is deferred; call SenderAddress to validate.
func DecodeTransaction(raw []byte) (*Transaction, error) {
	item, err := rlp.Decode(raw)
	if err != nil {
		return nil, ethrawerr.WithDetails(ethrawerr.ErrDecode, map[string]string{
			"reason": err.Error(),
		})
	}
	return FromRLP(item)
}

// uintField interprets a byte-string element as a uint64. Leading zero
// bytes are tolerated (the decoder is a lenient superset of the
// canonical encoder) but values beyond 64 bits are rejected.
func uintField(el rlp.Item, name string) (uint64, error) {
	v := new(big.Int).SetBytes(el.Str())
	if !v.IsUint64() {
		return 0, decodeError(name + " exceeds 64 bits")
	}
	return v.Uint64(), nil
}

func decodeError(reason string) error {
	return ethrawerr.WithDetails(ethrawerr.ErrDecode, map[string]string{
		"reason": reason,
	})
}
