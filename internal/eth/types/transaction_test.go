package ethtypes

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexeth/ethraw/internal/eth/address"
	ethcrypto "github.com/nexeth/ethraw/internal/eth/crypto"
	"github.com/nexeth/ethraw/internal/eth/rlp"
	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := hex.DecodeString("4646464646464646464646464646464646464646464646464646464646464646")
	require.NoError(t, err)
	return key
}

// testKeyAddress is the address derived from testKey.
const testKeyAddress = "0x9d8a62f656a8d1615c1294fd71e9cfb3e4855a4f"

func testTransaction(t *testing.T) *Transaction {
	t.Helper()
	to, err := address.FromHex("0x3535353535353535353535353535353535353535")
	require.NoError(t, err)

	value, ok := new(big.Int).SetString("de0b6b3a7640000", 16) // 1 ether
	require.True(t, ok)

	return NewTransaction(9, &to, value, 21000, big.NewInt(20000000000), nil)
}

func TestSerializeUnsigned(t *testing.T) {
	t.Parallel()

	tx := testTransaction(t)

	expected := "e9098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a764000080"
	assert.Equal(t, expected, hex.EncodeToString(tx.SerializeUnsigned()))
}

func TestSigningHashCoversUnsignedFieldsOnly(t *testing.T) {
	t.Parallel()

	tx := testTransaction(t)
	before := tx.SigningHash()

	require.NoError(t, tx.Sign(testKey(t)))

	// Signing must not change the signing hash
	assert.Equal(t, before, tx.SigningHash())

	// The signed serialization hashes to something else
	raw, err := tx.Serialize()
	require.NoError(t, err)
	assert.NotEqual(t, before[:], ethcrypto.Keccak256(raw))
}

func TestSignAndRecoverSender(t *testing.T) {
	t.Parallel()

	tx := testTransaction(t)
	assert.Equal(t, Unsigned, tx.State())

	require.NoError(t, tx.Sign(testKey(t)))
	assert.Equal(t, Signed, tx.State())
	assert.True(t, tx.IsSigned())

	sender, err := tx.SenderAddress()
	require.NoError(t, err)
	assert.Equal(t, testKeyAddress, sender.Hex())

	sig, err := tx.Signature()
	require.NoError(t, err)
	assert.False(t, sig.IsMalleable())
}

func TestSignZerosKeyMaterial(t *testing.T) {
	t.Parallel()

	key := testKey(t)
	tx := testTransaction(t)

	require.NoError(t, tx.Sign(key))
	assert.Equal(t, make([]byte, 32), key)
}

func TestSerializeRequiresSignature(t *testing.T) {
	t.Parallel()

	tx := testTransaction(t)

	_, err := tx.Serialize()
	require.Error(t, err)
	assert.ErrorIs(t, err, ethrawerr.ErrState)

	_, err = tx.Hash()
	assert.ErrorIs(t, err, ethrawerr.ErrState)

	_, err = tx.Signature()
	assert.ErrorIs(t, err, ethrawerr.ErrState)

	// ToRLP(true) on an unsigned transaction still yields six fields
	assert.Equal(t, 6, tx.ToRLP(true).Len())
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	tx := testTransaction(t)
	tx.Data = []byte{0xca, 0xfe}
	require.NoError(t, tx.Sign(testKey(t)))

	raw, err := tx.Serialize()
	require.NoError(t, err)

	parsed, err := DecodeTransaction(raw)
	require.NoError(t, err)

	// Parsed signatures are unverified until recovery succeeds
	assert.Equal(t, Assembled, parsed.State())

	assert.Equal(t, tx.Nonce, parsed.Nonce)
	assert.Equal(t, tx.GasPrice, parsed.GasPrice)
	assert.Equal(t, tx.GasLimit, parsed.GasLimit)
	assert.Equal(t, tx.To, parsed.To)
	assert.Equal(t, tx.Value, parsed.Value)
	assert.Equal(t, tx.Data, parsed.Data)
	assert.Equal(t, tx.V, parsed.V)
	assert.Equal(t, tx.R, parsed.R)
	assert.Equal(t, tx.S, parsed.S)

	sender, err := parsed.SenderAddress()
	require.NoError(t, err)
	assert.Equal(t, testKeyAddress, sender.Hex())

	// Re-serialization is byte-identical
	reRaw, err := parsed.Serialize()
	require.NoError(t, err)
	assert.Equal(t, raw, reRaw)
}

func TestContractCreation(t *testing.T) {
	t.Parallel()

	tx := NewTransaction(0, nil, big.NewInt(0), 100000, big.NewInt(1), []byte{0x60, 0x00})
	require.NoError(t, tx.Sign(testKey(t)))

	raw, err := tx.Serialize()
	require.NoError(t, err)

	parsed, err := DecodeTransaction(raw)
	require.NoError(t, err)
	assert.Nil(t, parsed.To)

	sender, err := parsed.SenderAddress()
	require.NoError(t, err)
	assert.Equal(t, testKeyAddress, sender.Hex())
}

func TestAssembleTransaction(t *testing.T) {
	t.Parallel()

	// Produce a signature out-of-band, then re-assemble the record
	signed := testTransaction(t)
	require.NoError(t, signed.Sign(testKey(t)))

	tpl := testTransaction(t)
	assembled := AssembleTransaction(
		tpl.Nonce, tpl.To, tpl.Value, tpl.GasLimit, tpl.GasPrice, tpl.Data,
		signed.V, signed.R, signed.S,
	)
	assert.Equal(t, Assembled, assembled.State())

	expected, err := signed.Serialize()
	require.NoError(t, err)
	got, err := assembled.Serialize()
	require.NoError(t, err)
	assert.Equal(t, expected, got)

	sender, err := assembled.SenderAddress()
	require.NoError(t, err)
	assert.Equal(t, testKeyAddress, sender.Hex())
}

func TestAssembledSignatureValidatedOnRecovery(t *testing.T) {
	t.Parallel()

	tpl := testTransaction(t)

	// Garbage v/r/s assembles fine but fails recovery
	assembled := AssembleTransaction(
		tpl.Nonce, tpl.To, tpl.Value, tpl.GasLimit, tpl.GasPrice, tpl.Data,
		big.NewInt(27), big.NewInt(0), big.NewInt(1),
	)

	_, err := assembled.Serialize()
	require.NoError(t, err)

	_, err = assembled.SenderAddress()
	require.Error(t, err)
	assert.ErrorIs(t, err, ethrawerr.ErrSignature)
}

func TestTamperedSignatureChangesSender(t *testing.T) {
	t.Parallel()

	tx := testTransaction(t)
	require.NoError(t, tx.Sign(testKey(t)))

	original, err := tx.SenderAddress()
	require.NoError(t, err)

	tampered := *tx
	tampered.R = new(big.Int).Add(tx.R, big.NewInt(1))

	recovered, err := tampered.SenderAddress()
	if err == nil {
		assert.NotEqual(t, original, recovered)
	}
}

func TestFromRLPRejectsMalformed(t *testing.T) {
	t.Parallel()

	six := testTransaction(t).ToRLP(false).Elems()

	tests := []struct {
		name string
		item rlp.Item
	}{
		{
			name: "not a list",
			item: rlp.String([]byte{0x01}),
		},
		{
			name: "too few elements",
			item: rlp.List(six[:5]...),
		},
		{
			name: "seven elements",
			item: rlp.List(append(append([]rlp.Item{}, six...), rlp.Uint64(1))...),
		},
		{
			name: "nested list element",
			item: rlp.List(rlp.List(), six[1], six[2], six[3], six[4], six[5]),
		},
		{
			name: "to field wrong length",
			item: rlp.List(six[0], six[1], six[2], rlp.String(make([]byte, 19)), six[4], six[5]),
		},
		{
			name: "nonce exceeds 64 bits",
			item: rlp.List(rlp.String([]byte{0x01, 0, 0, 0, 0, 0, 0, 0, 0}), six[1], six[2], six[3], six[4], six[5]),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := FromRLP(tc.item)
			require.Error(t, err)
			assert.ErrorIs(t, err, ethrawerr.ErrDecode)
		})
	}
}

func TestDecodeTransactionRejectsBadRLP(t *testing.T) {
	t.Parallel()

	_, err := DecodeTransaction([]byte{0xc8, 0x83})
	require.Error(t, err)
	assert.ErrorIs(t, err, ethrawerr.ErrDecode)
}

func TestNonceLeadingZerosTolerated(t *testing.T) {
	t.Parallel()

	// The decoder is a lenient superset: a non-minimal integer payload
	// still parses, but re-encoding is canonical
	six := testTransaction(t).ToRLP(false).Elems()
	item := rlp.List(rlp.String([]byte{0x00, 0x09}), six[1], six[2], six[3], six[4], six[5])

	tx, err := FromRLP(item)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), tx.Nonce)

	canonical := testTransaction(t).SerializeUnsigned()
	assert.Equal(t, canonical, tx.SerializeUnsigned())
}

func TestSigStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unsigned", Unsigned.String())
	assert.Equal(t, "signed", Signed.String())
	assert.Equal(t, "assembled", Assembled.String())
}
