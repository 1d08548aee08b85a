package ethcrypto

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrivateKey(t *testing.T) []byte {
	t.Helper()
	key, err := hex.DecodeString("4646464646464646464646464646464646464646464646464646464646464646")
	require.NoError(t, err)
	return key
}

func TestKeccak256(t *testing.T) {
	t.Parallel()

	// Known vectors
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "empty input",
			input:    nil,
			expected: "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		},
		{
			name:     "hello",
			input:    []byte("hello"),
			expected: "1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, hex.EncodeToString(Keccak256(tc.input)))
		})
	}
}

func TestSignAndRecover(t *testing.T) {
	t.Parallel()

	priv := testPrivateKey(t)
	hash := Keccak256([]byte("message to sign"))

	sig, err := Sign(hash, priv)
	require.NoError(t, err)
	require.NoError(t, sig.Validate())

	// Deterministic signing produces 27 or 28
	assert.Contains(t, []byte{27, 28}, sig.V)

	// The signer never emits a malleable s
	assert.False(t, sig.IsMalleable())

	expectedPub, err := PrivateKeyToPublicKey(priv)
	require.NoError(t, err)

	recovered, err := Recover(hash, sig)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(expectedPub, recovered))
}

func TestSignIsDeterministic(t *testing.T) {
	t.Parallel()

	priv := testPrivateKey(t)
	hash := Keccak256([]byte("deterministic"))

	first, err := Sign(hash, priv)
	require.NoError(t, err)
	second, err := Sign(hash, priv)
	require.NoError(t, err)

	assert.Equal(t, first.R, second.R)
	assert.Equal(t, first.S, second.S)
	assert.Equal(t, first.V, second.V)
}

func TestSignRejectsBadInput(t *testing.T) {
	t.Parallel()

	priv := testPrivateKey(t)

	tests := []struct {
		name    string
		hash    []byte
		priv    []byte
		wantErr error
	}{
		{"short hash", make([]byte, 31), priv, ErrInvalidHashLength},
		{"short key", make([]byte, 32), make([]byte, 16), ErrInvalidPrivateKey},
		{"zero key", make([]byte, 32), make([]byte, 32), ErrInvalidPrivateKey},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Sign(tc.hash, tc.priv)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidatePrivateKeyRange(t *testing.T) {
	t.Parallel()

	// N itself is out of range, N-1 is fine
	overflow := CurveOrder().Bytes()
	assert.ErrorIs(t, ValidatePrivateKey(overflow), ErrInvalidPrivateKey)

	maxValid := new(big.Int).Sub(CurveOrder(), big.NewInt(1))
	buf := make([]byte, 32)
	maxValid.FillBytes(buf)
	assert.NoError(t, ValidatePrivateKey(buf))
}

func TestSignatureValidate(t *testing.T) {
	t.Parallel()

	n := CurveOrder()
	one := big.NewInt(1)

	tests := []struct {
		name    string
		r, s    *big.Int
		v       byte
		wantErr error
	}{
		{"valid", one, one, 27, nil},
		{"valid parity normalized", one, one, 0, nil},
		{"zero r", big.NewInt(0), one, 27, ErrInvalidSignatureValues},
		{"zero s", one, big.NewInt(0), 28, ErrInvalidSignatureValues},
		{"r at curve order", n, one, 27, ErrInvalidSignatureValues},
		{"s at curve order", one, n, 27, ErrInvalidSignatureValues},
		{"bad recovery id", one, one, 29, ErrInvalidRecoveryID},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			sig := NewSignature(tc.r, tc.s, tc.v)
			err := sig.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestMalleabilityBoundary(t *testing.T) {
	t.Parallel()

	halfN := new(big.Int).Rsh(CurveOrder(), 1)

	atBoundary := NewSignature(big.NewInt(1), halfN, 27)
	assert.False(t, atBoundary.IsMalleable(), "s == N/2 is standard")

	aboveBoundary := NewSignature(big.NewInt(1), new(big.Int).Add(halfN, big.NewInt(1)), 27)
	assert.True(t, aboveBoundary.IsMalleable(), "s == N/2 + 1 is malleable")
}

func TestMalleableSignatureStillRecovers(t *testing.T) {
	t.Parallel()

	priv := testPrivateKey(t)
	hash := Keccak256([]byte("high-s recovery"))

	sig, err := Sign(hash, priv)
	require.NoError(t, err)

	// Flip to the high-s form: s' = N - s, parity flips with it
	highS := &Signature{
		R: new(big.Int).Set(sig.R),
		S: new(big.Int).Sub(CurveOrder(), sig.S),
		V: 27 + 28 - sig.V,
	}
	require.True(t, highS.IsMalleable())

	expectedPub, err := PrivateKeyToPublicKey(priv)
	require.NoError(t, err)

	recovered, err := Recover(hash, highS)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(expectedPub, recovered))
}

func TestCompactRoundTrip(t *testing.T) {
	t.Parallel()

	priv := testPrivateKey(t)
	hash := Keccak256([]byte("compact form"))

	sig, err := Sign(hash, priv)
	require.NoError(t, err)

	compact := sig.Compact()
	require.Len(t, compact, 65)

	// Wire form carries the raw parity bit
	assert.Contains(t, []byte{0, 1}, compact[64])

	parsed, err := SignatureFromCompact(compact)
	require.NoError(t, err)
	assert.Equal(t, sig.R, parsed.R)
	assert.Equal(t, sig.S, parsed.S)
	assert.Equal(t, sig.V, parsed.V)
}

func TestSignatureFromCompactAcceptsLegacyV(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 65)
	buf[31] = 1 // r = 1
	buf[63] = 1 // s = 1
	buf[64] = 28

	sig, err := SignatureFromCompact(buf)
	require.NoError(t, err)
	assert.Equal(t, byte(28), sig.V)

	_, err = SignatureFromCompact(buf[:64])
	assert.ErrorIs(t, err, ErrInvalidCompactLength)
}

func TestRecoverRejectsInvalid(t *testing.T) {
	t.Parallel()

	hash := Keccak256([]byte("x"))

	_, err := Recover(hash, NewSignature(big.NewInt(0), big.NewInt(1), 27))
	assert.ErrorIs(t, err, ErrInvalidSignatureValues)

	_, err = Recover(make([]byte, 16), NewSignature(big.NewInt(1), big.NewInt(1), 27))
	assert.ErrorIs(t, err, ErrInvalidHashLength)
}
