// Package keystore persists private keys as password-protected files.
// Key material is encrypted with age scrypt recipients; the envelope
// records the derived address so corruption and wrong-key mixups are
// caught at load time.
package keystore

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"filippo.io/age"

	"github.com/nexeth/ethraw/internal/eth/address"
	"github.com/nexeth/ethraw/internal/fileutil"
	ethcrypto "github.com/nexeth/ethraw/internal/eth/crypto"
	"github.com/nexeth/ethraw/internal/keys"
	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

// envelopeVersion is the current key-file format version.
const envelopeVersion = 1

// envelope is the on-disk JSON structure.
type envelope struct {
	Version   int    `json:"version"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
	Key       string `json:"key"` // base64 of the age ciphertext
}

// Save encrypts the key under password and writes it to dir/name.json.
// Returns the file path.
func Save(dir, name string, key keys.KeySource, password []byte) (string, error) {
	priv, err := key.PrivateKey()
	if err != nil {
		return "", err
	}
	defer ethcrypto.ZeroBytes(priv)

	addr, err := key.Address()
	if err != nil {
		return "", err
	}

	ciphertext, err := encrypt(priv, password)
	if err != nil {
		return "", ethrawerr.Wrap(err, "encrypting key")
	}

	env := envelope{
		Version:   envelopeVersion,
		Address:   addr.Hex(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Key:       base64.StdEncoding.EncodeToString(ciphertext),
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name+".json")
	if err := fileutil.WriteAtomic(path, data, 0o600); err != nil {
		return "", err
	}

	return path, nil
}

// Load reads and decrypts a key file. The recorded address must match
// the address derived from the decrypted key.
func Load(path string, password []byte) (*keys.RawKey, error) {
	// #nosec G304 -- key file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ethrawerr.WithDetails(ethrawerr.ErrKeyNotFound, map[string]string{
				"path": path,
			})
		}
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ethrawerr.WithDetails(ethrawerr.ErrDecode, map[string]string{
			"reason": "key file is not valid JSON",
		})
	}
	if env.Version != envelopeVersion {
		return nil, ethrawerr.WithDetails(ethrawerr.ErrDecode, map[string]string{
			"reason": "unsupported key file version",
		})
	}

	ciphertext, err := base64.StdEncoding.DecodeString(env.Key)
	if err != nil {
		return nil, ethrawerr.WithDetails(ethrawerr.ErrDecode, map[string]string{
			"reason": "key field is not valid base64",
		})
	}

	priv, err := decrypt(ciphertext, password)
	if err != nil {
		return nil, ethrawerr.ErrDecryptionFailed
	}
	defer ethcrypto.ZeroBytes(priv)

	key, err := keys.NewRawKey(priv)
	if err != nil {
		return nil, err
	}

	// Cross-check the recorded address
	recorded, err := address.FromHex(env.Address)
	if err != nil {
		return nil, ethrawerr.WithDetails(ethrawerr.ErrDecode, map[string]string{
			"reason": "recorded address is malformed",
		})
	}
	derived, err := key.Address()
	if err != nil {
		return nil, err
	}
	if recorded != derived {
		return nil, ethrawerr.WithDetails(ethrawerr.ErrDecode, map[string]string{
			"reason": "recorded address does not match key",
		})
	}

	return key, nil
}

// encrypt seals plaintext with an age scrypt recipient.
func encrypt(plaintext, password []byte) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(string(password))
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	w, err := age.Encrypt(buf, recipient)
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(plaintext); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// decrypt opens ciphertext with an age scrypt identity.
func decrypt(ciphertext, password []byte) ([]byte, error) {
	identity, err := age.NewScryptIdentity(string(password))
	if err != nil {
		return nil, err
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, err
	}

	return io.ReadAll(r)
}
