package keys

import (
	"strconv"
	"strings"

	"github.com/tyler-smith/go-bip32"

	ethcrypto "github.com/nexeth/ethraw/internal/eth/crypto"
	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

// DefaultDerivationPath is the standard account path for the first
// external address.
const DefaultDerivationPath = "m/44'/60'/0'/0/0"

// DeriveKey derives a private key from a BIP39 seed along a BIP32 path
// such as "m/44'/60'/0'/0/0". The seed is not retained.
func DeriveKey(seed []byte, path string) (*RawKey, error) {
	indices, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, ethrawerr.Wrap(err, "creating master key")
	}

	for _, idx := range indices {
		key, err = key.NewChildKey(idx)
		if err != nil {
			return nil, ethrawerr.Wrap(err, "deriving child key")
		}
	}

	// BIP32 private keys can serialize to fewer than 32 bytes; left-pad
	priv := make([]byte, 32)
	copy(priv[32-len(key.Key):], key.Key)
	defer ethcrypto.ZeroBytes(priv)

	return NewRawKey(priv)
}

// DeriveFromMnemonic is the common mnemonic-to-key path: seed the
// mnemonic (with optional passphrase) and derive along path.
func DeriveFromMnemonic(mnemonic, passphrase, path string) (*RawKey, error) {
	seed, err := MnemonicToSeed(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	defer ethcrypto.ZeroBytes(seed)

	return DeriveKey(seed, path)
}

// ParsePath parses a BIP32 derivation path into child indices, with the
// hardened bit applied for ' or h suffixed segments.
func ParsePath(path string) ([]uint32, error) {
	segments := strings.Split(strings.TrimSpace(path), "/")
	if len(segments) == 0 || strings.ToLower(segments[0]) != "m" {
		return nil, pathError(path, "path must start with m/")
	}
	if len(segments) == 1 {
		return nil, pathError(path, "path has no segments")
	}

	indices := make([]uint32, 0, len(segments)-1)
	for _, seg := range segments[1:] {
		hardened := false
		if strings.HasSuffix(seg, "'") || strings.HasSuffix(seg, "h") || strings.HasSuffix(seg, "H") {
			hardened = true
			seg = seg[:len(seg)-1]
		}

		idx, err := strconv.ParseUint(seg, 10, 32)
		if err != nil || idx >= uint64(bip32.FirstHardenedChild) {
			return nil, pathError(path, "segment out of range: "+seg)
		}

		child := uint32(idx)
		if hardened {
			child += bip32.FirstHardenedChild
		}
		indices = append(indices, child)
	}

	return indices, nil
}

func pathError(path, reason string) error {
	return ethrawerr.WithDetails(ethrawerr.ErrParse, map[string]string{
		"reason": reason,
		"path":   path,
	})
}
