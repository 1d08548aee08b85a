package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nexeth/ethraw/internal/config"
	ethcrypto "github.com/nexeth/ethraw/internal/eth/crypto"
	"github.com/nexeth/ethraw/internal/keys"
	"github.com/nexeth/ethraw/internal/keystore"
	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

// keySourceFlags holds the flag values shared by commands that need a
// private key.
type keySourceFlags struct {
	key      string
	keystore string
	mnemonic string
	path     string
}

// registerKeySourceFlags adds the key source flags to cmd.
func registerKeySourceFlags(cmd *cobra.Command, f *keySourceFlags) {
	cmd.Flags().StringVar(&f.key, "key", "", "private key as hex")
	cmd.Flags().StringVar(&f.keystore, "keystore", "", "name or path of an encrypted key file")
	cmd.Flags().StringVar(&f.mnemonic, "mnemonic", "", "BIP39 mnemonic phrase, or '-' to prompt")
	cmd.Flags().StringVar(&f.path, "path", "", "BIP32 derivation path (default from config)")
}

// resolveKeySource turns the key source flags into a KeySource.
// Exactly one of --key, --keystore, or --mnemonic must be given.
func resolveKeySource(f *keySourceFlags) (keys.KeySource, error) {
	given := 0
	for _, v := range []string{f.key, f.keystore, f.mnemonic} {
		if v != "" {
			given++
		}
	}
	if given != 1 {
		return nil, ethrawerr.WithSuggestion(
			ethrawerr.ErrInvalidInput,
			"provide exactly one of --key, --keystore, or --mnemonic",
		)
	}

	switch {
	case f.key != "":
		return keys.RawKeyFromHex(f.key)

	case f.keystore != "":
		path := keystorePath(f.keystore)
		password, err := promptPassword("Password: ")
		if err != nil {
			return nil, err
		}
		defer ethcrypto.ZeroBytes(password)
		return keystore.Load(path, password)

	default:
		mnemonic := f.mnemonic
		if mnemonic == "-" {
			var err error
			mnemonic, err = promptMnemonic()
			if err != nil {
				return nil, err
			}
		}
		if err := keys.ValidateMnemonic(mnemonic); err != nil {
			return nil, err
		}
		return keys.DeriveFromMnemonic(mnemonic, "", derivationPath(f.path))
	}
}

// derivationPath resolves the effective derivation path: the flag, the
// config, then the built-in default.
func derivationPath(flag string) string {
	if flag != "" {
		return flag
	}
	if cfg != nil && cfg.GetDerivationPath() != "" {
		return cfg.GetDerivationPath()
	}
	return keys.DefaultDerivationPath
}

// keystorePath resolves a keystore flag value to a file path. A bare
// name refers to a key file in the configured keystore directory.
func keystorePath(nameOrPath string) string {
	if strings.ContainsRune(nameOrPath, os.PathSeparator) || strings.HasSuffix(nameOrPath, ".json") {
		return config.ExpandHome(nameOrPath)
	}
	return filepath.Join(config.KeystoreDir(config.ExpandHome(cfg.Home)), nameOrPath+".json")
}
