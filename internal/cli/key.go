package cli

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nexeth/ethraw/internal/config"
	ethcrypto "github.com/nexeth/ethraw/internal/eth/crypto"
	"github.com/nexeth/ethraw/internal/keys"
	"github.com/nexeth/ethraw/internal/keystore"
	"github.com/nexeth/ethraw/internal/output"
	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// keyGenerateWords is the mnemonic length for key generate.
	keyGenerateWords int
	// keyInspectKeys holds the key source flags for key inspect.
	keyInspectKeys keySourceFlags
	// keyInspectReveal prints the private key when set.
	keyInspectReveal bool
	// keyImportKeys holds the key source flags for key import.
	keyImportKeys keySourceFlags
	// keyDeriveMnemonic, keyDerivePassphrase, keyDerivePath drive key derive.
	keyDeriveMnemonic   string
	keyDerivePassphrase string
	keyDerivePath       string
)

// keyCmd is the parent command for key operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Generate, inspect, and store keys",
	Long:  `Generate BIP39 mnemonics, derive and inspect keys, and manage password-encrypted key files.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new BIP39 mnemonic",
	Long: `Generate a new BIP39 mnemonic phrase and show the address derived at
the default path. Write the phrase down; it is not stored anywhere.`,
	RunE: runKeyGenerate,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keyInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the address and public key for a key source",
	Long: `Resolve a key source (--key, --keystore, or --mnemonic) and print the
derived address and uncompressed public key. Use --reveal to also print
the private key.`,
	RunE: runKeyInspect,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keyDeriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive an address from a mnemonic and path",
	Long: `Derive the key at a BIP32 path from a BIP39 mnemonic (with optional
passphrase) and print its address.

Examples:
  ethraw key derive --mnemonic "abandon ... about" --path "m/44'/60'/0'/0/3"`,
	RunE: runKeyDerive,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keyImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Encrypt a key into the keystore",
	Long: `Encrypt a key from --key or --mnemonic under a password and store it
as <name>.json in the keystore directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runKeyImport,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List keys in the keystore",
	RunE:  runKeyList,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keyGenerateCmd)
	keyCmd.AddCommand(keyInspectCmd)
	keyCmd.AddCommand(keyDeriveCmd)
	keyCmd.AddCommand(keyImportCmd)
	keyCmd.AddCommand(keyListCmd)

	keyGenerateCmd.Flags().IntVar(&keyGenerateWords, "words", 12, "mnemonic length: 12 or 24")

	keyDeriveCmd.Flags().StringVar(&keyDeriveMnemonic, "mnemonic", "", "BIP39 mnemonic phrase, or '-' to prompt (required)")
	keyDeriveCmd.Flags().StringVar(&keyDerivePassphrase, "passphrase", "", "optional BIP39 passphrase")
	keyDeriveCmd.Flags().StringVar(&keyDerivePath, "path", "", "BIP32 derivation path (default from config)")
	_ = keyDeriveCmd.MarkFlagRequired("mnemonic")

	registerKeySourceFlags(keyInspectCmd, &keyInspectKeys)
	keyInspectCmd.Flags().BoolVar(&keyInspectReveal, "reveal", false, "also print the private key")

	registerKeySourceFlags(keyImportCmd, &keyImportKeys)
}

// KeyGenerateResponse is the result of key generate.
type KeyGenerateResponse struct {
	Mnemonic string `json:"mnemonic"`
	Path     string `json:"path"`
	Address  string `json:"address"`
}

// KeyInspectResponse is the result of key inspect.
type KeyInspectResponse struct {
	Address    string `json:"address"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key,omitempty"`
}

// KeyFileEntry describes one keystore file for key list.
type KeyFileEntry struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Path    string `json:"path"`
}

func runKeyGenerate(_ *cobra.Command, _ []string) error {
	mnemonic, err := keys.GenerateMnemonic(keyGenerateWords)
	if err != nil {
		return err
	}

	path := derivationPath("")
	key, err := keys.DeriveFromMnemonic(mnemonic, "", path)
	if err != nil {
		return err
	}
	defer key.Zero()

	addr, err := key.Address()
	if err != nil {
		return err
	}

	resp := KeyGenerateResponse{
		Mnemonic: mnemonic,
		Path:     path,
		Address:  addr.Checksum(),
	}

	if formatter.IsJSON() {
		return formatter.Print(resp)
	}
	w := formatter.Writer()
	out(w, "Mnemonic: %s\n", resp.Mnemonic)
	out(w, "Path:     %s\n", resp.Path)
	out(w, "Address:  %s\n", resp.Address)
	output.Warn("write the mnemonic down; it is not stored anywhere")
	return nil
}

func runKeyInspect(_ *cobra.Command, _ []string) error {
	source, err := resolveKeySource(&keyInspectKeys)
	if err != nil {
		return err
	}

	addr, err := source.Address()
	if err != nil {
		return err
	}

	pub, err := source.PublicKey()
	if err != nil {
		return err
	}

	resp := KeyInspectResponse{
		Address:   addr.Checksum(),
		PublicKey: hexPrefixed(pub),
	}

	if keyInspectReveal {
		priv, privErr := source.PrivateKey()
		if privErr != nil {
			return privErr
		}
		resp.PrivateKey = hex.EncodeToString(priv)
		ethcrypto.ZeroBytes(priv)
	}

	if formatter.IsJSON() {
		return formatter.Print(resp)
	}
	w := formatter.Writer()
	out(w, "Address:    %s\n", resp.Address)
	out(w, "Public key: %s\n", resp.PublicKey)
	if resp.PrivateKey != "" {
		out(w, "Private key: %s\n", resp.PrivateKey)
	}
	return nil
}

// KeyDeriveResponse is the result of key derive.
type KeyDeriveResponse struct {
	Path    string `json:"path"`
	Address string `json:"address"`
}

func runKeyDerive(_ *cobra.Command, _ []string) error {
	mnemonic := keyDeriveMnemonic
	if mnemonic == "-" {
		var err error
		mnemonic, err = promptMnemonic()
		if err != nil {
			return err
		}
	}
	if err := keys.ValidateMnemonic(mnemonic); err != nil {
		return err
	}

	path := derivationPath(keyDerivePath)
	key, err := keys.DeriveFromMnemonic(mnemonic, keyDerivePassphrase, path)
	if err != nil {
		return err
	}
	defer key.Zero()

	addr, err := key.Address()
	if err != nil {
		return err
	}

	resp := KeyDeriveResponse{Path: path, Address: addr.Checksum()}
	if formatter.IsJSON() {
		return formatter.Print(resp)
	}
	w := formatter.Writer()
	out(w, "Path:    %s\n", resp.Path)
	out(w, "Address: %s\n", resp.Address)
	return nil
}

func runKeyImport(_ *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" || strings.ContainsAny(name, "/\\") {
		return ethrawerr.WithSuggestion(
			ethrawerr.ErrInvalidInput,
			"key name must be a plain file name",
		)
	}

	if keyImportKeys.keystore != "" {
		return ethrawerr.WithSuggestion(
			ethrawerr.ErrInvalidInput,
			"import reads from --key or --mnemonic, not --keystore",
		)
	}

	source, err := resolveKeySource(&keyImportKeys)
	if err != nil {
		return err
	}

	password, err := promptNewPassword()
	if err != nil {
		return err
	}
	defer ethcrypto.ZeroBytes(password)

	dir := config.KeystoreDir(config.ExpandHome(cfg.Home))
	path, err := keystore.Save(dir, name, source, password)
	if err != nil {
		return err
	}

	addr, err := source.Address()
	if err != nil {
		return err
	}

	logger.Debug("stored key %s at %s", name, path)

	if formatter.IsJSON() {
		return formatter.Print(KeyFileEntry{Name: name, Address: addr.Checksum(), Path: path})
	}
	output.Successf("stored key %s (%s) at %s", name, addr.Checksum(), path)
	return nil
}

func runKeyList(_ *cobra.Command, _ []string) error {
	dir := config.KeystoreDir(config.ExpandHome(cfg.Home))

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			entries = nil
		} else {
			return err
		}
	}

	var files []KeyFileEntry
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		files = append(files, KeyFileEntry{
			Name:    strings.TrimSuffix(entry.Name(), ".json"),
			Address: keyFileAddress(path),
			Path:    path,
		})
	}

	if formatter.IsJSON() {
		if files == nil {
			files = []KeyFileEntry{}
		}
		return formatter.Print(files)
	}

	if len(files) == 0 {
		return formatter.Println("no keys in keystore")
	}

	table := output.NewTable("NAME", "ADDRESS")
	for _, f := range files {
		table.AddRow(f.Name, f.Address)
	}
	return table.Render(formatter.Writer())
}

// keyFileAddress reads the recorded address from a key file without
// decrypting it. Returns an empty string for unreadable files.
func keyFileAddress(path string) string {
	// #nosec G304 -- path comes from listing the keystore directory
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var env struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return ""
	}
	return env.Address
}
