package cli

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nexeth/ethraw/internal/eth/address"
	ethcrypto "github.com/nexeth/ethraw/internal/eth/crypto"
	ethtypes "github.com/nexeth/ethraw/internal/eth/types"
	"github.com/nexeth/ethraw/internal/eth/units"
	"github.com/nexeth/ethraw/internal/output"
	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// txNonce is the account nonce.
	txNonce uint64
	// txGasPrice is the gas price in wei (decimal or 0x hex).
	txGasPrice string
	// txGasLimit is the gas limit.
	txGasLimit uint64
	// txTo is the recipient address; empty means contract creation.
	txTo string
	// txValue is the amount to transfer.
	txValue string
	// txValueUnit is the denomination of --value.
	txValueUnit string
	// txData is the call data as hex.
	txData string

	// txSignKeys holds the key source flags for tx sign.
	txSignKeys keySourceFlags

	// txSigV, txSigR, txSigS carry an externally produced signature for
	// tx assemble.
	txSigV string
	txSigR string
	txSigS string
	// txSignature is the compact 65-byte alternative to --sig-*.
	txSignature string
)

// txCmd is the parent command for transaction operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Build, sign, and decode raw transactions",
	Long:  `Build, sign, decode, and assemble raw legacy Ethereum transactions offline.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build an unsigned transaction",
	Long: `Build an unsigned legacy transaction and print its RLP encoding and
signing hash.

Examples:
  ethraw tx build --nonce 9 --gas-price 20000000000 --gas-limit 21000 \
    --to 0x3535353535353535353535353535353535353535 --value 1 --value-unit ether`,
	RunE: runTxBuild,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txSignCmd = &cobra.Command{
	Use:   "sign",
	Short: "Build and sign a transaction",
	Long: `Build a legacy transaction and sign it with a private key, an encrypted
key file, or a mnemonic-derived key.

Examples:
  ethraw tx sign --nonce 9 --gas-price 20000000000 --gas-limit 21000 \
    --to 0x3535353535353535353535353535353535353535 --value 1 --value-unit ether \
    --key 4646464646464646464646464646464646464646464646464646464646464646

  ethraw tx sign --nonce 0 --gas-price 1000000000 --gas-limit 21000 \
    --to 0x3535353535353535353535353535353535353535 --value 0 --keystore main`,
	RunE: runTxSign,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txDecodeCmd = &cobra.Command{
	Use:   "decode <raw-hex>",
	Short: "Decode a raw transaction",
	Long: `Decode a raw RLP-encoded transaction and print its fields. For signed
transactions the sender address is recovered from the signature.`,
	Args: cobra.ExactArgs(1),
	RunE: runTxDecode,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txAssembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Attach an external signature to a transaction",
	Long: `Combine transaction fields with a signature produced elsewhere (for
example by an air-gapped signer) into a broadcastable raw transaction.

Pass the signature either as --sig-v/--sig-r/--sig-s or as a 65-byte
compact blob via --signature.`,
	RunE: runTxAssemble,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.AddCommand(txBuildCmd)
	txCmd.AddCommand(txSignCmd)
	txCmd.AddCommand(txDecodeCmd)
	txCmd.AddCommand(txAssembleCmd)

	for _, cmd := range []*cobra.Command{txBuildCmd, txSignCmd, txAssembleCmd} {
		cmd.Flags().Uint64Var(&txNonce, "nonce", 0, "account nonce (required)")
		cmd.Flags().StringVar(&txGasPrice, "gas-price", "", "gas price in wei (required)")
		cmd.Flags().Uint64Var(&txGasLimit, "gas-limit", 21000, "gas limit")
		cmd.Flags().StringVar(&txTo, "to", "", "recipient address; omit for contract creation")
		cmd.Flags().StringVar(&txValue, "value", "0", "amount to transfer")
		cmd.Flags().StringVar(&txValueUnit, "value-unit", "wei", "denomination of --value (wei, gwei, ether, ...)")
		cmd.Flags().StringVar(&txData, "data", "", "call data as hex")

		_ = cmd.MarkFlagRequired("gas-price")
	}

	registerKeySourceFlags(txSignCmd, &txSignKeys)

	txAssembleCmd.Flags().StringVar(&txSigV, "sig-v", "", "recovery value v (27 or 28, or 0/1)")
	txAssembleCmd.Flags().StringVar(&txSigR, "sig-r", "", "signature r as hex")
	txAssembleCmd.Flags().StringVar(&txSigS, "sig-s", "", "signature s as hex")
	txAssembleCmd.Flags().StringVar(&txSignature, "signature", "", "65-byte compact signature as hex")
}

// TxFieldsResponse describes decoded or built transaction fields.
type TxFieldsResponse struct {
	Nonce    uint64 `json:"nonce"`
	GasPrice string `json:"gas_price"`
	GasLimit uint64 `json:"gas_limit"`
	To       string `json:"to,omitempty"`
	Value    string `json:"value"`
	Data     string `json:"data,omitempty"`
}

// TxBuildResponse is the result of tx build.
type TxBuildResponse struct {
	Fields      TxFieldsResponse `json:"fields"`
	Unsigned    string           `json:"unsigned"`
	SigningHash string           `json:"signing_hash"`
}

// TxSignResponse is the result of tx sign and tx assemble.
type TxSignResponse struct {
	Fields TxFieldsResponse `json:"fields"`
	Raw    string           `json:"raw"`
	Hash   string           `json:"hash"`
	From   string           `json:"from"`
	V      string           `json:"v"`
	R      string           `json:"r"`
	S      string           `json:"s"`
}

// TxDecodeResponse is the result of tx decode.
type TxDecodeResponse struct {
	Fields TxFieldsResponse `json:"fields"`
	State  string           `json:"state"`
	Hash   string           `json:"hash,omitempty"`
	From   string           `json:"from,omitempty"`
	V      string           `json:"v,omitempty"`
	R      string           `json:"r,omitempty"`
	S      string           `json:"s,omitempty"`
}

// buildTransaction constructs a transaction from the shared tx flags.
func buildTransaction() (*ethtypes.Transaction, error) {
	gasPrice, err := parseBigInt(txGasPrice, "gas-price")
	if err != nil {
		return nil, err
	}

	value, err := units.ToWei(txValue, txValueUnit)
	if err != nil {
		return nil, err
	}

	var to *address.Address
	if txTo != "" {
		addr, addrErr := parseAddressArg(txTo)
		if addrErr != nil {
			return nil, addrErr
		}
		to = &addr
	}

	data, err := parseHexBytes(txData, "data")
	if err != nil {
		return nil, err
	}

	return ethtypes.NewTransaction(txNonce, to, value, txGasLimit, gasPrice, data), nil
}

// parseAddressArg parses an address argument, rejecting mixed-case
// input with a bad checksum.
func parseAddressArg(s string) (address.Address, error) {
	s = strings.TrimSpace(s)
	if !address.IsHexAddress(s) {
		return address.Address{}, ethrawerr.WithDetails(ethrawerr.ErrAddress, map[string]string{
			"address": s,
			"reason":  "expected 0x-prefixed 40-digit hex",
		})
	}
	if !address.ValidChecksum(s) {
		return address.Address{}, ethrawerr.WithSuggestion(
			ethrawerr.WithDetails(ethrawerr.ErrChecksumMismatch, map[string]string{
				"address": s,
			}),
			"verify the address or use all-lowercase hex to skip the checksum",
		)
	}
	return address.FromHex(s)
}

func fieldsResponse(tx *ethtypes.Transaction) TxFieldsResponse {
	resp := TxFieldsResponse{
		Nonce:    tx.Nonce,
		GasPrice: tx.GasPrice.String(),
		GasLimit: tx.GasLimit,
		Value:    tx.Value.String(),
	}
	if tx.To != nil {
		resp.To = tx.To.Checksum()
	}
	if len(tx.Data) > 0 {
		resp.Data = hexPrefixed(tx.Data)
	}
	return resp
}

func runTxBuild(_ *cobra.Command, _ []string) error {
	tx, err := buildTransaction()
	if err != nil {
		return err
	}

	hash := tx.SigningHash()
	resp := TxBuildResponse{
		Fields:      fieldsResponse(tx),
		Unsigned:    hexPrefixed(tx.SerializeUnsigned()),
		SigningHash: hexPrefixed(hash[:]),
	}

	logger.Debug("built unsigned transaction, nonce=%d", tx.Nonce)

	if formatter.IsJSON() {
		return formatter.Print(resp)
	}
	w := formatter.Writer()
	printFields(resp.Fields)
	out(w, "Unsigned:     %s\n", resp.Unsigned)
	out(w, "Signing hash: %s\n", resp.SigningHash)
	return nil
}

func runTxSign(_ *cobra.Command, _ []string) error {
	tx, err := buildTransaction()
	if err != nil {
		return err
	}

	source, err := resolveKeySource(&txSignKeys)
	if err != nil {
		return err
	}

	priv, err := source.PrivateKey()
	if err != nil {
		return err
	}
	if err := tx.Sign(priv); err != nil {
		// Sign zeroes priv on all paths
		return err
	}

	return outputSignedTx(tx)
}

func runTxDecode(_ *cobra.Command, args []string) error {
	raw, err := parseHexBytes(args[0], "raw transaction")
	if err != nil {
		return err
	}

	tx, err := ethtypes.DecodeTransaction(raw)
	if err != nil {
		return err
	}

	resp := TxDecodeResponse{
		Fields: fieldsResponse(tx),
		State:  tx.State().String(),
	}

	if tx.IsSigned() {
		sig, sigErr := tx.Signature()
		if sigErr != nil {
			return sigErr
		}

		from, fromErr := tx.SenderAddress()
		if fromErr != nil {
			return fromErr
		}

		hash, hashErr := tx.HashHex()
		if hashErr != nil {
			return hashErr
		}

		resp.Hash = hash
		resp.From = from.Checksum()
		resp.V = fmt.Sprintf("%d", sig.V)
		resp.R = "0x" + sig.R.Text(16)
		resp.S = "0x" + sig.S.Text(16)

		if sig.IsMalleable() {
			output.Warnf("signature uses a high s value and has a malleable sibling")
		}
	}

	if formatter.IsJSON() {
		return formatter.Print(resp)
	}
	w := formatter.Writer()
	out(w, "State:        %s\n", resp.State)
	printFields(resp.Fields)
	if tx.IsSigned() {
		out(w, "From:         %s\n", resp.From)
		out(w, "Hash:         %s\n", resp.Hash)
		out(w, "Signature:    v=%s r=%s s=%s\n", resp.V, resp.R, resp.S)
	}
	return nil
}

func runTxAssemble(_ *cobra.Command, _ []string) error {
	v, r, s, err := parseAssembleSignature()
	if err != nil {
		return err
	}

	tx, err := buildTransaction()
	if err != nil {
		return err
	}

	tx = ethtypes.AssembleTransaction(tx.Nonce, tx.To, tx.Value, tx.GasLimit, tx.GasPrice, tx.Data, v, r, s)

	// Recovery doubles as signature validation for assembled input
	if _, err := tx.SenderAddress(); err != nil {
		return err
	}

	return outputSignedTx(tx)
}

// parseAssembleSignature reads the signature flags for tx assemble.
func parseAssembleSignature() (v, r, s *big.Int, err error) {
	if txSignature != "" {
		if txSigV != "" || txSigR != "" || txSigS != "" {
			return nil, nil, nil, ethrawerr.WithSuggestion(
				ethrawerr.ErrInvalidInput,
				"use either --signature or --sig-v/--sig-r/--sig-s, not both",
			)
		}
		blob, blobErr := parseHexBytes(txSignature, "signature")
		if blobErr != nil {
			return nil, nil, nil, blobErr
		}
		sig, sigErr := ethcrypto.SignatureFromCompact(blob)
		if sigErr != nil {
			return nil, nil, nil, sigErr
		}
		return big.NewInt(int64(sig.V)), sig.R, sig.S, nil
	}

	if txSigV == "" || txSigR == "" || txSigS == "" {
		return nil, nil, nil, ethrawerr.WithSuggestion(
			ethrawerr.ErrInvalidInput,
			"provide --sig-v, --sig-r, and --sig-s (or a compact --signature)",
		)
	}

	if v, err = parseBigInt(txSigV, "sig-v"); err != nil {
		return nil, nil, nil, err
	}
	if r, err = parseBigInt(txSigR, "sig-r"); err != nil {
		return nil, nil, nil, err
	}
	if s, err = parseBigInt(txSigS, "sig-s"); err != nil {
		return nil, nil, nil, err
	}
	return v, r, s, nil
}

// outputSignedTx prints the raw form, hash, sender, and signature of a
// signed transaction.
func outputSignedTx(tx *ethtypes.Transaction) error {
	raw, err := tx.Serialize()
	if err != nil {
		return err
	}

	hash, err := tx.HashHex()
	if err != nil {
		return err
	}

	from, err := tx.SenderAddress()
	if err != nil {
		return err
	}

	sig, err := tx.Signature()
	if err != nil {
		return err
	}

	resp := TxSignResponse{
		Fields: fieldsResponse(tx),
		Raw:    hexPrefixed(raw),
		Hash:   hash,
		From:   from.Checksum(),
		V:      fmt.Sprintf("%d", sig.V),
		R:      "0x" + sig.R.Text(16),
		S:      "0x" + sig.S.Text(16),
	}

	logger.Debug("serialized signed transaction, hash=%s", resp.Hash)

	if formatter.IsJSON() {
		return formatter.Print(resp)
	}
	w := formatter.Writer()
	printFields(resp.Fields)
	out(w, "From:         %s\n", resp.From)
	out(w, "Hash:         %s\n", resp.Hash)
	out(w, "Signature:    v=%s r=%s s=%s\n", resp.V, resp.R, resp.S)
	out(w, "Raw:          %s\n", resp.Raw)
	return nil
}

// printFields writes transaction fields in text form.
func printFields(f TxFieldsResponse) {
	w := formatter.Writer()
	out(w, "Nonce:        %d\n", f.Nonce)
	out(w, "Gas price:    %s wei\n", f.GasPrice)
	out(w, "Gas limit:    %d\n", f.GasLimit)
	if f.To != "" {
		out(w, "To:           %s\n", f.To)
	} else {
		out(w, "To:           (contract creation)\n")
	}
	out(w, "Value:        %s wei\n", f.Value)
	if f.Data != "" {
		out(w, "Data:         %s\n", f.Data)
	}
}
