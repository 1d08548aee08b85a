package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/nexeth/ethraw/internal/eth/address"
	"github.com/nexeth/ethraw/internal/output"
	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// icapAsset, icapInstitution, icapClient carry the indirect ICAP
	// fields for address icap encode --indirect.
	icapAsset       string
	icapInstitution string
	icapClient      string
)

// addressCmd is the parent command for address operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Checksum, validate, and convert addresses",
	Long:  `Apply EIP-55 checksum casing, validate addresses, and convert to and from the ICAP (IBAN-style) encoding.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var addressChecksumCmd = &cobra.Command{
	Use:   "checksum <address>",
	Short: "Print the checksummed form of an address",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddressChecksum,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var addressValidateCmd = &cobra.Command{
	Use:   "validate <address>",
	Short: "Validate an address and its checksum casing",
	Long: `Validate address syntax and EIP-55 checksum casing. Mixed-case input
must carry correct casing; single-case input carries no checksum and
passes with a warning.`,
	Args: cobra.ExactArgs(1),
	RunE: runAddressValidate,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var addressIcapCmd = &cobra.Command{
	Use:   "icap",
	Short: "Convert between hex addresses and ICAP",
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var addressIcapEncodeCmd = &cobra.Command{
	Use:   "encode [address]",
	Short: "Encode an address (or indirect identifier) as ICAP",
	Long: `Encode a hex address as a direct ICAP, or build an indirect ICAP from
--asset, --institution, and --client.

Examples:
  ethraw address icap encode 0x00c5496aee77c1ba1f0854206a26dda82a81d6d8
  ethraw address icap encode --asset ETH --institution XREG --client GAVOFYORK`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAddressIcapEncode,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var addressIcapDecodeCmd = &cobra.Command{
	Use:   "decode <icap>",
	Short: "Decode an ICAP string",
	Args:  cobra.ExactArgs(1),
	RunE:  runAddressIcapDecode,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var addressQRCmd = &cobra.Command{
	Use:   "qr <address>",
	Short: "Render an address as a QR code",
	Long:  `Render the checksummed address as a QR code in the terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAddressQR,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(addressCmd)
	addressCmd.AddCommand(addressChecksumCmd)
	addressCmd.AddCommand(addressValidateCmd)
	addressCmd.AddCommand(addressIcapCmd)
	addressCmd.AddCommand(addressQRCmd)
	addressIcapCmd.AddCommand(addressIcapEncodeCmd)
	addressIcapCmd.AddCommand(addressIcapDecodeCmd)

	addressIcapEncodeCmd.Flags().StringVar(&icapAsset, "asset", "", "indirect ICAP asset code (3 chars)")
	addressIcapEncodeCmd.Flags().StringVar(&icapInstitution, "institution", "", "indirect ICAP institution code (4 chars)")
	addressIcapEncodeCmd.Flags().StringVar(&icapClient, "client", "", "indirect ICAP client identifier (9 chars)")
}

// AddressResponse is the common result shape for address commands.
type AddressResponse struct {
	Address  string `json:"address"`
	Checksum string `json:"checksum"`
	ICAP     string `json:"icap,omitempty"`
}

// ValidateResponse is the result of address validate.
type ValidateResponse struct {
	Address     string `json:"address"`
	Valid       bool   `json:"valid"`
	HasChecksum bool   `json:"has_checksum"`
	Checksum    string `json:"checksum,omitempty"`
}

// IndirectICAPResponse is the result of decoding an indirect ICAP.
type IndirectICAPResponse struct {
	ICAP        string `json:"icap"`
	Asset       string `json:"asset"`
	Institution string `json:"institution"`
	Client      string `json:"client"`
}

func runAddressChecksum(_ *cobra.Command, args []string) error {
	addr, err := address.FromHex(strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}

	resp := AddressResponse{
		Address:  addr.Hex(),
		Checksum: addr.Checksum(),
	}
	if formatter.IsJSON() {
		return formatter.Print(resp)
	}
	return formatter.Println(resp.Checksum)
}

func runAddressValidate(_ *cobra.Command, args []string) error {
	input := strings.TrimSpace(args[0])

	if !address.IsHexAddress(input) {
		return ethrawerr.WithDetails(ethrawerr.ErrAddress, map[string]string{
			"address": input,
			"reason":  "expected 0x-prefixed 40-digit hex",
		})
	}

	trimmed := strings.TrimPrefix(input, "0x")
	mixedCase := trimmed != strings.ToLower(trimmed) && trimmed != strings.ToUpper(trimmed)

	if !address.ValidChecksum(input) {
		return ethrawerr.WithSuggestion(
			ethrawerr.WithDetails(ethrawerr.ErrChecksumMismatch, map[string]string{
				"address": input,
			}),
			"the mixed-case spelling does not match the checksum; verify the address",
		)
	}

	addr, err := address.FromHex(input)
	if err != nil {
		return err
	}

	resp := ValidateResponse{
		Address:     addr.Hex(),
		Valid:       true,
		HasChecksum: mixedCase,
		Checksum:    addr.Checksum(),
	}

	if formatter.IsJSON() {
		return formatter.Print(resp)
	}
	if !mixedCase {
		output.Warnf("single-case address carries no checksum; checksummed form: %s", resp.Checksum)
	}
	output.Successf("valid address: %s", resp.Checksum)
	return nil
}

func runAddressIcapEncode(_ *cobra.Command, args []string) error {
	indirect := icapAsset != "" || icapInstitution != "" || icapClient != ""

	if indirect {
		if len(args) != 0 {
			return ethrawerr.WithSuggestion(
				ethrawerr.ErrInvalidInput,
				"indirect encoding takes no address argument",
			)
		}
		icap, err := address.EncodeIndirectICAP(address.IndirectICAP{
			Asset:       strings.ToUpper(icapAsset),
			Institution: strings.ToUpper(icapInstitution),
			Client:      strings.ToUpper(icapClient),
		})
		if err != nil {
			return err
		}
		if formatter.IsJSON() {
			return formatter.Print(IndirectICAPResponse{
				ICAP:        icap,
				Asset:       strings.ToUpper(icapAsset),
				Institution: strings.ToUpper(icapInstitution),
				Client:      strings.ToUpper(icapClient),
			})
		}
		return formatter.Println(icap)
	}

	if len(args) != 1 {
		return ethrawerr.WithSuggestion(
			ethrawerr.ErrInvalidInput,
			"pass a hex address, or --asset/--institution/--client for indirect ICAP",
		)
	}

	addr, err := address.FromHex(strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}

	resp := AddressResponse{
		Address:  addr.Hex(),
		Checksum: addr.Checksum(),
		ICAP:     address.EncodeICAP(addr),
	}
	if formatter.IsJSON() {
		return formatter.Print(resp)
	}
	return formatter.Println(resp.ICAP)
}

func runAddressIcapDecode(_ *cobra.Command, args []string) error {
	input := strings.ToUpper(strings.TrimSpace(args[0]))

	// Indirect ICAPs are always 20 characters
	if len(input) == 20 {
		ind, err := address.DecodeIndirectICAP(input)
		if err != nil {
			return err
		}
		resp := IndirectICAPResponse{
			ICAP:        input,
			Asset:       ind.Asset,
			Institution: ind.Institution,
			Client:      ind.Client,
		}
		if formatter.IsJSON() {
			return formatter.Print(resp)
		}
		w := formatter.Writer()
		out(w, "Asset:       %s\n", resp.Asset)
		out(w, "Institution: %s\n", resp.Institution)
		out(w, "Client:      %s\n", resp.Client)
		return nil
	}

	addr, err := address.DecodeICAP(input)
	if err != nil {
		return err
	}

	resp := AddressResponse{
		Address:  addr.Hex(),
		Checksum: addr.Checksum(),
		ICAP:     input,
	}
	if formatter.IsJSON() {
		return formatter.Print(resp)
	}
	return formatter.Println(resp.Checksum)
}

func runAddressQR(_ *cobra.Command, args []string) error {
	addr, err := address.FromHex(strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}

	checksummed := addr.Checksum()
	if err := formatter.Println(checksummed); err != nil {
		return err
	}
	return output.RenderQR(formatter.Writer(), checksummed, output.DefaultQRConfig())
}
