package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nexeth/ethraw/internal/eth/units"
	"github.com/nexeth/ethraw/internal/output"
)

// unitsCmd is the parent command for denomination conversion.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "Convert between ether denominations",
	Long:  `Convert amounts between wei, gwei, ether, and the other named denominations with exact decimal arithmetic.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var unitsConvertCmd = &cobra.Command{
	Use:   "convert <amount> <from> <to>",
	Short: "Convert an amount between denominations",
	Long: `Convert an amount between denominations. Conversion is exact: no
floating point is involved at any precision.

Examples:
  ethraw units convert 1 ether wei
  ethraw units convert 0.05 ether gwei
  ethraw units convert 1000000000000000000 wei ether`,
	Args: cobra.ExactArgs(3),
	RunE: runUnitsConvert,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var unitsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known denominations",
	RunE:  runUnitsList,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(unitsCmd)
	unitsCmd.AddCommand(unitsConvertCmd)
	unitsCmd.AddCommand(unitsListCmd)
}

// ConvertResponse is the result of units convert.
type ConvertResponse struct {
	Amount string `json:"amount"`
	From   string `json:"from"`
	To     string `json:"to"`
	Result string `json:"result"`
}

func runUnitsConvert(_ *cobra.Command, args []string) error {
	amount, from, to := args[0], args[1], args[2]

	result, err := units.Convert(amount, from, to)
	if err != nil {
		return err
	}

	resp := ConvertResponse{
		Amount: amount,
		From:   from,
		To:     to,
		Result: result,
	}
	if formatter.IsJSON() {
		return formatter.Print(resp)
	}
	return formatter.Printf("%s %s = %s %s\n", amount, from, result, to)
}

func runUnitsList(_ *cobra.Command, _ []string) error {
	names := units.Names()

	if formatter.IsJSON() {
		type unitEntry struct {
			Name     string `json:"name"`
			Exponent int    `json:"exponent"`
		}
		entries := make([]unitEntry, 0, len(names))
		for _, name := range names {
			exp, err := units.Exponent(name)
			if err != nil {
				return err
			}
			entries = append(entries, unitEntry{Name: name, Exponent: exp})
		}
		return formatter.Print(entries)
	}

	table := output.NewTable("UNIT", "WEI EXPONENT")
	for _, name := range names {
		exp, err := units.Exponent(name)
		if err != nil {
			return err
		}
		table.AddRow(name, strconv.Itoa(exp))
	}
	return table.Render(formatter.Writer())
}
