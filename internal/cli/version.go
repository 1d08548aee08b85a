package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

// Version and Commit are set at build time via -ldflags.
//
//nolint:gochecknoglobals // Build-time variables must be package-level
var (
	Version = "dev"
	Commit  = "none"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE:  runVersion,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
}

// VersionResponse is the result of the version command.
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func runVersion(_ *cobra.Command, _ []string) error {
	resp := VersionResponse{
		Version:   Version,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if formatter.IsJSON() {
		return formatter.Print(resp)
	}
	return formatter.Printf("ethraw %s (%s) %s %s\n", resp.Version, resp.Commit, resp.GoVersion, resp.Platform)
}
