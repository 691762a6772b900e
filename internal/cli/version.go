package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/apimodel/internal/model"
)

// VersionInfo is the payload of the version command.
type VersionInfo struct {
	Validator string `json:"validator"`
	Format    string `json:"format"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print the validator and model format versions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{Validator: model.ValidatorVersion, Format: model.FormatVersion}
			if rootOpts.Format == "json" {
				formatter := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
				return formatter.Success(info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "apimodel %s (model format %s)\n", info.Validator, info.Format)
			return nil
		},
	}
}
