package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"cloudsizer/internal/validate"
)

func listAWSRegionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-aws-regions",
		Short: "Print supported AWS region codes",
		Run: func(cmd *cobra.Command, args []string) {
			for _, r := range validate.AWSRegions() {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
		},
	}
}

func listAzureRegionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-azure-regions",
		Short: "Print supported Azure region slugs",
		Run: func(cmd *cobra.Command, args []string) {
			for _, r := range validate.AzureRegions() {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
		},
	}
}
