package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var onedriveResolveCmd = &cobra.Command{
	Use:   "onedrive:resolve <url>",
	Short: "Resolve a OneDrive share link to its direct download URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := MustContainer(cmd)
		defer c.Logger.Sync()
		fmt.Fprintln(cmd.OutOrStdout(), c.Resolver.Resolve(cmd.Context(), args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(onedriveResolveCmd)
}
