package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "lookup <city>",
		Short:   "Print the current weather for a city",
		Example: "  nimbus lookup New York",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := application.Dispatcher.Submit(cmd.Context(), strings.Join(args, " "))
			renderResult(cmd.OutOrStdout(), res)
			if !res.OK() {
				return res.Failure
			}
			return nil
		},
	}
}
