package commands

import (
	"github.com/spf13/cobra"

	edgeseal "github.com/edgeseal/transit-go"
)

var (
	cfg     edgeseal.Config
	verbose bool
)

func Execute() error {
	root := &cobra.Command{
		Use:   "edgeseald",
		Short: "Session-encrypted edge transport daemon",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = edgeseal.LoadConfig()
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(serveCmd())
	return root.Execute()
}
