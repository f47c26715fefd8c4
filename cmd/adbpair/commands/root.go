package commands

import (
	"github.com/pion/logging"
	"github.com/spf13/cobra"

	"github.com/backkem/adbpair/pkg/trace"
)

var loggerFactory logging.LoggerFactory

// Execute runs the adbpair CLI.
func Execute() error {
	root := &cobra.Command{
		Use:           "adbpair",
		Short:         "Pair with a device over the adb wireless-pairing protocol",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			loggerFactory = trace.NewLoggerFactory()
		},
	}

	root.AddCommand(serverCmd(), clientCmd())
	return root.Execute()
}
