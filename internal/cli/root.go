// Package cli implements invctl, the operator command line for the
// inventory API.
package cli

import (
	"petcare-inventory-api/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

type rootOptions struct {
	sessionPath string
	verbose     bool
}

func (o *rootOptions) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	return logger.New("development")
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "invctl",
		Short:         "Manage the pet-care inventory from the terminal",
		Long:          "invctl talks to the pet-care inventory API: sign in with a token, check admin access, browse and search stock, upload item photos.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.sessionPath, "session", defaultSessionPath(), "Path of the session file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log requests to stderr")

	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newGuardCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newUploadCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
