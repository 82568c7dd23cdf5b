// Package cli wires the tagtidy commands.
package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lverne/tagtidy/internal/config"
	"github.com/lverne/tagtidy/internal/errmsg"
)

// New builds the root command.
func New() *cobra.Command {
	root := &cobra.Command{
		Use:           "tagtidy",
		Short:         "Normalize music metadata and rename episode files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newNormalizeCmd())
	root.AddCommand(newRenameCmd())
	return root
}

// loadConfig reads the configuration. A broken config file is reported
// and treated as empty so commands with explicit arguments still work.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logrus.Warn(errmsg.Format(errmsg.OpLoadConfig, err))
		return &config.Config{}
	}
	return cfg
}
