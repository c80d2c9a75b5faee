// Package cmd defines the CLI commands for the researcher executable.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "researcher",
		Short: "Researches Egyptian heritage sites into a mobile-ready dataset.",
		Long: `researcher crawls the national monuments catalog, enriches every
site with encyclopedia facts, governorate resolution, and Arabic
vocabulary, and exports the result as a single JSON document.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default uses built-in defaults)")
	cmd.PersistentFlags().Bool("verbose", false, "enable development logging")
	_ = viper.BindPFlag("logging.development", cmd.PersistentFlags().Lookup("verbose"))

	cmd.AddCommand(newResearchCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() error {
	return newRootCmd().Execute()
}
