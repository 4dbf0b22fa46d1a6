// Command alloy-sandbox runs the local extension sandbox and edits
// component settings against their schemas from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adobe/reactor-extension-alloy-sub003/i18n"
	"github.com/adobe/reactor-extension-alloy-sub003/internal/config"
	"github.com/adobe/reactor-extension-alloy-sub003/internal/logging"
)

// app carries the state shared by the subcommands.
type app struct {
	verbose    bool
	configPath string
	lang       string

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "alloy-sandbox",
		Short:         "Local sandbox and settings editor for the alloy extension",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			opts := logging.Options{Level: cfg.LogLevel, Development: cfg.Development}
			if a.verbose {
				opts.Level = "debug"
			}
			a.log, err = logging.New(opts)
			if err != nil {
				return err
			}
			if a.lang != "" {
				i18n.SetLanguage(a.lang)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "Sandbox config file")
	root.PersistentFlags().StringVar(&a.lang, "lang", "", "Language of validation messages (en, ja)")

	root.AddCommand(newInitCmd(a))
	root.AddCommand(newRunCmd(a))
	root.AddCommand(newEditCmd(a))
	root.AddCommand(newValidateCmd(a))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
