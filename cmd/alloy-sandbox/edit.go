package main

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	alloy "github.com/adobe/reactor-extension-alloy-sub003"
	"github.com/adobe/reactor-extension-alloy-sub003/internal/tui"
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newEditCmd(a *app) *cobra.Command {
	var (
		schema            schemaFlags
		settingsPath, out string
		updateMode        bool
	)
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit component settings in a terminal object editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
				return errors.New("edit needs an interactive terminal; use validate for scripts")
			}
			tree, err := loadTree(cmd.Context(), a, &schema, settingsPath, updateMode)
			if err != nil {
				return err
			}
			if out == "" {
				out = settingsPath
			}
			save := func(e alloy.Extraction) error {
				if err := writeSettings(out, e); err != nil {
					return err
				}
				a.log.Debug("settings saved", zap.String("path", out))
				return nil
			}
			_, err = tea.NewProgram(tui.New(tree, save), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	schema.register(cmd)
	cmd.Flags().StringVar(&settingsPath, "settings", "", "Settings file with data and transforms")
	cmd.Flags().StringVar(&out, "out", "", "Where to save (default: the settings file)")
	cmd.Flags().BoolVar(&updateMode, "update-mode", false, "Enable clear transforms, as in the update variable action")
	_ = cmd.MarkFlagRequired("settings")
	return cmd
}
