package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adobe/reactor-extension-alloy-sub003/internal/sandbox"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Create the .sandbox container and config for an extension",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			created, err := sandbox.Init(dir)
			if err != nil {
				return err
			}
			if len(created) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "sandbox files already exist")
				return nil
			}
			for _, p := range created {
				fmt.Fprintln(cmd.OutOrStdout(), "created", p)
			}
			return nil
		},
	}
}
