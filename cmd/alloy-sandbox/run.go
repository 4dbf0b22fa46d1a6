package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adobe/reactor-extension-alloy-sub003/internal/sandbox"
)

const shutdownTimeout = 5 * time.Second

func newRunCmd(a *app) *cobra.Command {
	var (
		host  string
		port  int
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Serve the library and view sandboxes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				a.cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts := sandbox.Options{
				ExtensionDirs: a.cfg.ExtensionDirs,
				ContainerPath: a.cfg.ContainerPath,
				EnginePath:    a.cfg.EnginePath,
			}
			if _, err := sandbox.LoadDescriptors(opts.ExtensionDirs); err != nil {
				return err
			}

			if watch {
				w, err := sandbox.NewWatcher(sandbox.Sources{ExtensionDirs: opts.ExtensionDirs, ContainerPath: opts.ContainerPath}, a.log)
				if err != nil {
					return err
				}
				go func() { _ = w.Run(ctx, nil) }()
			}

			srv := sandbox.NewServer(opts, a.log)
			errc := make(chan error, 1)
			go func() { errc <- srv.Start(a.cfg.Addr()) }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			a.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.log.Warn("shutdown", zap.Error(err))
				return err
			}
			return <-errc
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Log changes to extension files")
	return cmd
}
