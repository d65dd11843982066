package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lakowalski/luxmedhunter/cmd/bootstrap"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		statusAddr string
		delay      int
	)
	var runErr error

	cmd := &cobra.Command{
		Use:           "hunter",
		Short:         "Hunt and reserve LuxMed appointments for every registered user",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if delay < 0 {
				return fmt.Errorf("--delay must not be negative, got %d", delay)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap.New(ctx, bootstrap.Options{ConfigPath: configPath, StatusAddr: statusAddr})
			if err != nil {
				runErr = err
				return err
			}
			defer app.Close()

			runErr = app.Hunt(ctx, time.Duration(delay)*time.Second)
			if runErr != nil && bootstrap.ExitCode(runErr) != bootstrap.ExitOK {
				app.Log.Errorf("Hunter stopped: %+v", runErr)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.yaml")
	cmd.Flags().IntVar(&delay, "delay", 0, "seconds to sleep between passes, 0 runs a single pass")
	cmd.Flags().StringVar(&statusAddr, "status-addr", "", "serve the status endpoint on this address")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		logrus.Errorf("hunter: %v", err)
		if runErr == nil {
			return bootstrap.ExitFailure
		}
	}
	return bootstrap.ExitCode(runErr)
}
