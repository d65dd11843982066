package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lakowalski/luxmedhunter/cmd/bootstrap"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		logrus.Errorf("luxmed: %v", err)
		code := bootstrap.ExitCode(err)
		if code == bootstrap.ExitOK {
			code = bootstrap.ExitFailure
		}
		os.Exit(code)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "luxmed",
		Short:         "Set up users and searches for the LuxMed appointment hunter",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")

	// withApp builds the application for one command and closes it afterwards
	withApp := func(run func(ctx context.Context, app *bootstrap.App, userID string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New(cmd.Context(), bootstrap.Options{ConfigPath: configPath})
			if err != nil {
				return err
			}
			defer app.Close()
			return run(cmd.Context(), app, args[0])
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "create-credentials <userId>",
			Short: "Store the portal password of a user after checking it against the portal",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(ctx context.Context, app *bootstrap.App, userID string) error {
				return createCredentials(ctx, app, userID, os.Stdin, os.Stderr)
			}),
		},
		&cobra.Command{
			Use:   "delete-credentials <userId>",
			Short: "Remove the stored portal password of a user",
			Args:  cobra.ExactArgs(1),
			RunE:  withApp(deleteCredentials),
		},
		&cobra.Command{
			Use:   "get-last-search <userId>",
			Short: "Fetch the most recent portal search of a user and store it as search criteria",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(ctx context.Context, app *bootstrap.App, userID string) error {
				return getLastSearch(ctx, app, userID, os.Stdout)
			}),
		},
		&cobra.Command{
			Use:   "create-appointment-from-last-search <userId>",
			Short: "Refresh the stored search of a user and run one hunting cycle with it",
			Args:  cobra.ExactArgs(1),
			RunE:  withApp(createAppointmentFromLastSearch),
		},
		&cobra.Command{
			Use:   "list-bookings <userId>",
			Short: "Print the booking ledger of a user",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(ctx context.Context, app *bootstrap.App, userID string) error {
				return listBookings(ctx, app, userID, os.Stdout)
			}),
		},
	)

	return root
}
