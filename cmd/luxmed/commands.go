package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/lakowalski/luxmedhunter/cmd/bootstrap"
	"github.com/lakowalski/luxmedhunter/internal/converter"
	"github.com/lakowalski/luxmedhunter/internal/domain/entity"

	"golang.org/x/term"
)

var (
	ErrCredentialsExist = errors.New("credentials already stored, run delete-credentials first")
	ErrEmptyPassword    = errors.New("password must not be empty")
)

func createCredentials(ctx context.Context, app *bootstrap.App, userID string, in *os.File, prompt io.Writer) error {
	users, err := app.Credentials.List()
	if err != nil {
		return err
	}
	if slices.Contains(users, userID) {
		return fmt.Errorf("%s: %w", userID, ErrCredentialsExist)
	}

	fmt.Fprintf(prompt, "LuxMed password for %s: ", userID)
	password, err := readPassword(in)
	fmt.Fprintln(prompt)
	if err != nil {
		return err
	}

	credentials := entity.Credentials{UserID: userID, Password: password}
	if _, err := app.Portal.Authenticate(ctx, credentials); err != nil {
		return fmt.Errorf("credentials not stored: %w", err)
	}
	if err := app.Credentials.Put(credentials); err != nil {
		return err
	}

	app.Log.Infof("Credentials of %s verified and stored", userID)
	return nil
}

// readPassword reads without echo from a terminal, or one line from a pipe
func readPassword(in *os.File) (string, error) {
	var raw string
	if term.IsTerminal(int(in.Fd())) {
		b, err := term.ReadPassword(int(in.Fd()))
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		raw = string(b)
	} else {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		raw = line
	}

	password := strings.TrimRight(raw, "\r\n")
	if password == "" {
		return "", ErrEmptyPassword
	}
	return password, nil
}

func deleteCredentials(_ context.Context, app *bootstrap.App, userID string) error {
	deleted, err := app.Credentials.Delete(userID)
	if err != nil {
		return err
	}
	if !deleted {
		app.Log.Warnf("No credentials stored for %s", userID)
		return nil
	}
	app.Log.Infof("Credentials of %s deleted", userID)
	return nil
}

// refreshSearch replaces the stored criteria with the last portal search
func refreshSearch(ctx context.Context, app *bootstrap.App, userID string) (*entity.SearchCriteria, error) {
	criteria, err := app.Hunting.FetchLastSearch(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := app.Audit.LogCriteria(ctx, criteria); err != nil {
		app.Log.Warnf("Audit trail not updated: %+v", err)
	}
	return criteria, nil
}

func getLastSearch(ctx context.Context, app *bootstrap.App, userID string, out io.Writer) error {
	criteria, err := refreshSearch(ctx, app, userID)
	if err != nil {
		return err
	}
	return printJSON(out, converter.SearchCriteriaToResponse(criteria))
}

// createAppointmentFromLastSearch refreshes the stored criteria from the
// portal, then runs one cycle. Without a usable portal search it hunts with
// the criteria already stored, if any.
func createAppointmentFromLastSearch(ctx context.Context, app *bootstrap.App, userID string) error {
	if _, err := refreshSearch(ctx, app, userID); err != nil {
		if !errors.Is(err, entity.ErrNoSearchCriteria) {
			return err
		}
		if _, serr := app.Hunting.GetSearchCriteria(ctx, userID); serr != nil {
			return err
		}
		app.Log.Warnf("No recent portal search for %s, hunting with the stored criteria: %+v", userID, err)
	}
	return app.Scheduler.RunUser(ctx, userID)
}

func listBookings(ctx context.Context, app *bootstrap.App, userID string, out io.Writer) error {
	ledger, err := app.Hunting.ListBookings(ctx, userID)
	if err != nil {
		return err
	}
	return printJSON(out, converter.LedgerToResponse(userID, ledger))
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
