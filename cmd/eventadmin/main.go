// Command eventadmin performs operator tasks against the event database:
// applying migrations and granting or withdrawing the manager role.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/cimillas/eventhub/internal/app"
	"github.com/cimillas/eventhub/internal/auth"
	"github.com/cimillas/eventhub/internal/clock"
	"github.com/cimillas/eventhub/internal/config"
	"github.com/cimillas/eventhub/internal/logging"
	"github.com/cimillas/eventhub/internal/storage/postgres"
	"github.com/cimillas/eventhub/migrations"
)

const usage = `eventadmin - operator tasks for the event service.

Usage:
  eventadmin migrate
  eventadmin grant-manager --username <name>
  eventadmin revoke-manager --username <name>

Flags:
`

type command struct {
	name     string
	username string
}

var errUsage = errors.New("usage")

// parseArgs reads the subcommand and its flags. It returns errUsage after
// printing help to out.
func parseArgs(args []string, out io.Writer) (command, error) {
	var cmd command
	flagSet := pflag.NewFlagSet("eventadmin", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringVarP(&cmd.username, "username", "u", "", "account to change")
	flagSet.Usage = func() {
		fmt.Fprint(out, usage)
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return command{}, errUsage
		}
		return command{}, err
	}

	rest := flagSet.Args()
	if len(rest) != 1 {
		flagSet.Usage()
		return command{}, errUsage
	}
	cmd.name = rest[0]
	cmd.username = strings.TrimSpace(cmd.username)

	switch cmd.name {
	case "migrate":
	case "grant-manager", "revoke-manager":
		if cmd.username == "" {
			return command{}, fmt.Errorf("%s requires --username", cmd.name)
		}
	default:
		return command{}, fmt.Errorf("unknown command %q", cmd.name)
	}
	return cmd, nil
}

type managerSetter interface {
	SetManager(ctx context.Context, username string, isManager bool) error
}

// setManager runs grant-manager and revoke-manager.
func setManager(ctx context.Context, accounts managerSetter, cmd command, out io.Writer) error {
	grant := cmd.name == "grant-manager"
	if err := accounts.SetManager(ctx, cmd.username, grant); err != nil {
		return fmt.Errorf("%s %s: %w", cmd.name, cmd.username, err)
	}
	if grant {
		fmt.Fprintf(out, "%s can now manage events\n", cmd.username)
	} else {
		fmt.Fprintf(out, "%s can no longer manage events\n", cmd.username)
	}
	return nil
}

func main() {
	cmd, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, errUsage) {
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "eventadmin:", err)
		os.Exit(2)
	}

	_, _ = config.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "eventadmin:", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg.Log.Level, "console")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, cmd); err != nil {
		logger.Error().Err(err).Str("command", cmd.name).Msg("eventadmin failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, cmd command) error {
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("eventadmin needs DATABASE_DRIVER=postgres, got %q", cfg.Database.Driver)
	}

	pool, err := postgres.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cmd.name == "migrate" {
		applied, err := migrations.Apply(ctx, pool)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Println("schema is up to date")
		}
		for _, name := range applied {
			fmt.Println("applied", name)
		}
		return nil
	}

	clk := clock.NewSystem()
	issuer, err := auth.NewIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL, clk)
	if err != nil {
		return err
	}
	accounts := app.NewAccountService(postgres.NewStore(pool), auth.PasswordHasher{}, issuer, clk)
	return setManager(ctx, accounts, cmd, os.Stdout)
}
