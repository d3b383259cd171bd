// portalctl is the operator CLI for the support portal. It talks to Postgres
// directly and is the only way to create the first MANAGER.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/config"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/observability"
	"github.com/spec-kit/support-portal/internal/persistence"
	"github.com/spec-kit/support-portal/internal/repository"
	"github.com/spec-kit/support-portal/internal/seed"
	"github.com/spec-kit/support-portal/internal/service"
)

const usage = `usage: portalctl <command> [flags]

commands:
  migrate                     apply SQL migrations
  seed -f <file>              load accounts and tickets from YAML
  set-role <username> <role>  set a role by name (user, admin, manager) or level (0, 1, 2)
  list-users                  print every account and its role
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(out, usage)
		return nil
	}
	command, rest := args[0], args[1:]

	var seedFile, migrationsDir string
	var timeout time.Duration
	flagSet := pflag.NewFlagSet("portalctl "+command, pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.StringVarP(&seedFile, "file", "f", "seed.yaml", "seed file (seed only)")
	flagSet.StringVar(&migrationsDir, "migrations", "", "migrations directory (default from POSTGRES_MIGRATIONS_DIR)")
	flagSet.DurationVar(&timeout, "timeout", time.Minute, "overall deadline")
	if err := flagSet.Parse(rest); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN must be set")
	}
	if migrationsDir == "" {
		migrationsDir = cfg.Postgres.MigrationsDir
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	accounts := repository.NewAccountRepository(pg.PoolHandle())
	tickets := repository.NewTicketRepository(pg.PoolHandle())
	roles := service.NewAccountService(accounts, nil, nil, logger)

	switch command {
	case "migrate":
		return persistence.RunMigrations(ctx, pg.PoolHandle(), migrationsDir, logger)

	case "seed":
		f, err := seed.LoadFile(seedFile)
		if err != nil {
			return err
		}
		seeder := &seed.Seeder{
			Auth: service.NewAuthService(service.AuthDependencies{
				Accounts: accounts,
				Hasher:   auth.NewPasswordHasher(cfg.Auth.BcryptCost),
				Tokens:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
				Logger:   logger,
			}),
			Roles:    roles,
			Tickets:  service.NewTicketService(service.TicketDependencies{Tickets: tickets, Rules: service.ContentRulesFrom(cfg.Ticket), Logger: logger}),
			Accounts: accounts,
			Store:    tickets,
			Logger:   logger,
		}
		res, err := seeder.Apply(ctx, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "accounts: %d created, %d skipped; tickets: %d created, %d skipped\n",
			res.AccountsCreated, res.AccountsSkipped, res.TicketsCreated, res.TicketsSkipped)
		return nil

	case "set-role":
		positional := flagSet.Args()
		if len(positional) != 2 {
			return errors.New("set-role needs <username> <role>")
		}
		role, err := domain.ParseRole(positional[1])
		if err != nil {
			return err
		}
		account, err := roles.AssignRole(ctx, positional[0], role)
		if err != nil {
			return err
		}
		logger.Info("role assigned", zap.String("username", account.Username), zap.String("role", string(account.Role)))
		fmt.Fprintf(out, "%s is now %s\n", account.Username, account.Role)
		return nil

	case "list-users":
		list, err := accounts.List(ctx)
		if err != nil {
			return err
		}
		return printAccounts(out, list)
	}

	return fmt.Errorf("unknown command %q\n\n%s", command, usage)
}

func printAccounts(out io.Writer, accounts []domain.Account) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tROLE\tLEVEL\tCREATED")
	for _, a := range accounts {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", a.ID, a.Username, a.Role, auth.LevelOfRole(a.Role), a.CreatedAt.Format(time.DateOnly))
	}
	return w.Flush()
}
