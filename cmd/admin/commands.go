package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"finanzas/internal/domain/ledger"
	"finanzas/internal/infrastructure/postgres"
	"finanzas/internal/shared/config"
	"finanzas/internal/shared/logger"
)

// app is what every subcommand works on.
type app struct {
	db     *postgres.DB
	ledger *ledger.Service
	log    zerolog.Logger
}

func newRootCommand() *cobra.Command {
	var timeout time.Duration

	rootCmd := &cobra.Command{
		Use:   "admin",
		Short: "Management commands for the finanzas API",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Minute, "timeout for the operation")

	withApp := func(fn func(ctx context.Context, a *app) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.db.Close()
			return fn(ctx, a)
		}
	}

	rootCmd.AddCommand(
		newMigrateCommand(withApp),
		newProcessRecurringCommand(withApp),
		newRecalculateBalancesCommand(withApp),
	)
	return rootCmd
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Console: true})

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}
	log.Info().Str("db", cfg.Database.DBName).Msg("connected to database")

	return &app{
		db:     db,
		ledger: ledger.NewService(postgres.NewStore(db), log),
		log:    log,
	}, nil
}

type appRunner func(fn func(ctx context.Context, a *app) error) func(*cobra.Command, []string) error

func newMigrateCommand(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app) error {
			if err := a.db.Migrate(ctx); err != nil {
				return err
			}
			a.log.Info().Msg("schema applied")
			return nil
		}),
	}
}

func newProcessRecurringCommand(withApp appRunner) *cobra.Command {
	var nowStr string
	var userID string
	var untilDone bool

	cmd := &cobra.Command{
		Use:   "process-recurring",
		Short: "Generate the transactions of every due recurring rule",
		Long: `Generate one transaction per due recurring rule and advance each rule by one period.

Rules that are several periods behind stay due after a pass. Use --until-done
to repeat passes until no rule is due at --now.`,
		Args: cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app) error {
			now := time.Now()
			if nowStr != "" {
				var err error
				if now, err = parseNow(nowStr); err != nil {
					return err
				}
			}

			var total ledger.RecurringResult
			for pass := 1; ; pass++ {
				var res ledger.RecurringResult
				var err error
				if userID != "" {
					res, err = a.ledger.ProcessDueRecurringRulesForUser(ctx, userID, now)
				} else {
					res, err = a.ledger.ProcessDueRecurringRules(ctx, now)
				}
				if err != nil {
					return err
				}
				total.Generated += res.Generated
				total.Skipped += res.Skipped
				total.Failed += res.Failed

				a.log.Info().Int("pass", pass).Int("generated", res.Generated).Int("failed", res.Failed).Msg("recurring pass finished")
				// a pass where every due rule failed would loop forever
				if !untilDone || res.Generated == 0 {
					break
				}
			}

			fmt.Printf("generated=%d skipped=%d failed=%d\n", total.Generated, total.Skipped, total.Failed)
			if total.Failed > 0 {
				return fmt.Errorf("%d recurring rules failed", total.Failed)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&nowStr, "now", "", "processing time, RFC 3339 or YYYY-MM-DD (default: current time)")
	cmd.Flags().StringVar(&userID, "user-id", "", "only process rules of this user")
	cmd.Flags().BoolVar(&untilDone, "until-done", false, "repeat passes until no rule is due")
	return cmd
}

func newRecalculateBalancesCommand(withApp appRunner) *cobra.Command {
	var userIDs []string
	var all bool
	var rebuild bool

	cmd := &cobra.Command{
		Use:   "recalculate-balances",
		Short: "Fill missing account balances from transaction history",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if len(userIDs) == 0 && !all {
				return fmt.Errorf("must specify --user-id or --all")
			}
			if rebuild && all {
				return fmt.Errorf("--rebuild requires explicit --user-id")
			}
			return nil
		},
		RunE: withApp(func(ctx context.Context, a *app) error {
			if all {
				var err error
				if userIDs, err = a.ledger.UsersWithMissingBalance(ctx); err != nil {
					return err
				}
				a.log.Info().Int("users", len(userIDs)).Msg("found users with missing balances")
			}

			updated := 0
			for _, id := range userIDs {
				if rebuild {
					n, err := a.ledger.RebuildBalances(ctx, id)
					if err != nil {
						return fmt.Errorf("rebuilding balances of %s: %w", id, err)
					}
					updated += n
					continue
				}
				updated += a.ledger.RecalculateMissingBalances(ctx, id)
			}

			fmt.Printf("updated=%d\n", updated)
			return nil
		}),
	}

	cmd.Flags().StringSliceVar(&userIDs, "user-id", nil, "user ID(s) to repair (comma-separated)")
	cmd.Flags().BoolVar(&all, "all", false, "repair every user with a missing balance")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "discard cached balances and recompute them")
	return cmd
}

func parseNow(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: expected RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}
