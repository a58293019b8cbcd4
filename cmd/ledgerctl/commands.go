package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	portssvc "github.com/SscSPs/fireledger/internal/core/ports/services"
	"github.com/SscSPs/fireledger/internal/core/services"
	"github.com/SscSPs/fireledger/internal/dto"
	"github.com/SscSPs/fireledger/internal/middleware"
	"github.com/SscSPs/fireledger/internal/platform/config"
	"github.com/SscSPs/fireledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/fireledger/internal/utils"
	"github.com/SscSPs/fireledger/pkg/database"
	"github.com/spf13/cobra"
)

// newRootCommand creates the root CLI command with all subcommands registered.
func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Maintenance commands for the ledger database",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newBudgetsCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newTokenCommand())

	return rootCmd
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// withServices loads config, opens the pool and hands the services to fn.
func withServices(ctx context.Context, fn func(svc *portssvc.ServiceContainer) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		return err
	}
	defer database.ClosePgxPool(pool)

	container := services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(pool), nil, nil)
	return fn(container)
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			applied, err := database.RunMigrations(cfg.DatabaseURL, newLogger())
			if err != nil {
				return err
			}
			if applied {
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "no new migrations")
			}
			return nil
		},
	}
}

func newBudgetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Budget maintenance",
	}

	var userID string
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove empty and duplicate budget limits of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
				deleted, err := svc.Budget.CleanupBudgets(cmd.Context(), userID)
				if err != nil {
					return fmt.Errorf("cleaning up budgets: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d budget limits\n", deleted)
				return nil
			})
		},
	}
	cleanup.Flags().StringVar(&userID, "user", "", "user id (required)")
	_ = cleanup.MarkFlagRequired("user")

	cmd.AddCommand(cleanup)
	cmd.AddCommand(newBudgetSpentCommand())
	return cmd
}

func newBudgetSpentCommand() *cobra.Command {
	var userID, startFlag, endFlag, currencyCode string
	var budgetIDs []string

	cmd := &cobra.Command{
		Use:   "spent",
		Short: "Print what a user spent from budgets in a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse(time.DateOnly, startFlag)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			end, err := time.Parse(time.DateOnly, endFlag)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
			currency, known := utils.CurrencyFromCode(currencyCode)
			if !known {
				return fmt.Errorf("unknown currency %q", currencyCode)
			}

			return withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
				spent, err := svc.Budget.SpentInPeriod(cmd.Context(), userID, budgetIDs, nil, start, end)
				if err != nil {
					return fmt.Errorf("computing spending: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), utils.FormatAmount(currency, spent, utils.DefaultFormatSettings(currency.Code)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (required)")
	cmd.Flags().StringVar(&startFlag, "start", "", "first day, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&endFlag, "end", "", "last day, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&currencyCode, "currency", "EUR", "ISO code used for display")
	cmd.Flags().StringSliceVar(&budgetIDs, "budget", nil, "budget ids to include")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newImportCommand() *cobra.Command {
	var userID, file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import statement rows from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			var req dto.ImportRowsRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("parsing %s: %w", file, err)
			}

			return withServices(cmd.Context(), func(svc *portssvc.ServiceContainer) error {
				resp, err := svc.Import.ImportRows(cmd.Context(), userID, req)
				if resp != nil {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					if encErr := enc.Encode(resp); encErr != nil {
						return encErr
					}
				}
				return err
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (required)")
	cmd.Flags().StringVar(&file, "file", "", "JSON file holding an import request (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newTokenCommand() *cobra.Command {
	var userID string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			token, err := middleware.NewToken(cfg.JWTSecret, userID, ttl)
			if err != nil {
				return fmt.Errorf("signing token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
