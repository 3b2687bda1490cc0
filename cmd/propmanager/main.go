package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mabdulrehman08/propmanager/internal/audit"
	"github.com/mabdulrehman08/propmanager/internal/clock"
	"github.com/mabdulrehman08/propmanager/internal/config"
	"github.com/mabdulrehman08/propmanager/internal/dashboard"
	"github.com/mabdulrehman08/propmanager/internal/events"
	"github.com/mabdulrehman08/propmanager/internal/history"
	historydomain "github.com/mabdulrehman08/propmanager/internal/history/domain"
	"github.com/mabdulrehman08/propmanager/internal/invoice"
	invoicedomain "github.com/mabdulrehman08/propmanager/internal/invoice/domain"
	"github.com/mabdulrehman08/propmanager/internal/ledger"
	ledgerdomain "github.com/mabdulrehman08/propmanager/internal/ledger/domain"
	"github.com/mabdulrehman08/propmanager/internal/logger"
	"github.com/mabdulrehman08/propmanager/internal/migration"
	"github.com/mabdulrehman08/propmanager/internal/observability/metrics"
	"github.com/mabdulrehman08/propmanager/internal/payment"
	"github.com/mabdulrehman08/propmanager/internal/seed"
	"github.com/mabdulrehman08/propmanager/internal/server"
	"github.com/mabdulrehman08/propmanager/internal/settlement"
	settlementdomain "github.com/mabdulrehman08/propmanager/internal/settlement/domain"
	"github.com/mabdulrehman08/propmanager/pkg/db"
)

func main() {
	root := &cobra.Command{
		Use:          "propmanager",
		Short:        "Rent ledger and settlement engine",
		SilenceUsage: true,
	}

	root.AddCommand(
		serveCmd(),
		migrateCmd(),
		generateCmd(),
		reconstructCmd(),
		settleCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// baseModules wires everything short of the HTTP surface.
func baseModules() fx.Option {
	return fx.Options(
		config.Module,
		logger.Module,
		db.Module,
		clock.Module,
		fx.Provide(newIDNode),
		fx.Provide(events.NewOutbox),
		fx.Provide(newEngineMetrics),
		ledger.Module,
		audit.Module,
		invoice.Module,
		payment.Module,
		history.Module,
		settlement.Module,
		dashboard.Module,
		fx.Invoke(runMigrations),
	)
}

func runMigrations(conn *gorm.DB, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	return migration.RunMigrations(ctx, conn, log)
}

func runSeed(cfg config.Config, conn *gorm.DB, genID *snowflake.Node, store ledgerdomain.Store, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	return seed.Run(ctx, cfg, conn, genID, store, log)
}

func newIDNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func newEngineMetrics(cfg config.Config) *metrics.EngineMetrics {
	return metrics.EngineWithConfig(metrics.Config{
		ServiceName: "propmanager",
		Environment: cfg.Environment,
	})
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				baseModules(),
				fx.Invoke(runSeed),
				server.Module,
			)
			app.Run()
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneShot(cmd.Context(), baseModules(), func(context.Context) error {
				// Migrations already ran as part of startup.
				return nil
			})
		},
	}
}

func generateCmd() *cobra.Command {
	var month, year int
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate rent invoices for a billing period",
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc invoicedomain.Service
			opts := fx.Options(baseModules(), fx.Populate(&svc))
			return runOneShot(cmd.Context(), opts, func(ctx context.Context) error {
				resp, err := svc.Generate(ctx, invoicedomain.GenerateRequest{Month: month, Year: year})
				if err != nil {
					return err
				}
				fmt.Printf("generated %d invoice(s)\n", resp.GeneratedCount)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&month, "month", int(time.Now().Month()), "billing month (1-12)")
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "billing year")
	return cmd
}

func reconstructCmd() *cobra.Command {
	var (
		unitIDRaw   string
		rentRaw     string
		increaseRaw string
		startYear   int
		startMonth  int
	)
	cmd := &cobra.Command{
		Use:   "reconstruct",
		Short: "Backfill historical rent invoices for a unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			unitID, err := snowflake.ParseString(strings.TrimSpace(unitIDRaw))
			if err != nil {
				return fmt.Errorf("invalid unit id: %w", err)
			}
			rent, err := decimal.NewFromString(strings.TrimSpace(rentRaw))
			if err != nil {
				return fmt.Errorf("invalid current rent: %w", err)
			}
			increase, err := decimal.NewFromString(strings.TrimSpace(increaseRaw))
			if err != nil {
				return fmt.Errorf("invalid increase percent: %w", err)
			}

			var svc historydomain.Service
			opts := fx.Options(baseModules(), fx.Populate(&svc))
			return runOneShot(cmd.Context(), opts, func(ctx context.Context) error {
				resp, err := svc.Reconstruct(ctx, historydomain.ReconstructRequest{
					UnitID:                unitID,
					CurrentRent:           rent,
					YearlyIncreasePercent: increase,
					StartYear:             startYear,
					StartMonth:            startMonth,
				})
				if err != nil {
					return err
				}
				fmt.Printf("created %d historical invoice(s)\n", resp.GeneratedCount)
				for _, yr := range resp.YearlyRents {
					fmt.Printf("  %d: %s\n", yr.Year, yr.Rent.StringFixed(0))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&unitIDRaw, "unit", "", "unit id")
	cmd.Flags().StringVar(&rentRaw, "rent", "", "current monthly rent")
	cmd.Flags().StringVar(&increaseRaw, "increase", "10", "yearly increase percent")
	cmd.Flags().IntVar(&startYear, "start-year", 0, "first year to backfill (defaults to configuration)")
	cmd.Flags().IntVar(&startMonth, "start-month", 0, "first month of the start year (defaults to configuration)")
	_ = cmd.MarkFlagRequired("unit")
	_ = cmd.MarkFlagRequired("rent")
	return cmd
}

func settleCmd() *cobra.Command {
	var (
		propertyIDRaw string
		month, year   int
	)
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Calculate owner settlements for a property and period",
		RunE: func(cmd *cobra.Command, args []string) error {
			propertyID, err := snowflake.ParseString(strings.TrimSpace(propertyIDRaw))
			if err != nil {
				return fmt.Errorf("invalid property id: %w", err)
			}

			var svc settlementdomain.Service
			opts := fx.Options(baseModules(), fx.Populate(&svc))
			return runOneShot(cmd.Context(), opts, func(ctx context.Context) error {
				settlements, err := svc.Calculate(ctx, settlementdomain.CalculateRequest{
					PropertyID: propertyID,
					Month:      month,
					Year:       year,
				})
				if err != nil {
					return err
				}
				for _, s := range settlements {
					fmt.Printf("user %s: share %s, balance %s\n",
						s.UserID.String(), s.OwnerShare.StringFixed(2), s.Balance.StringFixed(2))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&propertyIDRaw, "property", "", "property id")
	cmd.Flags().IntVar(&month, "month", int(time.Now().Month()), "settlement month (1-12)")
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "settlement year")
	_ = cmd.MarkFlagRequired("property")
	return cmd
}

// runOneShot starts the dependency graph, runs fn once and stops.
func runOneShot(ctx context.Context, opts fx.Option, fn func(context.Context) error) error {
	app := fx.New(opts, fx.NopLogger)
	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	runErr := fn(ctx)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
