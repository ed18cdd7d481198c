package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	rosterpersistence "github.com/fieldops/salesrecon/modules/roster/infrastructure/persistence"
	rosterservices "github.com/fieldops/salesrecon/modules/roster/services"
	"github.com/fieldops/salesrecon/pkg/composables"
	"github.com/fieldops/salesrecon/pkg/configuration"
	"github.com/fieldops/salesrecon/pkg/eventbus"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "recon",
		Short:         "Batch reconciliation of sales hierarchy extracts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newDiffCmd())
	cmd.AddCommand(newApplyCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newCheckCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// loadStore connects to the configured database and loads the roster
// snapshot. The returned context carries the pool for persistence.
func loadStore(ctx context.Context) (*rosterservices.RosterStore, context.Context, error) {
	conf := configuration.Use()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return nil, nil, err
	}

	poolCtx := composables.WithPool(ctx, pool)
	store := rosterservices.NewRosterStore(
		rosterpersistence.NewStaffRepository(),
		eventbus.NewEventPublisher(conf.Logger()),
		conf.Logger(),
	)
	store.SetPersistContext(poolCtx)
	if err := store.Load(poolCtx); err != nil {
		return nil, nil, err
	}
	return store, poolCtx, nil
}
