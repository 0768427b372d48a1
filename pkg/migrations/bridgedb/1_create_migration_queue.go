package bridgedb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/carbonable/juno-starknet-bridge/pkg/pgutil/migrations"
	"github.com/carbonable/juno-starknet-bridge/pkg/queue"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating migration_queue table...")
		if err := mghelper.CreateSchema(ctx, db, &queue.MigrationDao{}); err != nil {
			return err
		}
		// The composite unique key is what makes enqueue idempotent.
		if err := mghelper.CreateCompositeUniqueIndex(ctx, db, "migration_queue",
			"keplr_wallet_pubkey", "project_id", "token_id"); err != nil {
			return err
		}
		return mghelper.CreateIndexes(ctx, db, "migration_queue", "migration_status")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping migration_queue table...")
		return mghelper.DropTables(ctx, db, &queue.MigrationDao{})
	})
}
