package bridgedb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/carbonable/juno-starknet-bridge/pkg/customer"
	mghelper "github.com/carbonable/juno-starknet-bridge/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating customer_keys table...")
		if err := mghelper.CreateSchema(ctx, db, &customer.KeysDao{}); err != nil {
			return err
		}
		return mghelper.CreateCompositeUniqueIndex(ctx, db, "customer_keys",
			"keplr_wallet_pubkey", "project_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping customer_keys table...")
		return mghelper.DropTables(ctx, db, &customer.KeysDao{})
	})
}
