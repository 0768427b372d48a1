package queue

import (
	"time"

	"github.com/uptrace/bun"
)

// MigrationDao is a data access object that maps directly to the
// 'migration_queue' table in PostgreSQL.
type MigrationDao struct {
	bun.BaseModel        `bun:"table:migration_queue,alias:mq"`
	ID                   string     `bun:"id,pk,type:uuid"`
	KeplrWalletPubkey    string     `bun:"keplr_wallet_pubkey,notnull,type:varchar(255)"`
	StarknetWalletPubkey string     `bun:"starknet_wallet_pubkey,notnull,type:varchar(255)"`
	ProjectID            string     `bun:"project_id,notnull,type:varchar(255)"`
	TokenID              string     `bun:"token_id,notnull,type:varchar(255)"`
	TransactionHash      *string    `bun:"transaction_hash,type:varchar(255)"`
	ErrorReason          *string    `bun:"error_reason,type:text"`
	MigrationStatus      string     `bun:"migration_status,notnull,type:varchar(16),default:'pending'"`
	ClaimedAt            *time.Time `bun:"claimed_at"`
	CreatedAt            time.Time  `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt            time.Time  `bun:"updated_at,nullzero,default:current_timestamp"`
}

// toMigrationDao converts an Item to MigrationDao.
func toMigrationDao(item *Item) *MigrationDao {
	dao := &MigrationDao{
		ID:                   item.ID,
		KeplrWalletPubkey:    item.KeplrWalletPubkey,
		StarknetWalletPubkey: item.StarknetWalletPubkey,
		ProjectID:            item.ProjectID,
		TokenID:              item.TokenID,
		MigrationStatus:      string(item.Status),
		ClaimedAt:            item.ClaimedAt,
		CreatedAt:            item.CreatedAt,
		UpdatedAt:            item.UpdatedAt,
	}

	if item.TransactionHash != "" {
		dao.TransactionHash = &item.TransactionHash
	}
	if item.ErrorReason != "" {
		dao.ErrorReason = &item.ErrorReason
	}

	return dao
}

// toItem converts a MigrationDao to Item.
func toItem(dao *MigrationDao) *Item {
	item := &Item{
		ID:                   dao.ID,
		KeplrWalletPubkey:    dao.KeplrWalletPubkey,
		StarknetWalletPubkey: dao.StarknetWalletPubkey,
		ProjectID:            dao.ProjectID,
		TokenID:              dao.TokenID,
		Status:               Status(dao.MigrationStatus),
		ClaimedAt:            dao.ClaimedAt,
		CreatedAt:            dao.CreatedAt,
		UpdatedAt:            dao.UpdatedAt,
	}

	if dao.TransactionHash != nil {
		item.TransactionHash = *dao.TransactionHash
	}
	if dao.ErrorReason != nil {
		item.ErrorReason = *dao.ErrorReason
	}

	return item
}
