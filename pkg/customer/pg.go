package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// KeysDao is a data access object that maps directly to the 'customer_keys'
// table in PostgreSQL.
type KeysDao struct {
	bun.BaseModel     `bun:"table:customer_keys,alias:ck"`
	ID                string    `bun:"id,pk,type:uuid"`
	KeplrWalletPubkey string    `bun:"keplr_wallet_pubkey,notnull,type:varchar(255)"`
	ProjectID         string    `bun:"project_id,notnull,type:varchar(255)"`
	TokenIDs          []string  `bun:"token_ids,array"`
	CreatedAt         time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

func toKeys(dao *KeysDao) *Keys {
	return &Keys{
		KeplrWalletPubkey: dao.KeplrWalletPubkey,
		ProjectID:         dao.ProjectID,
		TokenIDs:          dao.TokenIDs,
		CreatedAt:         dao.CreatedAt,
		UpdatedAt:         dao.UpdatedAt,
	}
}

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the customer keys store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) Save(ctx context.Context, keys *Keys) error {
	dao := &KeysDao{
		ID:                uuid.NewString(),
		KeplrWalletPubkey: keys.KeplrWalletPubkey,
		ProjectID:         keys.ProjectID,
		TokenIDs:          keys.TokenIDs,
	}

	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (keplr_wallet_pubkey, project_id) DO UPDATE").
		Set("token_ids = EXCLUDED.token_ids").
		Set("updated_at = NOW()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save customer keys: %w", err)
	}
	return nil
}

func (s *pgStore) Get(ctx context.Context, keplrWalletPubkey, projectID string) (*Keys, error) {
	dao := new(KeysDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("keplr_wallet_pubkey = ?", keplrWalletPubkey).
		Where("project_id = ?", projectID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer keys: %w", err)
	}
	return toKeys(dao), nil
}
