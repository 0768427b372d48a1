package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the migration queue store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) Enqueue(ctx context.Context, item *Item) (*Item, error) {
	dao := toMigrationDao(item)
	dao.ID = uuid.NewString()
	dao.MigrationStatus = string(StatusPending)

	// The conflict target is the unique (wallet, project, token) key; an
	// existing row keeps its status untouched whatever state it is in.
	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (keplr_wallet_pubkey, project_id, token_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue migration: %w", err)
	}

	existing := new(MigrationDao)
	err = s.db.NewSelect().
		Model(existing).
		Where("keplr_wallet_pubkey = ?", item.KeplrWalletPubkey).
		Where("project_id = ?", item.ProjectID).
		Where("token_id = ?", item.TokenID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read back enqueued migration: %w", err)
	}

	return toItem(existing), nil
}

func (s *pgStore) ClaimBatch(ctx context.Context, n int) ([]*Item, error) {
	var daos []MigrationDao

	// SKIP LOCKED keeps concurrent workers from blocking on, or double
	// claiming, the same pending rows.
	err := s.db.NewRaw(`
		UPDATE migration_queue SET
			migration_status = ?,
			claimed_at = NOW(),
			updated_at = NOW()
		WHERE id IN (
			SELECT id FROM migration_queue
			WHERE migration_status = ?
			ORDER BY created_at ASC
			LIMIT ?
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		string(StatusProcessing), string(StatusPending), n).
		Scan(ctx, &daos)
	if err != nil {
		return nil, fmt.Errorf("failed to claim batch: %w", err)
	}

	items := make([]*Item, len(daos))
	for i := range daos {
		items[i] = toItem(&daos[i])
	}
	return items, nil
}

func (s *pgStore) MarkSuccess(ctx context.Context, id, txHash string) error {
	return s.finalize(ctx, id, StatusSuccess, func(q *bun.UpdateQuery) {
		q.Set("transaction_hash = ?", txHash)
	})
}

func (s *pgStore) MarkError(ctx context.Context, id, reason string) error {
	return s.finalize(ctx, id, StatusError, func(q *bun.UpdateQuery) {
		q.Set("error_reason = ?", reason)
	})
}

// finalize transitions a processing item to a terminal status. The status
// predicate makes the transition a no-op when another worker got there first
// or the item was reclaimed in the meantime.
func (s *pgStore) finalize(ctx context.Context, id string, status Status, set func(*bun.UpdateQuery)) error {
	q := s.db.NewUpdate().
		Model((*MigrationDao)(nil)).
		Set("migration_status = ?", string(status)).
		Set("claimed_at = NULL").
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("migration_status = ?", string(StatusProcessing))
	set(q)

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark migration %s: %w", status, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgStore) ReclaimStale(ctx context.Context, deadline time.Time) (int, error) {
	res, err := s.db.NewUpdate().
		Model((*MigrationDao)(nil)).
		Set("migration_status = ?", string(StatusPending)).
		Set("claimed_at = NULL").
		Set("updated_at = NOW()").
		Where("migration_status = ?", string(StatusProcessing)).
		Where("claimed_at < ?", deadline).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reclaim stale migrations: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(rows), nil
}

func (s *pgStore) ListByCustomer(ctx context.Context, keplrWalletPubkey, projectID string) ([]*Item, error) {
	var daos []MigrationDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("keplr_wallet_pubkey = ?", keplrWalletPubkey).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}

	items := make([]*Item, len(daos))
	for i := range daos {
		items[i] = toItem(&daos[i])
	}
	return items, nil
}

func (s *pgStore) CountPending(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().
		Model((*MigrationDao)(nil)).
		Where("migration_status = ?", string(StatusPending)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending migrations: %w", err)
	}
	return count, nil
}
