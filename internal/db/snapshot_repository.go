package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solrift/statfx/internal/snapshot"
)

// SnapshotRepository persists entity snapshots: base stat values plus active
// persistent effects. Continuous and repeating effects are never stored;
// their contributions are consumed per tick.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository returns a repository over the given pool.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// SaveEntity replaces the stored snapshot for one entity in a single
// transaction.
func (r *SnapshotRepository) SaveEntity(ctx context.Context, snap snapshot.Entity) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for entity %d: %w", snap.ID, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			slog.Error("rollback failed", "entity", snap.ID, "err", err)
		}
	}()

	if _, err := tx.Exec(ctx,
		`DELETE FROM entity_stats WHERE entity_id = $1`, int64(snap.ID),
	); err != nil {
		return fmt.Errorf("clearing stats for entity %d: %w", snap.ID, err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM persistent_effects WHERE entity_id = $1`, int64(snap.ID),
	); err != nil {
		return fmt.Errorf("clearing effects for entity %d: %w", snap.ID, err)
	}

	for ordinal, base := range snap.Bases {
		if _, err := tx.Exec(ctx,
			`INSERT INTO entity_stats (entity_id, ordinal, base) VALUES ($1, $2, $3)`,
			int64(snap.ID), int16(ordinal), base,
		); err != nil {
			return fmt.Errorf("saving stat %d for entity %d: %w", ordinal, snap.ID, err)
		}
	}

	for _, e := range snap.Effects {
		if _, err := tx.Exec(ctx,
			`INSERT INTO persistent_effects
			   (instance, entity_id, identity, target, calculation, applied, remaining)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			e.Instance, int64(snap.ID), e.Identity, int16(e.Target), int16(e.Calculation),
			e.Applied, e.Remaining,
		); err != nil {
			return fmt.Errorf("saving effect %s for entity %d: %w", e.Identity, snap.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing snapshot for entity %d: %w", snap.ID, err)
	}
	return nil
}

// LoadEntity returns the stored snapshot for one entity. The second return
// is false when no snapshot exists.
func (r *SnapshotRepository) LoadEntity(ctx context.Context, id uint32) (snapshot.Entity, bool, error) {
	snap := snapshot.Entity{ID: id}

	rows, err := r.pool.Query(ctx,
		`SELECT ordinal, base FROM entity_stats WHERE entity_id = $1 ORDER BY ordinal`,
		int64(id),
	)
	if err != nil {
		return snap, false, fmt.Errorf("querying stats for entity %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ordinal int16
		var base float32
		if err := rows.Scan(&ordinal, &base); err != nil {
			return snap, false, fmt.Errorf("scanning stat for entity %d: %w", id, err)
		}
		for int(ordinal) >= len(snap.Bases) {
			snap.Bases = append(snap.Bases, 0)
		}
		snap.Bases[ordinal] = base
	}
	if err := rows.Err(); err != nil {
		return snap, false, fmt.Errorf("reading stats for entity %d: %w", id, err)
	}
	rows.Close()

	if len(snap.Bases) == 0 {
		return snap, false, nil
	}

	effectRows, err := r.pool.Query(ctx,
		`SELECT instance, identity, target, calculation, applied, remaining
		 FROM persistent_effects WHERE entity_id = $1 ORDER BY instance`,
		int64(id),
	)
	if err != nil {
		return snap, false, fmt.Errorf("querying effects for entity %d: %w", id, err)
	}
	defer effectRows.Close()

	for effectRows.Next() {
		var e snapshot.Effect
		var target, calculation int16
		if err := effectRows.Scan(&e.Instance, &e.Identity, &target, &calculation, &e.Applied, &e.Remaining); err != nil {
			return snap, false, fmt.Errorf("scanning effect for entity %d: %w", id, err)
		}
		e.Target = uint8(target)
		e.Calculation = uint8(calculation)
		snap.Effects = append(snap.Effects, e)
	}
	if err := effectRows.Err(); err != nil {
		return snap, false, fmt.Errorf("reading effects for entity %d: %w", id, err)
	}

	return snap, true, nil
}

// DeleteEntity removes the stored snapshot for one entity.
func (r *SnapshotRepository) DeleteEntity(ctx context.Context, id uint32) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM persistent_effects WHERE entity_id = $1`, int64(id),
	); err != nil {
		return fmt.Errorf("deleting effects for entity %d: %w", id, err)
	}
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM entity_stats WHERE entity_id = $1`, int64(id),
	); err != nil {
		return fmt.Errorf("deleting stats for entity %d: %w", id, err)
	}
	return nil
}

// ListEntityIDs returns every entity ID with a stored snapshot, ascending.
func (r *SnapshotRepository) ListEntityIDs(ctx context.Context) ([]uint32, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT entity_id FROM entity_stats ORDER BY entity_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}
	defer rows.Close()

	var ids []uint32
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning entity id: %w", err)
		}
		ids = append(ids, uint32(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading entity ids: %w", err)
	}
	return ids, nil
}
