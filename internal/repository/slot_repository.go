package repository

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/port"
)

type slotRepository struct {
	q *db.Queries
}

func NewSlot(pool *pgxpool.Pool) port.SlotStore {
	return &slotRepository{
		q: db.New(pool),
	}
}

func NewSlotWithTx(tx pgx.Tx) port.SlotStore {
	return &slotRepository{
		q: db.New(tx),
	}
}

func (r *slotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	slot, err := r.q.GetSlot(ctx, key)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("q.GetSlot: %w", err)
	}

	return slot.Value, nil
}

func (r *slotRepository) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	err := r.q.UpsertSlot(ctx, db.UpsertSlotParams{
		Key:   key,
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("q.UpsertSlot: %w", err)
	}

	return nil
}
