package db

import (
	"context"
)

const getSlot = `-- name: GetSlot :one
SELECT key, value, updated_at
FROM storage_slots
WHERE key = $1
`

func (q *Queries) GetSlot(ctx context.Context, key string) (StorageSlot, error) {
	row := q.db.QueryRow(ctx, getSlot, key)
	var i StorageSlot
	err := row.Scan(&i.Key, &i.Value, &i.UpdatedAt)
	return i, err
}

const upsertSlot = `-- name: UpsertSlot :exec
INSERT INTO storage_slots (key, value, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at
`

type UpsertSlotParams struct {
	Key   string
	Value []byte
}

func (q *Queries) UpsertSlot(ctx context.Context, arg UpsertSlotParams) error {
	_, err := q.db.Exec(ctx, upsertSlot, arg.Key, arg.Value)
	return err
}
