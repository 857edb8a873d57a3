package port

import (
	"context"
	"errors"
	"github.com/nikolayk812/storefront/internal/domain"
)

var ErrSlotNotFound = errors.New("slot not found")

// CartRepository persists the whole cart as one ordered sequence of lines.
type CartRepository interface {
	Load(ctx context.Context) ([]domain.CartLine, error)
	Save(ctx context.Context, lines []domain.CartLine) error
}

// SlotStore is a key-value storage slot holding opaque serialized values.
type SlotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

type CatalogSource interface {
	Load(ctx context.Context) ([]domain.Product, error)
}

// LinkOpener hands an outbound checkout link to whoever can open it.
type LinkOpener interface {
	Open(ctx context.Context, link string) error
}
