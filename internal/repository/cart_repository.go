package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

// DefaultCartKey is the storage slot the cart lives in.
const DefaultCartKey = "meuCarrinho"

type cartRepository struct {
	slots port.SlotStore
	key   string
}

func NewCart(slots port.SlotStore, key string) (port.CartRepository, error) {
	if slots == nil {
		return nil, fmt.Errorf("slots is nil")
	}
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	return &cartRepository{
		slots: slots,
		key:   key,
	}, nil
}

// cartRecord is one persisted cart line: the product snapshot plus its quantity.
type cartRecord struct {
	ID          int      `json:"id"`
	Name        string   `json:"nome"`
	Description string   `json:"descricao"`
	Category    string   `json:"categoria"`
	Price       string   `json:"preco"`
	Images      []string `json:"imagens"`
	Quantity    int      `json:"quantidade"`
}

func (r *cartRepository) Load(ctx context.Context) ([]domain.CartLine, error) {
	value, err := r.slots.Get(ctx, r.key)
	if errors.Is(err, port.ErrSlotNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("slots.Get: %w", err)
	}

	var records []cartRecord
	if err := json.Unmarshal(value, &records); err != nil {
		return nil, fmt.Errorf("%w: json.Unmarshal: %w", domain.ErrCorruptCart, err)
	}

	return mapRecordsToDomain(records), nil
}

func (r *cartRepository) Save(ctx context.Context, lines []domain.CartLine) error {
	value, err := json.Marshal(mapDomainToRecords(lines))
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := r.slots.Put(ctx, r.key, value); err != nil {
		return fmt.Errorf("slots.Put: %w", err)
	}

	return nil
}

func mapRecordsToDomain(records []cartRecord) []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(records))

	for _, rec := range records {
		lines = append(lines, domain.CartLine{
			ProductID: rec.ID,
			Product: domain.Product{
				ID:          rec.ID,
				Name:        rec.Name,
				Description: rec.Description,
				Category:    rec.Category,
				Price:       rec.Price,
				Images:      rec.Images,
			},
			Quantity: rec.Quantity,
		})
	}

	return lines
}

func mapDomainToRecords(lines []domain.CartLine) []cartRecord {
	records := make([]cartRecord, 0, len(lines))

	for _, l := range lines {
		records = append(records, cartRecord{
			ID:          l.ProductID,
			Name:        l.Product.Name,
			Description: l.Product.Description,
			Category:    l.Product.Category,
			Price:       l.Product.Price,
			Images:      l.Product.Images,
			Quantity:    l.Quantity,
		})
	}

	return records
}
