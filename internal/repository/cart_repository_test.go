package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCart(t *testing.T) {
	_, err := repository.NewCart(nil, repository.DefaultCartKey)
	require.EqualError(t, err, "slots is nil")

	_, err = repository.NewCart(repository.NewMemorySlot(), "")
	require.EqualError(t, err, "key is empty")
}

func TestCartRepositoryRoundTrip(t *testing.T) {
	fileSlot, err := repository.NewFileSlot(t.TempDir())
	require.NoError(t, err)

	slots := map[string]port.SlotStore{
		"memory": repository.NewMemorySlot(),
		"file":   fileSlot,
	}

	for name, slot := range slots {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			repo, err := repository.NewCart(slot, repository.DefaultCartKey)
			require.NoError(t, err)

			got, err := repo.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)

			lines := randomLines(4)
			require.NoError(t, repo.Save(ctx, lines))

			got, err = repo.Load(ctx)
			require.NoError(t, err)
			assertLines(t, lines, got)

			require.NoError(t, repo.Save(ctx, nil))

			got, err = repo.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestCartRepositoryPayloadShape(t *testing.T) {
	ctx := t.Context()
	slot := repository.NewMemorySlot()

	repo, err := repository.NewCart(slot, repository.DefaultCartKey)
	require.NoError(t, err)

	lines := []domain.CartLine{{
		ProductID: 7,
		Product: domain.Product{
			ID:          7,
			Name:        "Caneca",
			Description: "Cerâmica",
			Category:    "Cozinha",
			Price:       "R$ 20,00",
			Images:      []string{"img/caneca.png"},
		},
		Quantity: 2,
	}}
	require.NoError(t, repo.Save(ctx, lines))

	raw, err := slot.Get(ctx, repository.DefaultCartKey)
	require.NoError(t, err)

	assert.JSONEq(t, `[{
		"id": 7,
		"nome": "Caneca",
		"descricao": "Cerâmica",
		"categoria": "Cozinha",
		"preco": "R$ 20,00",
		"imagens": ["img/caneca.png"],
		"quantidade": 2
	}]`, string(raw))
}

func TestCartRepositoryLoad(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantLen   int
		wantError error
	}{
		{
			name:    "valid payload: ok",
			payload: `[{"id":1,"nome":"a","preco":"R$ 1,00","imagens":[],"quantidade":3}]`,
			wantLen: 1,
		},
		{
			name:    "null payload: empty",
			payload: `null`,
			wantLen: 0,
		},
		{
			name:      "truncated payload: corrupt",
			payload:   `[{"id":1,`,
			wantError: domain.ErrCorruptCart,
		},
		{
			name:      "wrong shape: corrupt",
			payload:   `{"id":1}`,
			wantError: domain.ErrCorruptCart,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			slot := repository.NewMemorySlot()
			require.NoError(t, slot.Put(ctx, repository.DefaultCartKey, []byte(tt.payload)))

			repo, err := repository.NewCart(slot, repository.DefaultCartKey)
			require.NoError(t, err)

			lines, err := repo.Load(ctx)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Len(t, lines, tt.wantLen)
		})
	}
}

func TestCartRepositoryStorageFailure(t *testing.T) {
	repo, err := repository.NewCart(failingSlot{}, repository.DefaultCartKey)
	require.NoError(t, err)

	_, err = repo.Load(t.Context())
	require.EqualError(t, err, "slots.Get: storage unavailable")

	err = repo.Save(t.Context(), randomLines(1))
	require.EqualError(t, err, "slots.Put: storage unavailable")
}

type failingSlot struct{}

var errUnavailable = errors.New("storage unavailable")

func (failingSlot) Get(context.Context, string) ([]byte, error) {
	return nil, errUnavailable
}

func (failingSlot) Put(context.Context, string, []byte) error {
	return errUnavailable
}

func randomLines(n int) []domain.CartLine {
	lines := make([]domain.CartLine, 0, n)

	for i := range n {
		id := i + 1
		lines = append(lines, domain.CartLine{
			ProductID: id,
			Product: domain.Product{
				ID:          id,
				Name:        gofakeit.ProductName(),
				Description: gofakeit.ProductDescription(),
				Category:    gofakeit.ProductCategory(),
				Price:       fmt.Sprintf("R$ %d,%02d", gofakeit.IntRange(1, 999), gofakeit.IntRange(0, 99)),
				Images:      []string{gofakeit.URL(), gofakeit.URL()},
			},
			Quantity: gofakeit.IntRange(1, 10),
		})
	}

	return lines
}

func assertLines(t *testing.T, expected, actual []domain.CartLine) {
	t.Helper()

	// UnitPrice is derived from Product.Price and is not persisted
	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.CartLine{}, "UnitPrice"),
		cmpopts.EquateEmpty(),
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)
}
