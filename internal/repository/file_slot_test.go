package repository_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSlot(t *testing.T) {
	ctx := t.Context()
	dir := filepath.Join(t.TempDir(), "state")

	slot, err := repository.NewFileSlot(dir)
	require.NoError(t, err)

	_, err = slot.Get(ctx, "cart")
	require.ErrorIs(t, err, port.ErrSlotNotFound)

	require.NoError(t, slot.Put(ctx, "cart", []byte(`[1]`)))
	require.NoError(t, slot.Put(ctx, "cart", []byte(`[2]`)))

	got, err := slot.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
	assert.Equal(t, "cart.json", entries[0].Name())
}

func TestFileSlotRejectsKeys(t *testing.T) {
	slot, err := repository.NewFileSlot(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name      string
		key       string
		wantError string
	}{
		{name: "empty key: error", key: "", wantError: "key is empty"},
		{name: "path traversal: error", key: "../cart", wantError: "key[../cart] is not valid"},
		{name: "dot: error", key: "..", wantError: "key[..] is not valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := slot.Put(t.Context(), tt.key, []byte(`[]`))
			require.EqualError(t, err, tt.wantError)

			_, err = slot.Get(t.Context(), tt.key)
			require.EqualError(t, err, tt.wantError)
		})
	}
}

func TestNewFileSlotEmptyDir(t *testing.T) {
	_, err := repository.NewFileSlot("")
	require.EqualError(t, err, "dir is empty")
}
