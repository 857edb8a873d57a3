package repository_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/migrations"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type slotRepositorySuite struct {
	suite.Suite

	repo      port.SlotStore
	pool      *pgxpool.Pool
	container *postgres.PostgresContainer
	connStr   string
}

// entry point to run the tests in the suite
func TestSlotRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("postgres container suite skipped in short mode")
	}
	suite.Run(t, new(slotRepositorySuite))
}

// before all tests in the suite
func (suite *slotRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)
	suite.container, connStr, err = startPostgres(ctx)
	suite.Require().NoError(err)
	suite.connStr = connStr

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.repo = repository.NewSlot(suite.pool)
}

// after all tests in the suite
func (suite *slotRepositorySuite) TearDownSuite() {
	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(testcontainers.TerminateContainer(suite.container))
	}
}

func (suite *slotRepositorySuite) TestPut() {
	defer suite.deleteAll()

	tests := []struct {
		name      string
		key       string
		values    []string
		wantError string
	}{
		{
			name:   "put new slot: ok",
			key:    gofakeit.UUID(),
			values: []string{randomPayload()},
		},
		{
			name:   "overwrite slot keeps last value: ok",
			key:    gofakeit.UUID(),
			values: []string{randomPayload(), randomPayload(), `[]`},
		},
		{
			name:      "put with empty key: error",
			key:       "",
			values:    []string{`[]`},
			wantError: "key is empty",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			var err error
			for _, value := range tt.values {
				err = suite.repo.Put(ctx, tt.key, []byte(value))
				if err != nil {
					break
				}
			}
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			got, err := suite.repo.Get(ctx, tt.key)
			require.NoError(t, err)
			assert.JSONEq(t, tt.values[len(tt.values)-1], string(got))
		})
	}
}

func (suite *slotRepositorySuite) TestGet() {
	defer suite.deleteAll()

	tests := []struct {
		name      string
		key       string
		setup     string
		wantError error
	}{
		{
			name:  "get existing slot: ok",
			key:   gofakeit.UUID(),
			setup: randomPayload(),
		},
		{
			name:      "get absent slot: not found",
			key:       gofakeit.UUID(),
			wantError: port.ErrSlotNotFound,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			if tt.setup != "" {
				require.NoError(t, suite.repo.Put(ctx, tt.key, []byte(tt.setup)))
			}

			got, err := suite.repo.Get(ctx, tt.key)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.setup, string(got))
		})
	}
}

func (suite *slotRepositorySuite) TestMigrationsUpAgain() {
	t := suite.T()

	for _, connStr := range []string{suite.connStr, strings.Replace(suite.connStr, "postgres://", "postgresql://", 1)} {
		require.NoError(t, migrations.Up(connStr), "applied schema must be a no-op")
	}

	var count int
	err := suite.pool.QueryRow(t.Context(), "SELECT COUNT(*) FROM storage_slots").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func (suite *slotRepositorySuite) TestCartOverPostgres() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	tx, err := suite.pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	repo, err := repository.NewCart(repository.NewSlotWithTx(tx), repository.DefaultCartKey)
	require.NoError(t, err)

	lines := randomLines(3)
	require.NoError(t, repo.Save(ctx, lines))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assertLines(t, lines, got)

	require.NoError(t, tx.Commit(ctx))

	_, err = suite.repo.Get(ctx, repository.DefaultCartKey)
	require.NoError(t, err)
}

func (suite *slotRepositorySuite) deleteAll() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE storage_slots")
	suite.NoError(err)
}

func randomPayload() string {
	return fmt.Sprintf(`[{"id": %d, "nome": %q, "quantidade": %d}]`,
		gofakeit.IntRange(1, 1000), gofakeit.ProductName(), gofakeit.IntRange(1, 9))
}
