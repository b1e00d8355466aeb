package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/price-calculator/services/calculator/internal/domain"
)

// seedCalculations создаёт count расчётов пользователя с возрастающим created_at.
// Возвращает id от старого к новому.
func seedCalculations(t *testing.T, store *MemoryStore, userID int64, count int) []int64 {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	ids := make([]int64, count)
	for i := 0; i < count; i++ {
		id, err := store.Calculations().Add(context.Background(), &domain.Calculation{
			UserID:    userID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Price:     decimal.NewFromInt(int64(i)),
			GoodIDs:   []int64{int64(i)},
		})
		require.NoError(t, err)
		ids[i] = id
	}
	return ids
}

func TestMemoryCalculations_QueryPagination(t *testing.T) {
	store := NewMemoryStore()
	ids := seedCalculations(t, store, 1, 10)
	seedCalculations(t, store, 2, 3)

	tests := []struct {
		name     string
		filter   domain.CalculationFilter
		expected []int64
	}{
		{
			name:     "take=3 skip=2 — с третьего по пятый новейший",
			filter:   domain.CalculationFilter{UserID: 1, Limit: 3, Offset: 2},
			expected: []int64{ids[7], ids[6], ids[5]},
		},
		{
			name:     "take=3 skip=10 — пусто",
			filter:   domain.CalculationFilter{UserID: 1, Limit: 3, Offset: 10},
			expected: []int64{},
		},
		{
			name:     "хвост короче страницы",
			filter:   domain.CalculationFilter{UserID: 1, Limit: 5, Offset: 8},
			expected: []int64{ids[1], ids[0]},
		},
		{
			name:     "нулевой лимит",
			filter:   domain.CalculationFilter{UserID: 1, Limit: 0},
			expected: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calcs, err := store.Calculations().Query(context.Background(), tt.filter)
			require.NoError(t, err)

			got := make([]int64, len(calcs))
			for i, c := range calcs {
				got[i] = c.ID
				assert.Equal(t, int64(1), c.UserID, "нет утечки чужих расчётов")
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMemoryCalculations_QuerySameTimeOrdersByID(t *testing.T) {
	store := NewMemoryStore()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := store.Calculations().Add(context.Background(), &domain.Calculation{UserID: 1, CreatedAt: at})
		require.NoError(t, err)
	}

	calcs, err := store.Calculations().Query(context.Background(), domain.CalculationFilter{UserID: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, calcs, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{calcs[0].ID, calcs[1].ID, calcs[2].ID})
}

func TestMemoryCalculations_GetByIDs(t *testing.T) {
	store := NewMemoryStore()
	mine := seedCalculations(t, store, 1, 2)
	other := seedCalculations(t, store, 2, 1)

	calcs, err := store.Calculations().GetByIDs(context.Background(), []int64{mine[0], other[0], 999})
	require.NoError(t, err)
	require.Len(t, calcs, 2)
	assert.Equal(t, int64(2), calcs[1].UserID, "владелец не фильтруется")
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	ids := seedCalculations(t, store, 1, 2)
	goodIDs, err := store.Goods().Add(ctx, []domain.Good{{UserID: 1}, {UserID: 1}})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, store.Calculations().Delete(ctx, ids))
		require.NoError(t, store.Goods().Delete(ctx, goodIDs))
		require.NoError(t, store.Calculations().DeleteAllFromUser(ctx, 1))
		require.NoError(t, store.Goods().DeleteAllFromUser(ctx, 1))
	}

	goods, calcs := store.Counts()
	assert.Zero(t, goods)
	assert.Zero(t, calcs)
}

func TestMemoryStore_DeleteAllFromUserKeepsOthers(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	seedCalculations(t, store, 1, 3)
	seedCalculations(t, store, 2, 2)
	_, err := store.Goods().Add(ctx, []domain.Good{{UserID: 1}, {UserID: 2}})
	require.NoError(t, err)

	require.NoError(t, store.Calculations().DeleteAllFromUser(ctx, 1))
	require.NoError(t, store.Goods().DeleteAllFromUser(ctx, 1))

	goods, err := store.Goods().Query(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, goods, 1)

	total, calcs := store.Counts()
	assert.Equal(t, 1, total)
	assert.Equal(t, 2, calcs)
}

func TestMemoryStore_ExecuteRollsBack(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	failure := errors.New("сбой записи расчёта")

	err := store.Execute(ctx, func(ctx context.Context) error {
		if _, err := store.Goods().Add(ctx, []domain.Good{{UserID: 1}, {UserID: 1}}); err != nil {
			return err
		}
		return failure
	})

	assert.ErrorIs(t, err, failure)
	goods, calcs := store.Counts()
	assert.Zero(t, goods)
	assert.Zero(t, calcs)

	// Счётчик id тоже откатывается.
	ids, err := store.Goods().Add(ctx, []domain.Good{{UserID: 1}})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}

func TestMemoryStore_ExecuteNested(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Execute(ctx, func(ctx context.Context) error {
		return store.Execute(ctx, func(ctx context.Context) error {
			_, err := store.Goods().Add(ctx, []domain.Good{{UserID: 1}})
			return err
		})
	})

	require.NoError(t, err)
	goods, _ := store.Counts()
	assert.Equal(t, 1, goods)
}

func TestMemoryStore_RespectsCancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Goods().Add(ctx, []domain.Good{{UserID: 1}})
	assert.ErrorIs(t, err, context.Canceled)
}
