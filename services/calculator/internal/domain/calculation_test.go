package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGood_Volume(t *testing.T) {
	g := Good{Height: 2, Length: 3, Width: 4}
	assert.True(t, decimal.NewFromInt(24).Equal(g.Volume()))

	small := Good{Height: 0.1, Length: 0.2, Width: 0.3}
	assert.Equal(t, "0.006", small.Volume().String())
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []int64{1, 2, 5}, UniqueIDs([]int64{5, 1, 2, 5, 1}))
	assert.Equal(t, []int64{}, UniqueIDs(nil))
}

func TestGoodIDsOf(t *testing.T) {
	calcs := []Calculation{
		{ID: 1, GoodIDs: []int64{3, 1}},
		{ID: 2, GoodIDs: []int64{1, 7}},
		{ID: 3},
	}

	assert.Equal(t, []int64{1, 3, 7}, GoodIDsOf(calcs))
}

func TestMissingIDs(t *testing.T) {
	found := []Calculation{{ID: 1}, {ID: 3}}

	assert.Equal(t, []int64{2, 4}, MissingIDs([]int64{4, 1, 2, 3, 2}, found))
	assert.Empty(t, MissingIDs([]int64{1, 3}, found))
}

func TestForeignOwners(t *testing.T) {
	calcs := []Calculation{
		{ID: 1, UserID: 10},
		{ID: 2, UserID: 20},
		{ID: 3, UserID: 30},
		{ID: 4, UserID: 20},
	}

	assert.Equal(t, []int64{20, 30}, ForeignOwners(10, calcs))
	assert.Empty(t, ForeignOwners(10, calcs[:1]))
}

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("обёртка: %w", &NotFoundError{IDs: []int64{4, 9}})

	assert.True(t, errors.Is(err, ErrCalculationsNotFound))
	assert.False(t, errors.Is(err, ErrCalculationsForbidden))

	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.Equal(t, []int64{4, 9}, nf.IDs)
	assert.Contains(t, err.Error(), "wrong_calculation_ids: 4,9")
}

func TestForbiddenError(t *testing.T) {
	err := error(&ForbiddenError{UserID: 1, OwnerIDs: []int64{2, 3}})

	assert.True(t, errors.Is(err, ErrCalculationsForbidden))

	var fe *ForbiddenError
	assert.True(t, errors.As(err, &fe))
	assert.Equal(t, []int64{2, 3}, fe.OwnerIDs)
	assert.Contains(t, err.Error(), "wrong_user_ids: 2,3")
}
