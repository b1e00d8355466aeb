// Package testutil содержит общие моки калькулятора для unit-тестов.
package testutil

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"example.com/price-calculator/services/calculator/internal/domain"
)

// =============================================================================
// MockGoodsRepository — мок repository.GoodsRepository
// =============================================================================

type MockGoodsRepository struct {
	mock.Mock
}

func (m *MockGoodsRepository) Add(ctx context.Context, goods []domain.Good) ([]int64, error) {
	args := m.Called(ctx, goods)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockGoodsRepository) Query(ctx context.Context, userID int64) ([]domain.Good, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Good), args.Error(1)
}

func (m *MockGoodsRepository) Delete(ctx context.Context, ids []int64) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *MockGoodsRepository) DeleteAllFromUser(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

// =============================================================================
// MockCalculationsRepository — мок repository.CalculationsRepository
// =============================================================================

type MockCalculationsRepository struct {
	mock.Mock
}

func (m *MockCalculationsRepository) Add(ctx context.Context, calculation *domain.Calculation) (int64, error) {
	args := m.Called(ctx, calculation)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCalculationsRepository) Query(ctx context.Context, filter domain.CalculationFilter) ([]domain.Calculation, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Calculation), args.Error(1)
}

func (m *MockCalculationsRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Calculation, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Calculation), args.Error(1)
}

func (m *MockCalculationsRepository) Delete(ctx context.Context, ids []int64) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *MockCalculationsRepository) DeleteAllFromUser(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

// =============================================================================
// MockCalculationService — мок service.CalculationService
// =============================================================================

type MockCalculationService struct {
	mock.Mock
}

func (m *MockCalculationService) SaveCalculation(ctx context.Context, userID int64, goods []domain.Good) (int64, error) {
	args := m.Called(ctx, userID, goods)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCalculationService) CalculatePriceByVolume(goods []domain.Good) (decimal.Decimal, float64) {
	args := m.Called(goods)
	return args.Get(0).(decimal.Decimal), args.Get(1).(float64)
}

func (m *MockCalculationService) CalculatePriceByWeight(goods []domain.Good) (decimal.Decimal, float64) {
	args := m.Called(goods)
	return args.Get(0).(decimal.Decimal), args.Get(1).(float64)
}

func (m *MockCalculationService) QueryCalculations(ctx context.Context, filter domain.CalculationFilter) ([]domain.Calculation, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Calculation), args.Error(1)
}

func (m *MockCalculationService) QueryGoods(ctx context.Context, userID int64) ([]domain.Good, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Good), args.Error(1)
}

func (m *MockCalculationService) GetCalculations(ctx context.Context, ids []int64) ([]domain.Calculation, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Calculation), args.Error(1)
}

func (m *MockCalculationService) DeleteCalculations(ctx context.Context, ids []int64) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *MockCalculationService) DeleteGoods(ctx context.Context, ids []int64) error {
	return m.Called(ctx, ids).Error(0)
}

func (m *MockCalculationService) DeleteAllCalculationsFromUser(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockCalculationService) DeleteAllGoodsFromUser(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

// =============================================================================
// MockEventRecorder — мок service.EventRecorder
// =============================================================================

type MockEventRecorder struct {
	mock.Mock
}

func (m *MockEventRecorder) Record(ctx context.Context, aggregateID, eventType string, payload any) error {
	return m.Called(ctx, aggregateID, eventType, payload).Error(0)
}
