// Package service содержит бизнес-логику калькулятора доставки.
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"example.com/price-calculator/pkg/logger"
	"example.com/price-calculator/pkg/metrics"
	"example.com/price-calculator/pkg/outbox"
	"example.com/price-calculator/pkg/transaction"
	"example.com/price-calculator/services/calculator/internal/domain"
	"example.com/price-calculator/services/calculator/internal/pricing"
	"example.com/price-calculator/services/calculator/internal/repository"
)

// EventRecorder записывает доменное событие в текущей транзакции.
type EventRecorder interface {
	Record(ctx context.Context, aggregateID, eventType string, payload any) error
}

// CalculationService — операции над товарами и расчётами.
// Все изменения выполняются в транзакции Scope; если ctx уже содержит
// транзакцию, операция присоединяется к ней.
type CalculationService interface {
	// SaveCalculation считает цену, сохраняет товары и расчёт атомарно.
	// Возвращает id расчёта.
	SaveCalculation(ctx context.Context, userID int64, goods []domain.Good) (int64, error)

	CalculatePriceByVolume(goods []domain.Good) (decimal.Decimal, float64)
	CalculatePriceByWeight(goods []domain.Good) (decimal.Decimal, float64)

	// QueryCalculations возвращает страницу истории пользователя, новые первыми.
	QueryCalculations(ctx context.Context, filter domain.CalculationFilter) ([]domain.Calculation, error)

	// QueryGoods возвращает товары пользователя.
	QueryGoods(ctx context.Context, userID int64) ([]domain.Good, error)

	// GetCalculations возвращает найденные расчёты без проверки владельца.
	GetCalculations(ctx context.Context, ids []int64) ([]domain.Calculation, error)

	DeleteCalculations(ctx context.Context, ids []int64) error
	DeleteGoods(ctx context.Context, ids []int64) error
	DeleteAllCalculationsFromUser(ctx context.Context, userID int64) error
	DeleteAllGoodsFromUser(ctx context.Context, userID int64) error
}

type calculationService struct {
	goods        repository.GoodsRepository
	calculations repository.CalculationsRepository
	scope        transaction.Scope
	engine       pricing.Engine
	events       EventRecorder
	now          func() time.Time
}

// Option настраивает calculationService.
type Option func(*calculationService)

// WithEngine задаёт коэффициенты цены.
func WithEngine(engine pricing.Engine) Option {
	return func(s *calculationService) {
		s.engine = engine
	}
}

// WithEventRecorder включает публикацию доменных событий.
func WithEventRecorder(events EventRecorder) Option {
	return func(s *calculationService) {
		s.events = events
	}
}

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *calculationService) {
		s.now = now
	}
}

// NewCalculationService создаёт сервис. По умолчанию события не публикуются.
func NewCalculationService(
	goods repository.GoodsRepository,
	calculations repository.CalculationsRepository,
	scope transaction.Scope,
	opts ...Option,
) CalculationService {
	s := &calculationService{
		goods:        goods,
		calculations: calculations,
		scope:        scope,
		engine:       pricing.DefaultEngine(),
		events:       outbox.NopRecorder{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *calculationService) SaveCalculation(ctx context.Context, userID int64, goods []domain.Good) (int64, error) {
	log := logger.FromContext(ctx)

	quote := s.engine.Quote(goods)

	owned := make([]domain.Good, len(goods))
	for i, g := range goods {
		g.ID = 0
		g.UserID = userID
		owned[i] = g
	}

	calculationID, err := transaction.ExecuteWithResult(ctx, s.scope, func(ctx context.Context) (int64, error) {
		goodIDs, err := s.goods.Add(ctx, owned)
		if err != nil {
			return 0, fmt.Errorf("ошибка сохранения товаров: %w", err)
		}

		calculation := &domain.Calculation{
			UserID:      userID,
			CreatedAt:   s.now().UTC(),
			TotalVolume: quote.Volume,
			TotalWeight: quote.Weight,
			Price:       quote.Price,
			GoodIDs:     goodIDs,
		}

		id, err := s.calculations.Add(ctx, calculation)
		if err != nil {
			return 0, fmt.Errorf("ошибка сохранения расчёта: %w", err)
		}

		event := domain.CalculationCreated{
			CalculationID: id,
			UserID:        userID,
			GoodIDs:       goodIDs,
			Price:         quote.Price,
		}
		if err := s.events.Record(ctx, strconv.FormatInt(id, 10), domain.EventCalculationCreated, event); err != nil {
			return 0, err
		}

		return id, nil
	})
	if err != nil {
		log.Error().
			Err(err).
			Int64("user_id", userID).
			Int("goods_count", len(goods)).
			Msg("Ошибка сохранения расчёта")
		return 0, err
	}

	metrics.RecordCalculation(quote.Price.InexactFloat64())

	log.Info().
		Int64("calculation_id", calculationID).
		Int64("user_id", userID).
		Int("goods_count", len(goods)).
		Str("price", quote.Price.String()).
		Msg("Расчёт сохранён")

	return calculationID, nil
}

func (s *calculationService) CalculatePriceByVolume(goods []domain.Good) (decimal.Decimal, float64) {
	return s.engine.PriceByVolume(goods)
}

func (s *calculationService) CalculatePriceByWeight(goods []domain.Good) (decimal.Decimal, float64) {
	return s.engine.PriceByWeight(goods)
}

func (s *calculationService) QueryCalculations(ctx context.Context, filter domain.CalculationFilter) ([]domain.Calculation, error) {
	calculations, err := s.calculations.Query(ctx, filter)
	if err != nil {
		logger.Ctx(ctx).Error().
			Err(err).
			Int64("user_id", filter.UserID).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("Ошибка получения истории расчётов")
		return nil, fmt.Errorf("ошибка получения истории расчётов: %w", err)
	}
	return calculations, nil
}

func (s *calculationService) QueryGoods(ctx context.Context, userID int64) ([]domain.Good, error) {
	goods, err := s.goods.Query(ctx, userID)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("Ошибка получения товаров")
		return nil, fmt.Errorf("ошибка получения товаров: %w", err)
	}
	return goods, nil
}

func (s *calculationService) GetCalculations(ctx context.Context, ids []int64) ([]domain.Calculation, error) {
	if len(ids) == 0 {
		return []domain.Calculation{}, nil
	}

	calculations, err := s.calculations.GetByIDs(ctx, ids)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Ints64("calculation_ids", ids).Msg("Ошибка получения расчётов")
		return nil, fmt.Errorf("ошибка получения расчётов: %w", err)
	}
	return calculations, nil
}

// =============================================================================
// Удаление
// =============================================================================

func (s *calculationService) DeleteCalculations(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	err := s.scope.Execute(ctx, func(ctx context.Context) error {
		if err := s.calculations.Delete(ctx, ids); err != nil {
			return fmt.Errorf("ошибка удаления расчётов: %w", err)
		}
		// Ключ события — первый id, полный список в payload.
		event := domain.CalculationsDeleted{CalculationIDs: ids}
		return s.events.Record(ctx, strconv.FormatInt(ids[0], 10), domain.EventCalculationsDeleted, event)
	})
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Ints64("calculation_ids", ids).Msg("Ошибка удаления расчётов")
		return err
	}

	logger.Ctx(ctx).Debug().Ints64("calculation_ids", ids).Msg("Расчёты удалены")
	return nil
}

func (s *calculationService) DeleteGoods(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	err := s.scope.Execute(ctx, func(ctx context.Context) error {
		return s.goods.Delete(ctx, ids)
	})
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Ints64("good_ids", ids).Msg("Ошибка удаления товаров")
		return fmt.Errorf("ошибка удаления товаров: %w", err)
	}
	return nil
}

func (s *calculationService) DeleteAllCalculationsFromUser(ctx context.Context, userID int64) error {
	err := s.scope.Execute(ctx, func(ctx context.Context) error {
		if err := s.calculations.DeleteAllFromUser(ctx, userID); err != nil {
			return fmt.Errorf("ошибка удаления расчётов пользователя: %w", err)
		}
		event := domain.HistoryCleared{UserID: userID}
		return s.events.Record(ctx, strconv.FormatInt(userID, 10), domain.EventHistoryCleared, event)
	})
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("Ошибка удаления расчётов пользователя")
		return err
	}
	return nil
}

func (s *calculationService) DeleteAllGoodsFromUser(ctx context.Context, userID int64) error {
	err := s.scope.Execute(ctx, func(ctx context.Context) error {
		return s.goods.DeleteAllFromUser(ctx, userID)
	})
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("Ошибка удаления товаров пользователя")
		return fmt.Errorf("ошибка удаления товаров пользователя: %w", err)
	}
	return nil
}
