// Package circuitbreaker защищает вызовы внешних систем от каскадных сбоев.
// Используется Kafka producer'ом: пока брокеры недоступны, отправка
// отклоняется сразу, без ожидания таймаута записи.
//
// Состояния:
//   - Closed: вызовы проходят
//   - Open: вызовы отклоняются с ErrOpen
//   - Half-Open: пропускается MaxRequests пробных вызовов
package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"example.com/price-calculator/pkg/logger"
)

// ErrOpen возвращается, когда breaker отклонил вызов.
var ErrOpen = errors.New("circuit breaker открыт")

// Settings — настройки Breaker.
type Settings struct {
	MaxRequests  uint32        // пробных вызовов в Half-Open
	Interval     time.Duration // сброс счётчиков в Closed
	Timeout      time.Duration // время в Open до Half-Open
	FailureRatio float64       // доля ошибок для перехода в Open
	MinRequests  uint32        // минимум вызовов для расчёта доли

	// IsFailure решает, считать ли ошибку сбоем. По умолчанию отмена
	// контекста вызывающей стороной сбоем не считается.
	IsFailure func(err error) bool
}

// DefaultSettings возвращает настройки по умолчанию.
func DefaultSettings() Settings {
	return Settings{
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
		IsFailure:    isInfrastructureFailure,
	}
}

func isInfrastructureFailure(err error) bool {
	return !errors.Is(err, context.Canceled)
}

// Breaker — обёртка над gobreaker с логированием смены состояний.
type Breaker struct {
	cb        *gobreaker.CircuitBreaker[struct{}]
	name      string
	isFailure func(error) bool
}

// New создаёт Breaker с настройками по умолчанию.
func New(name string) *Breaker {
	return NewWithSettings(name, DefaultSettings())
}

func NewWithSettings(name string, s Settings) *Breaker {
	isFailure := s.IsFailure
	if isFailure == nil {
		isFailure = isInfrastructureFailure
	}

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log := logger.With().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Logger()

			switch to {
			case gobreaker.StateOpen:
				log.Warn().Msg("Circuit Breaker открыт")
			case gobreaker.StateHalfOpen:
				log.Info().Msg("Circuit Breaker полуоткрыт, пробуем восстановить")
			case gobreaker.StateClosed:
				log.Info().Msg("Circuit Breaker закрыт")
			}
		},
	})

	return &Breaker{cb: cb, name: name, isFailure: isFailure}
}

// Execute выполняет fn через breaker и возвращает её ошибку как есть.
// Отклонённый вызов возвращает ошибку, оборачивающую ErrOpen.
func (b *Breaker) Execute(fn func() error) error {
	var callErr error

	_, err := b.cb.Execute(func() (struct{}, error) {
		callErr = fn()
		if callErr != nil && b.isFailure(callErr) {
			return struct{}{}, callErr
		}
		return struct{}{}, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrOpen, b.name)
	}
	return callErr
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) Name() string {
	return b.name
}
