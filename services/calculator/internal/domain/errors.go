package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Доменные ошибки калькулятора. Проверяются через errors.Is.
var (
	// ErrCalculationsNotFound — часть запрошенных расчётов отсутствует в БД.
	ErrCalculationsNotFound = errors.New("часть расчётов не найдена")

	// ErrCalculationsForbidden — часть расчётов принадлежит другому пользователю.
	ErrCalculationsForbidden = errors.New("расчёты принадлежат другому пользователю")
)

// NotFoundError сообщает, какие идентификаторы расчётов не найдены.
type NotFoundError struct {
	IDs []int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s; wrong_calculation_ids: %s", ErrCalculationsNotFound, JoinIDs(e.IDs))
}

func (e *NotFoundError) Unwrap() error {
	return ErrCalculationsNotFound
}

// ForbiddenError сообщает, каким пользователям принадлежат чужие расчёты.
type ForbiddenError struct {
	UserID   int64
	OwnerIDs []int64
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s; user_id: %d; wrong_user_ids: %s", ErrCalculationsForbidden, e.UserID, JoinIDs(e.OwnerIDs))
}

func (e *ForbiddenError) Unwrap() error {
	return ErrCalculationsForbidden
}

// JoinIDs склеивает идентификаторы через запятую.
func JoinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
