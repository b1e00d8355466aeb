// Package transaction описывает транзакционную границу бизнес-операции.
// Активная транзакция передаётся через context, репозитории берут её
// из контекста функцией DB.
package transaction

import "context"

// Scope выполняет функцию внутри транзакции.
// Транзакция фиксируется, если fn вернула nil, и откатывается при ошибке
// или панике. Контекст, переданный в fn, содержит транзакцию.
// Повторный вызов Execute с таким контекстом выполняется в той же транзакции.
type Scope interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// ExecuteWithResult выполняет fn в транзакции и возвращает её результат.
func ExecuteWithResult[T any](ctx context.Context, scope Scope, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := scope.Execute(ctx, func(ctx context.Context) error {
		var fnErr error
		result, fnErr = fn(ctx)
		return fnErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
