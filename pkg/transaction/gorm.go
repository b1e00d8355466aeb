package transaction

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type txKey struct{}

// WithTx кладёт GORM транзакцию в контекст.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext извлекает GORM транзакцию из контекста.
func TxFromContext(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(txKey{}).(*gorm.DB)
	return tx, ok && tx != nil
}

// DB возвращает транзакцию из контекста, а если её нет — fallback,
// привязанный к ctx. Репозитории вызывают DB в начале каждого метода.
func DB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return fallback.WithContext(ctx)
}

// GormScope — Scope поверх gorm.DB с фиксированным уровнем изоляции.
type GormScope struct {
	db        *gorm.DB
	isolation sql.IsolationLevel
}

// NewGormScope создаёт Scope с указанным уровнем изоляции.
func NewGormScope(db *gorm.DB, isolation sql.IsolationLevel) *GormScope {
	return &GormScope{db: db, isolation: isolation}
}

// NewReadCommittedScope создаёт Scope с изоляцией READ COMMITTED.
func NewReadCommittedScope(db *gorm.DB) *GormScope {
	return NewGormScope(db, sql.LevelReadCommitted)
}

// Isolation возвращает уровень изоляции транзакций этого Scope.
func (s *GormScope) Isolation() sql.IsolationLevel {
	return s.isolation
}

// Execute открывает транзакцию или присоединяется к уже открытой.
// gorm откатывает транзакцию при ошибке fn и при панике.
func (s *GormScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	}, &sql.TxOptions{Isolation: s.isolation})
}
