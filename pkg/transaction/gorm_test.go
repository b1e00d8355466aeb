package transaction

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB создаёт GORM поверх sqlmock.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Ошибка создания sqlmock")
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "Ошибка инициализации GORM")

	return gormDB, mock
}

var deleteGoods = regexp.QuoteMeta("DELETE FROM goods WHERE id = ?")

func execDelete(ctx context.Context, fallback *gorm.DB, id int64) error {
	return DB(ctx, fallback).Exec("DELETE FROM goods WHERE id = ?", id).Error
}

func TestGormScope_Commit(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	scope := NewReadCommittedScope(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(deleteGoods).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := scope.Execute(context.Background(), func(ctx context.Context) error {
		_, ok := TxFromContext(ctx)
		assert.True(t, ok, "транзакция должна быть в контексте")
		return execDelete(ctx, gormDB, 1)
	})

	require.NoError(t, err)
	assert.Equal(t, sql.LevelReadCommitted, scope.Isolation())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormScope_RollbackOnError(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	scope := NewReadCommittedScope(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(deleteGoods).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	fnErr := errors.New("ошибка бизнес-логики")
	err := scope.Execute(context.Background(), func(ctx context.Context) error {
		if err := execDelete(ctx, gormDB, 1); err != nil {
			return err
		}
		return fnErr
	})

	assert.ErrorIs(t, err, fnErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormScope_RollbackOnPanic(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	scope := NewReadCommittedScope(gormDB)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = scope.Execute(context.Background(), func(ctx context.Context) error {
			panic("сбой")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormScope_NestedJoinsOuterTransaction(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	scope := NewReadCommittedScope(gormDB)

	// Один BEGIN и один COMMIT на обе операции.
	mock.ExpectBegin()
	mock.ExpectExec(deleteGoods).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteGoods).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := scope.Execute(context.Background(), func(ctx context.Context) error {
		if err := scope.Execute(ctx, func(ctx context.Context) error {
			return execDelete(ctx, gormDB, 1)
		}); err != nil {
			return err
		}
		return scope.Execute(ctx, func(ctx context.Context) error {
			return execDelete(ctx, gormDB, 2)
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_WithoutTransactionUsesFallback(t *testing.T) {
	gormDB, mock := setupMockDB(t)

	mock.ExpectExec(deleteGoods).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, execDelete(context.Background(), gormDB, 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteWithResult(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	scope := NewReadCommittedScope(gormDB)

	t.Run("успешный результат", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectCommit()

		id, err := ExecuteWithResult(context.Background(), scope, func(ctx context.Context) (int64, error) {
			return 42, nil
		})

		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
	})

	t.Run("ошибка обнуляет результат", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		id, err := ExecuteWithResult(context.Background(), scope, func(ctx context.Context) (int64, error) {
			return 42, errors.New("сбой")
		})

		assert.Error(t, err)
		assert.Zero(t, id)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
