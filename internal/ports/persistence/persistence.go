package persistence

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Executor общие операции чтения/записи: одинаковы для подключения и транзакции
type Executor interface {
	Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Exec(ctx context.Context, query string, args ...interface{}) error
	ExecWithResult(ctx context.Context, query string, args ...interface{}) (int64, error)
	NamedExec(ctx context.Context, query string, arg interface{}) error
	QueryRow(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

// Persistence подключение к хранилищу; умеет открывать транзакции
type Persistence interface {
	Executor
	BeginTx(ctx context.Context) (Transaction, error)
	WithTransaction(ctx context.Context, fn func(context.Context, Transaction) error) error
}

// Transaction открытая транзакция
type Transaction interface {
	Executor
	Commit() error
	Rollback() error
}
