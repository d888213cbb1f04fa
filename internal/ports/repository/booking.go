package repository

import (
	"context"
	"time"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/ports/persistence"
	"github.com/google/uuid"
)

// IBookingRepo хранилище заявок (проекция журнала переговоров).
// Все переходы состояния выполняются в транзакции: блокирующее чтение строки,
// затем UpdateStateTx с проверкой версии.
type IBookingRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BookingRequest, error)
	ListByProvider(ctx context.Context, providerID int64, status domain.RequestStatus) ([]*domain.BookingRequest, error)
	ListStale(ctx context.Context, status domain.RequestStatus, updatedBefore time.Time) ([]uuid.UUID, error)

	BeginTx(ctx context.Context) (persistence.Transaction, error)
	WithTransaction(ctx context.Context, fn func(context.Context, persistence.Transaction) error) error

	CreateTx(ctx context.Context, tx persistence.Transaction, req *domain.BookingRequest) error
	// GetByIDForUpdateTx читает строку заявки под row-level блокировкой (FOR UPDATE)
	GetByIDForUpdateTx(ctx context.Context, tx persistence.Transaction, id uuid.UUID) (*domain.BookingRequest, error)
	// UpdateStateTx записывает новое состояние, ожидая версию req.Version;
	// при несовпадении возвращает domain.ErrConcurrencyConflict
	UpdateStateTx(ctx context.Context, tx persistence.Transaction, req *domain.BookingRequest) error
}
