package repository

import (
	"context"
	"time"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/ports/persistence"
	"github.com/google/uuid"
)

// IWaitlistRepo очередь заявок, ожидающих включения доступности (FIFO по enqueued_at)
type IWaitlistRepo interface {
	EnqueueTx(ctx context.Context, tx persistence.Transaction, requestID uuid.UUID, enqueuedAt time.Time) error
	// DeleteTx снимает заявку с очереди; false — записи уже не было
	DeleteTx(ctx context.Context, tx persistence.Transaction, requestID uuid.UUID) (bool, error)
	// ListFIFO снимок очереди в порядке постановки
	ListFIFO(ctx context.Context) ([]*domain.WaitlistEntry, error)
}
