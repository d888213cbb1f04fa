package repository

import (
	"context"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/ports/persistence"
	"github.com/google/uuid"
)

// INegotiationRepo append-only журнал переговоров. Записи никогда не меняются
// и не удаляются; чтение — строго в порядке occurred_at.
type INegotiationRepo interface {
	AppendTx(ctx context.Context, tx persistence.Transaction, event *domain.NegotiationEvent) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*domain.NegotiationEvent, error)
}
