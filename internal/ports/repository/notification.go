package repository

import (
	"context"
	"time"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/ports/persistence"
	"github.com/google/uuid"
)

// INotificationRepo transactional outbox исходящих уведомлений.
// Строки создаются в транзакции перехода; фоновая джоба доставляет их
// и помечает sent_at.
type INotificationRepo interface {
	CreateTx(ctx context.Context, tx persistence.Transaction, n *domain.Notification) error
	ListUnsent(ctx context.Context, maxAttempts, limit int) ([]*domain.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
}
