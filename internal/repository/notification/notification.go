package notificationRepo

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/ports/persistence"
	ports "github.com/abriesk/psychobotV1/internal/ports/repository"
	"github.com/google/uuid"
)

const notificationColumns = "id, event_id, request_id, recipient, kind, old_status, new_status, actor, proposed_time, message, created_at, sent_at, attempts, last_error"

type Repository struct {
	db  persistence.Persistence
	Log *slog.Logger
}

// New создаёт репозиторий outbox-уведомлений
func New(db persistence.Persistence, log *slog.Logger) ports.INotificationRepo {
	return &Repository{
		db:  db,
		Log: log,
	}
}

// CreateTx кладёт уведомление в outbox в транзакции перехода
func (r *Repository) CreateTx(ctx context.Context, tx persistence.Transaction, n *domain.Notification) error {
	query := fmt.Sprintf(`INSERT INTO notifications (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		notificationColumns)
	err := tx.Exec(ctx, query,
		n.ID,
		n.EventID,
		n.RequestID,
		n.Recipient,
		n.Kind,
		n.OldStatus,
		n.NewStatus,
		n.Actor,
		n.ProposedTime,
		n.Message,
		n.CreatedAt,
		n.SentAt,
		n.Attempts,
		n.LastError)
	if err != nil {
		r.Log.Error("failed to create notification",
			"error", err,
			"request_id", n.RequestID,
			"recipient", n.Recipient)
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListUnsent возвращает недоставленные уведомления в порядке создания.
// Строки с attempts >= maxAttempts не берутся — их доставка отложена до ручного вмешательства.
func (r *Repository) ListUnsent(ctx context.Context, maxAttempts, limit int) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	query := fmt.Sprintf(`SELECT %s FROM notifications
		WHERE sent_at IS NULL AND attempts < $1
		ORDER BY created_at
		LIMIT $2`,
		notificationColumns)
	err := r.db.Select(ctx, &notifications, query, maxAttempts, limit)
	if err != nil {
		r.Log.Error("failed to list unsent notifications", "error", err)
		return nil, fmt.Errorf("failed to list unsent notifications: %w", err)
	}
	return notifications, nil
}

// MarkSent помечает уведомление доставленным
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	query := `UPDATE notifications SET sent_at = $1 WHERE id = $2`
	if err := r.db.Exec(ctx, query, sentAt, id); err != nil {
		r.Log.Error("failed to mark notification sent", "error", err, "notification_id", id)
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return nil
}

// MarkFailed фиксирует неудачную попытку доставки
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	query := `UPDATE notifications SET attempts = attempts + 1, last_error = $1 WHERE id = $2`
	if err := r.db.Exec(ctx, query, lastError, id); err != nil {
		r.Log.Error("failed to mark notification failed", "error", err, "notification_id", id)
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}
	return nil
}
