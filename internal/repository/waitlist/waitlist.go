package waitlistRepo

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

type waitlistColumns struct {
	TableName  string
	RequestID  string
	EnqueuedAt string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns waitlistColumns
}

// New создаёт репозиторий листа ожидания
func New(db persistence.Persistence, log *slog.Logger) ports.IWaitlistRepo {
	cols := waitlistColumns{
		TableName:  "waitlist_entries",
		RequestID:  "request_id",
		EnqueuedAt: "enqueued_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

// EnqueueTx ставит заявку в конец очереди
func (r *Repository) EnqueueTx(ctx context.Context, tx persistence.Transaction, requestID uuid.UUID, enqueuedAt time.Time) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`,
		r.columns.TableName,
		r.columns.RequestID,
		r.columns.EnqueuedAt)
	err := tx.Exec(ctx, query, requestID, enqueuedAt)
	if err != nil {
		r.Log.Error("failed to enqueue waitlist entry",
			"error", err,
			"request_id", requestID)
		return fmt.Errorf("failed to enqueue waitlist entry: %w", err)
	}
	r.Log.Debug("waitlist entry enqueued", "request_id", requestID)
	return nil
}

// DeleteTx снимает заявку с очереди; false — записи уже не было
func (r *Repository) DeleteTx(ctx context.Context, tx persistence.Transaction, requestID uuid.UUID) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		r.columns.TableName,
		r.columns.RequestID)
	affected, err := tx.ExecWithResult(ctx, query, requestID)
	if err != nil {
		r.Log.Error("failed to delete waitlist entry",
			"error", err,
			"request_id", requestID)
		return false, fmt.Errorf("failed to delete waitlist entry: %w", err)
	}
	return affected > 0, nil
}

// ListFIFO снимок очереди в порядке постановки
func (r *Repository) ListFIFO(ctx context.Context) ([]*domain.WaitlistEntry, error) {
	var entries []*domain.WaitlistEntry
	query := fmt.Sprintf(`SELECT %s, %s FROM %s ORDER BY %s`,
		r.columns.RequestID,
		r.columns.EnqueuedAt,
		r.columns.TableName,
		r.columns.EnqueuedAt)
	err := r.db.Select(ctx, &entries, query)
	if err != nil {
		r.Log.Error("failed to list waitlist entries", "error", err)
		return nil, fmt.Errorf("failed to list waitlist entries: %w", err)
	}
	return entries, nil
}
