package negotiationRepo

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/ports/persistence"
	ports "github.com/abriesk/psychobotV1/internal/ports/repository"
	"github.com/google/uuid"
)

type eventColumns struct {
	TableName  string
	ID         string
	RequestID  string
	Actor      string
	Action     string
	TimeValue  string
	OccurredAt string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns eventColumns
}

// New создаёт репозиторий журнала переговоров
func New(db persistence.Persistence, log *slog.Logger) ports.INegotiationRepo {
	cols := eventColumns{
		TableName:  "negotiation_events",
		ID:         "id",
		RequestID:  "request_id",
		Actor:      "actor",
		Action:     "action",
		TimeValue:  "time_value",
		OccurredAt: "occurred_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.RequestID,
		r.columns.Actor,
		r.columns.Action,
		r.columns.TimeValue,
		r.columns.OccurredAt)
}

// AppendTx дописывает событие в журнал. UPDATE/DELETE по этой таблице не бывает.
func (r *Repository) AppendTx(ctx context.Context, tx persistence.Transaction, event *domain.NegotiationEvent) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6)`,
		r.columns.TableName,
		r.allColumns())
	err := tx.Exec(ctx, query,
		event.ID,
		event.RequestID,
		event.Actor,
		event.Action,
		event.TimeValue,
		event.OccurredAt)
	if err != nil {
		r.Log.Error("failed to append negotiation event",
			"error", err,
			"request_id", event.RequestID,
			"action", event.Action)
		return fmt.Errorf("failed to append negotiation event: %w", err)
	}
	r.Log.Debug("negotiation event appended",
		"event_id", event.ID,
		"request_id", event.RequestID,
		"action", event.Action)
	return nil
}

// ListByRequest возвращает события заявки в порядке возникновения
func (r *Repository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*domain.NegotiationEvent, error) {
	var events []*domain.NegotiationEvent
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s, %s`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.RequestID,
		r.columns.OccurredAt,
		r.columns.ID)
	err := r.db.Select(ctx, &events, query, requestID)
	if err != nil {
		r.Log.Error("failed to list negotiation events",
			"error", err,
			"request_id", requestID)
		return nil, fmt.Errorf("failed to list negotiation events: %w", err)
	}
	return events, nil
}
