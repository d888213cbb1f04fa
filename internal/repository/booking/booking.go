package bookingRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/ports/persistence"
	ports "github.com/abriesk/psychobotV1/internal/ports/repository"
	"github.com/google/uuid"
)

type bookingColumns struct {
	TableName    string
	ID           string
	RequesterID  string
	ProviderID   string
	SessionKind  string
	Format       string
	Timezone     string
	Problem      string
	Status       string
	DesiredTime  string
	ProposedTime string
	ProposedBy   string
	Version      string
	CreatedAt    string
	UpdatedAt    string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns bookingColumns
}

// New создаёт репозиторий заявок
func New(db persistence.Persistence, log *slog.Logger) ports.IBookingRepo {
	cols := bookingColumns{
		TableName:    "booking_requests",
		ID:           "id",
		RequesterID:  "requester_id",
		ProviderID:   "provider_id",
		SessionKind:  "session_kind",
		Format:       "format",
		Timezone:     "timezone",
		Problem:      "problem",
		Status:       "status",
		DesiredTime:  "desired_time",
		ProposedTime: "proposed_time",
		ProposedBy:   "proposed_by",
		Version:      "version",
		CreatedAt:    "created_at",
		UpdatedAt:    "updated_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

// allColumns возвращает строку со всеми колонками
func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.RequesterID,
		r.columns.ProviderID,
		r.columns.SessionKind,
		r.columns.Format,
		r.columns.Timezone,
		r.columns.Problem,
		r.columns.Status,
		r.columns.DesiredTime,
		r.columns.ProposedTime,
		r.columns.ProposedBy,
		r.columns.Version,
		r.columns.CreatedAt,
		r.columns.UpdatedAt)
}

// GetByID получает заявку по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BookingRequest, error) {
	var req domain.BookingRequest
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID)
	err := r.db.Get(ctx, &req, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("booking request not found", "request_id", id)
			return nil, domain.ErrNotFound
		}
		r.Log.Error("failed to get booking request",
			"error", err,
			"request_id", id)
		return nil, fmt.Errorf("failed to get booking request: %w", err)
	}
	return &req, nil
}

// ListByProvider получает заявки провайдера в указанном статусе
func (r *Repository) ListByProvider(ctx context.Context, providerID int64, status domain.RequestStatus) ([]*domain.BookingRequest, error) {
	var requests []*domain.BookingRequest
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 ORDER BY %s DESC`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ProviderID,
		r.columns.Status,
		r.columns.CreatedAt)
	err := r.db.Select(ctx, &requests, query, providerID, status)
	if err != nil {
		r.Log.Error("failed to list booking requests by provider",
			"error", err,
			"provider_id", providerID,
			"status", status)
		return nil, fmt.Errorf("failed to list booking requests by provider: %w", err)
	}
	return requests, nil
}

// ListStale возвращает id заявок в указанном статусе без активности после updatedBefore
func (r *Repository) ListStale(ctx context.Context, status domain.RequestStatus, updatedBefore time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s < $2 ORDER BY %s`,
		r.columns.ID,
		r.columns.TableName,
		r.columns.Status,
		r.columns.UpdatedAt,
		r.columns.UpdatedAt)
	err := r.db.Select(ctx, &ids, query, status, updatedBefore)
	if err != nil {
		r.Log.Error("failed to list stale booking requests",
			"error", err,
			"status", status)
		return nil, fmt.Errorf("failed to list stale booking requests: %w", err)
	}
	return ids, nil
}

// BeginTx явно начинает транзакцию
func (r *Repository) BeginTx(ctx context.Context) (persistence.Transaction, error) {
	return r.db.BeginTx(ctx)
}

// WithTransaction выполняет функцию в транзакции с автоматическим commit/rollback
func (r *Repository) WithTransaction(ctx context.Context, fn func(context.Context, persistence.Transaction) error) error {
	return r.db.WithTransaction(ctx, fn)
}

// CreateTx создаёт заявку в транзакции
func (r *Repository) CreateTx(ctx context.Context, tx persistence.Transaction, req *domain.BookingRequest) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		r.columns.TableName,
		r.allColumns())
	err := tx.Exec(ctx, query,
		req.ID,
		req.RequesterID,
		req.ProviderID,
		req.SessionKind,
		req.Format,
		req.Timezone,
		req.Problem,
		req.Status,
		req.DesiredTime,
		req.ProposedTime,
		req.ProposedBy,
		req.Version,
		req.CreatedAt,
		req.UpdatedAt)
	if err != nil {
		r.Log.Error("failed to create booking request",
			"error", err,
			"request_id", req.ID,
			"requester_id", req.RequesterID)
		return fmt.Errorf("failed to create booking request: %w", err)
	}
	r.Log.Debug("booking request created",
		"request_id", req.ID,
		"status", req.Status)
	return nil
}

// GetByIDForUpdateTx читает заявку под row-level блокировкой.
// Конкурирующие действия над одной заявкой встают в очередь на этой строке.
func (r *Repository) GetByIDForUpdateTx(ctx context.Context, tx persistence.Transaction, id uuid.UUID) (*domain.BookingRequest, error) {
	var req domain.BookingRequest
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID)
	err := tx.Get(ctx, &req, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("booking request not found in transaction", "request_id", id)
			return nil, domain.ErrNotFound
		}
		r.Log.Error("failed to lock booking request",
			"error", err,
			"request_id", id)
		return nil, fmt.Errorf("failed to lock booking request: %w", err)
	}
	return &req, nil
}

// UpdateStateTx записывает новое состояние заявки, ожидая версию req.Version.
// Несовпадение версии означает вмешательство конкурирующей записи.
func (r *Repository) UpdateStateTx(ctx context.Context, tx persistence.Transaction, req *domain.BookingRequest) error {
	query := fmt.Sprintf(`UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = %s + 1, %s = $4
		WHERE %s = $5 AND %s = $6`,
		r.columns.TableName,
		r.columns.Status,
		r.columns.ProposedTime,
		r.columns.ProposedBy,
		r.columns.Version, r.columns.Version,
		r.columns.UpdatedAt,
		r.columns.ID,
		r.columns.Version)
	affected, err := tx.ExecWithResult(ctx, query,
		req.Status,
		req.ProposedTime,
		req.ProposedBy,
		req.UpdatedAt,
		req.ID,
		req.Version)
	if err != nil {
		r.Log.Error("failed to update booking request state",
			"error", err,
			"request_id", req.ID)
		return fmt.Errorf("failed to update booking request state: %w", err)
	}
	if affected == 0 {
		r.Log.Warn("booking request version conflict",
			"request_id", req.ID,
			"expected_version", req.Version)
		return domain.ErrConcurrencyConflict
	}
	req.Version++
	return nil
}
