package settingsRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"log/slog"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/ports/persistence"
	ports "github.com/abriesk/psychobotV1/internal/ports/repository"
)

// settingsRowID настройки провайдера живут в единственной строке
const settingsRowID = 1

type Repository struct {
	db  persistence.Persistence
	Log *slog.Logger
}

// New создаёт репозиторий настроек
func New(db persistence.Persistence, log *slog.Logger) ports.ISettingsRepo {
	return &Repository{
		db:  db,
		Log: log,
	}
}

const settingsColumns = "id, availability_on, individual_price, couple_price, negotiation_ttl_hours, updated_at"

// Get читает строку настроек
func (r *Repository) Get(ctx context.Context) (*domain.Settings, error) {
	var s domain.Settings
	query := fmt.Sprintf(`SELECT %s FROM settings WHERE id = $1`, settingsColumns)
	if err := r.db.Get(ctx, &s, query, settingsRowID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("settings row is missing: %w", err)
		}
		r.Log.Error("failed to get settings", "error", err)
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &s, nil
}

// GetTx читает строку настроек в транзакции
func (r *Repository) GetTx(ctx context.Context, tx persistence.Transaction) (*domain.Settings, error) {
	var s domain.Settings
	query := fmt.Sprintf(`SELECT %s FROM settings WHERE id = $1`, settingsColumns)
	if err := tx.Get(ctx, &s, query, settingsRowID); err != nil {
		r.Log.Error("failed to get settings in transaction", "error", err)
		return nil, fmt.Errorf("failed to get settings in transaction: %w", err)
	}
	return &s, nil
}

// SetAvailabilityTx ставит флаг доступности под блокировкой строки
// и возвращает предыдущее значение
func (r *Repository) SetAvailabilityTx(ctx context.Context, tx persistence.Transaction, on bool) (bool, error) {
	var previous bool
	query := `SELECT availability_on FROM settings WHERE id = $1 FOR UPDATE`
	if err := tx.Get(ctx, &previous, query, settingsRowID); err != nil {
		r.Log.Error("failed to lock settings row", "error", err)
		return false, fmt.Errorf("failed to lock settings row: %w", err)
	}

	update := `UPDATE settings SET availability_on = $1, updated_at = NOW() WHERE id = $2`
	if err := tx.Exec(ctx, update, on, settingsRowID); err != nil {
		r.Log.Error("failed to update availability", "error", err, "on", on)
		return false, fmt.Errorf("failed to update availability: %w", err)
	}

	r.Log.Info("availability updated", "previous", previous, "on", on)
	return previous, nil
}

// UpdatePrices обновляет строки прайса
func (r *Repository) UpdatePrices(ctx context.Context, individual, couple string) error {
	query := `UPDATE settings SET individual_price = $1, couple_price = $2, updated_at = NOW() WHERE id = $3`
	if err := r.db.Exec(ctx, query, individual, couple, settingsRowID); err != nil {
		r.Log.Error("failed to update prices", "error", err)
		return fmt.Errorf("failed to update prices: %w", err)
	}
	return nil
}
