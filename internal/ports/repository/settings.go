package repository

import (
	"context"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/ports/persistence"
)

// ISettingsRepo единственная строка настроек (id = 1).
// SetAvailabilityTx выполняется под блокировкой строки: одновременные
// переключения флага сериализуются так же, как переходы заявок.
type ISettingsRepo interface {
	Get(ctx context.Context) (*domain.Settings, error)
	GetTx(ctx context.Context, tx persistence.Transaction) (*domain.Settings, error)
	// SetAvailabilityTx ставит флаг и возвращает предыдущее значение
	SetAvailabilityTx(ctx context.Context, tx persistence.Transaction, on bool) (previous bool, err error)
	UpdatePrices(ctx context.Context, individual, couple string) error
}
