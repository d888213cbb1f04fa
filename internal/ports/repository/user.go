package repository

import (
	"context"

	"github.com/abriesk/psychobotV1/internal/domain"
)

// IUserRepo пользователи бота и их языковые предпочтения
type IUserRepo interface {
	GetOrCreate(ctx context.Context, id int64, language string) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	SetLanguage(ctx context.Context, id int64, language string) error
}
