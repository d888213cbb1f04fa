package userRepo

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

type Repository struct {
	db  persistence.Persistence
	Log *slog.Logger
}

// New создаёт репозиторий пользователей
func New(db persistence.Persistence, log *slog.Logger) ports.IUserRepo {
	return &Repository{
		db:  db,
		Log: log,
	}
}

// GetOrCreate возвращает пользователя, создавая запись при первом обращении
func (r *Repository) GetOrCreate(ctx context.Context, id int64, language string) (*domain.User, error) {
	var user domain.User
	query := `
		INSERT INTO users (id, language, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET id = users.id
		RETURNING id, language, created_at
	`
	if err := r.db.Get(ctx, &user, query, id, language); err != nil {
		r.Log.Error("failed to get or create user",
			"error", err,
			"user_id", id)
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}
	return &user, nil
}

// Get возвращает пользователя по id
func (r *Repository) Get(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, language, created_at FROM users WHERE id = $1`
	if err := r.db.Get(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.Log.Error("failed to get user", "error", err, "user_id", id)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// SetLanguage сохраняет языковое предпочтение пользователя
func (r *Repository) SetLanguage(ctx context.Context, id int64, language string) error {
	query := `UPDATE users SET language = $1 WHERE id = $2`
	if err := r.db.Exec(ctx, query, language, id); err != nil {
		r.Log.Error("failed to set user language",
			"error", err,
			"user_id", id,
			"language", language)
		return fmt.Errorf("failed to set user language: %w", err)
	}
	return nil
}
