package texts

import (
	"errors"

	"github.com/abriesk/psychobotV1/internal/domain"
)

// ForError переводит ошибку движка в сообщение пользователю
func ForError(lang string, err error) string {
	switch {
	case errors.Is(err, domain.ErrOutOfTurn):
		return Get(lang, "err_out_of_turn")
	case errors.Is(err, domain.ErrInvalidState):
		return Get(lang, "err_invalid_state")
	case errors.Is(err, domain.ErrNotFound):
		return Get(lang, "err_not_found")
	default:
		return Get(lang, "err_try_again")
	}
}
