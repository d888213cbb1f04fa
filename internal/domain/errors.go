package domain

import "errors"

// Ошибки движка переговоров. Транспорт обязан отдать их инициатору действия,
// а не глотать: по ним строится понятный пользователю ответ.
var (
	// ErrNotFound заявка с таким id не существует
	ErrNotFound = errors.New("booking request not found")

	// ErrOutOfTurn сторона попыталась ответить на собственное предложение
	ErrOutOfTurn = errors.New("not this party's turn to act")

	// ErrInvalidState действие недопустимо в текущем статусе заявки
	ErrInvalidState = errors.New("action not allowed in current request status")

	// ErrConcurrencyConflict версия строки изменилась между чтением и записью.
	// Движок повторяет операцию один раз прежде чем вернуть её наружу.
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
)

// BusinessError ошибка бизнес-логики, которая уже залогирована в UseCase
type BusinessError struct {
	Err error
}

func (e *BusinessError) Error() string {
	return e.Err.Error()
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func WrapBusinessError(err error) error {
	if err == nil {
		return nil
	}
	return &BusinessError{Err: err}
}

func IsBusinessError(err error) bool {
	var businessErr *BusinessError
	return errors.As(err, &businessErr)
}
