package service

import "context"

// IAlerterService отправка алертов команде (отдельный телеграм-чат)
type IAlerterService interface {
	SendAlert(ctx context.Context, message string) error
}
