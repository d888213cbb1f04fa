package kafka

import "context"

// Producer исходящий поток в Kafka. Ключ сообщения — id события переговоров,
// по нему принимающая сторона дедуплицирует повторные доставки.
type Producer interface {
	Send(ctx context.Context, key string, value []byte) error
	Close() error
}
