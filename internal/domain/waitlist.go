package domain

import (
	"time"

	"github.com/google/uuid"
)

// WaitlistEntry слабая ссылка на заявку, ожидающую включения доступности.
// Порядок очереди задаётся EnqueuedAt (FIFO).
type WaitlistEntry struct {
	RequestID  uuid.UUID `json:"request_id" db:"request_id"`
	EnqueuedAt time.Time `json:"enqueued_at" db:"enqueued_at"`
}
