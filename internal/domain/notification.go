package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotificationProposal   NotificationKind = "proposal"   // новое предложение времени контрагенту
	NotificationAccepted   NotificationKind = "accepted"   // время согласовано
	NotificationRejected   NotificationKind = "rejected"   // заявка отклонена
	NotificationExpired    NotificationKind = "expired"    // заявка истекла по бездействию
	NotificationWaitlisted NotificationKind = "waitlisted" // заявка поставлена в лист ожидания
	NotificationDequeued   NotificationKind = "dequeued"   // заявка выведена из листа ожидания
	NotificationCustom     NotificationKind = "custom"     // произвольный текст
)

// Notification строка transactional outbox: пишется в той же транзакции,
// что и переход состояния, и доставляется фоновой джобой как минимум один раз.
// EventID служит ключом идемпотентности для принимающей стороны.
type Notification struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	EventID      uuid.UUID        `json:"event_id" db:"event_id"`
	RequestID    uuid.UUID        `json:"request_id" db:"request_id"`
	Recipient    int64            `json:"recipient" db:"recipient"`
	Kind         NotificationKind `json:"kind" db:"kind"`
	OldStatus    RequestStatus    `json:"old_status" db:"old_status"`
	NewStatus    RequestStatus    `json:"new_status" db:"new_status"`
	Actor        Party            `json:"actor" db:"actor"`
	ProposedTime *time.Time       `json:"proposed_time,omitempty" db:"proposed_time"`
	Message      string           `json:"message,omitempty" db:"message"` // пусто — текст рендерится при отправке
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	SentAt       *time.Time       `json:"sent_at,omitempty" db:"sent_at"`
	Attempts     int              `json:"attempts" db:"attempts"`
	LastError    *string          `json:"last_error,omitempty" db:"last_error"`
}
