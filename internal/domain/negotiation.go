package domain

import (
	"time"

	"github.com/google/uuid"
)

type NegotiationAction string

const (
	ActionPropose        NegotiationAction = "propose"
	ActionCounterPropose NegotiationAction = "counter_propose"
	ActionAccept         NegotiationAction = "accept"
	ActionReject         NegotiationAction = "reject"
	ActionWaitlist       NegotiationAction = "waitlist"
	ActionDequeue        NegotiationAction = "dequeue"
	ActionExpire         NegotiationAction = "expire"
)

// NegotiationEvent запись в append-only журнале переговоров.
// Журнал — источник правды: строка booking_requests является его проекцией.
type NegotiationEvent struct {
	ID         uuid.UUID         `json:"id" db:"id"`
	RequestID  uuid.UUID         `json:"request_id" db:"request_id"`
	Actor      Party             `json:"actor" db:"actor"`
	Action     NegotiationAction `json:"action" db:"action"`
	TimeValue  *time.Time        `json:"time_value,omitempty" db:"time_value"`
	OccurredAt time.Time         `json:"occurred_at" db:"occurred_at"`
}

// Projection состояние заявки, восстанавливаемое из журнала событий
type Projection struct {
	Status       RequestStatus
	ProposedTime *time.Time
	ProposedBy   Party
}

// Replay проигрывает события в порядке occurred_at и возвращает проекцию.
// Детерминированность проигрывания — инвариант журнала: для любой заявки
// Replay обязан совпасть с сохранённой строкой booking_requests.
func Replay(events []*NegotiationEvent) Projection {
	p := Projection{Status: StatusPending}

	for _, ev := range events {
		switch ev.Action {
		case ActionPropose:
			p.Status = StatusNegotiating
			p.ProposedTime = ev.TimeValue
			p.ProposedBy = ev.Actor
		case ActionCounterPropose:
			p.ProposedTime = ev.TimeValue
			p.ProposedBy = ev.Actor
		case ActionAccept:
			p.Status = StatusAccepted
		case ActionReject:
			p.Status = StatusRejected
		case ActionWaitlist:
			p.Status = StatusWaitlisted
		case ActionDequeue:
			p.Status = StatusNegotiating
		case ActionExpire:
			p.Status = StatusExpired
		}
	}

	return p
}

// NewEvent создаёт событие журнала с новым id и текущим временем
func NewEvent(requestID uuid.UUID, actor Party, action NegotiationAction, timeValue *time.Time) *NegotiationEvent {
	return &NegotiationEvent{
		ID:         uuid.New(),
		RequestID:  requestID,
		Actor:      actor,
		Action:     action,
		TimeValue:  timeValue,
		OccurredAt: time.Now().UTC(),
	}
}
