package domain

import (
	"time"

	"github.com/google/uuid"
)

type SessionKind string

const (
	SessionKindIndividual SessionKind = "individual"
	SessionKindCouple     SessionKind = "couple"
)

func (k SessionKind) IsValid() bool {
	switch k {
	case SessionKindIndividual, SessionKindCouple:
		return true
	default:
		return false
	}
}

type SessionFormat string

const (
	FormatOnline SessionFormat = "online"
	FormatOnsite SessionFormat = "onsite"
)

func (f SessionFormat) IsValid() bool {
	switch f {
	case FormatOnline, FormatOnsite:
		return true
	default:
		return false
	}
}

type RequestStatus string

const (
	StatusPending     RequestStatus = "pending"
	StatusWaitlisted  RequestStatus = "waitlisted"
	StatusNegotiating RequestStatus = "negotiating"
	StatusAccepted    RequestStatus = "accepted"
	StatusRejected    RequestStatus = "rejected"
	StatusExpired     RequestStatus = "expired"
)

// IsTerminal терминальный статус: заявка больше не меняется
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusExpired:
		return true
	default:
		return false
	}
}

// Party сторона переговоров
type Party string

const (
	PartyRequester Party = "requester"
	PartyProvider  Party = "provider"
	PartySystem    Party = "system"
)

// Counterpart возвращает противоположную сторону (requester ↔ provider)
func (p Party) Counterpart() Party {
	switch p {
	case PartyRequester:
		return PartyProvider
	case PartyProvider:
		return PartyRequester
	default:
		return p
	}
}

// BookingRequest заявка на консультацию и её текущее согласованное состояние.
// ProposedBy всегда указывает на автора текущего ProposedTime; действовать
// следующим может только противоположная сторона.
type BookingRequest struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	RequesterID  int64         `json:"requester_id" db:"requester_id"`
	ProviderID   int64         `json:"provider_id" db:"provider_id"`
	SessionKind  SessionKind   `json:"session_kind" db:"session_kind"`
	Format       SessionFormat `json:"format" db:"format"`
	Timezone     string        `json:"timezone" db:"timezone"`
	Problem      string        `json:"problem" db:"problem"`
	Status       RequestStatus `json:"status" db:"status"`
	DesiredTime  *time.Time    `json:"desired_time,omitempty" db:"desired_time"`
	ProposedTime *time.Time    `json:"proposed_time,omitempty" db:"proposed_time"`
	ProposedBy   Party         `json:"proposed_by,omitempty" db:"proposed_by"` // "" пока нет предложения
	Version      int64         `json:"version" db:"version"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// RecipientFor возвращает telegram chat id указанной стороны
func (r *BookingRequest) RecipientFor(p Party) int64 {
	if p == PartyProvider {
		return r.ProviderID
	}
	return r.RequesterID
}
