package domain

import "time"

// Settings единственная строка настроек провайдера (id = 1).
// AvailabilityOn — глобальный флаг доступности: при false новые заявки
// уходят в лист ожидания вместо переговоров.
type Settings struct {
	ID                  int64     `json:"id" db:"id"`
	AvailabilityOn      bool      `json:"availability_on" db:"availability_on"`
	IndividualPrice     string    `json:"individual_price" db:"individual_price"`
	CouplePrice         string    `json:"couple_price" db:"couple_price"`
	NegotiationTTLHours int       `json:"negotiation_ttl_hours" db:"negotiation_ttl_hours"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
