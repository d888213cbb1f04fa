package service

import (
	"context"
	"time"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/google/uuid"
)

// CreateRequestInput данные новой заявки из анкеты клиента
type CreateRequestInput struct {
	RequesterID int64
	SessionKind domain.SessionKind
	Format      domain.SessionFormat
	Timezone    string
	Problem     string
	DesiredTime *time.Time
}

// INegotiationService движок переговоров. Единственный путь изменения заявок:
// и транспорт, и админка ходят через него, без обходных записей в хранилище.
type INegotiationService interface {
	CreateRequest(ctx context.Context, in CreateRequestInput) (*domain.BookingRequest, error)
	ProposeTime(ctx context.Context, requestID uuid.UUID, actor domain.Party, t time.Time) (*domain.BookingRequest, error)
	Accept(ctx context.Context, requestID uuid.UUID, actor domain.Party) (*domain.BookingRequest, error)
	Reject(ctx context.Context, requestID uuid.UUID, actor domain.Party) (*domain.BookingRequest, error)
	Expire(ctx context.Context, requestID uuid.UUID) (*domain.BookingRequest, error)
	Withdraw(ctx context.Context, requestID uuid.UUID) error

	ToggleAvailability(ctx context.Context, on bool) (dequeued int, err error)
	Availability(ctx context.Context) (bool, error)

	GetRequest(ctx context.Context, requestID uuid.UUID) (*domain.BookingRequest, []*domain.NegotiationEvent, error)
	ListByProvider(ctx context.Context, providerID int64, status domain.RequestStatus) ([]*domain.BookingRequest, error)

	Settings(ctx context.Context) (*domain.Settings, error)
	UpdatePrices(ctx context.Context, individual, couple string) error

	GetOrCreateUser(ctx context.Context, id int64, language string) (*domain.User, error)
	SetUserLanguage(ctx context.Context, id int64, language string) error
}
