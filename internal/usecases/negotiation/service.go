package negotiation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/ports/cache"
	"github.com/abriesk/psychobotV1/internal/ports/persistence"
	"github.com/abriesk/psychobotV1/internal/ports/repository"
	"github.com/google/uuid"
)

// Service движок переговоров о времени консультации.
// Каждый переход выполняется в одной транзакции: блокирующее чтение строки
// заявки, проверка по таблице переходов, запись проекции с проверкой версии,
// событие в журнал и outbox-уведомления контрагенту.
type Service struct {
	booking  repository.IBookingRepo
	events   repository.INegotiationRepo
	waitlist repository.IWaitlistRepo
	settings repository.ISettingsRepo
	users    repository.IUserRepo
	outbox   repository.INotificationRepo

	cache cache.Cache // может быть nil

	providerID      int64
	defaultLanguage string

	Log *slog.Logger
}

func New(
	booking repository.IBookingRepo,
	events repository.INegotiationRepo,
	waitlist repository.IWaitlistRepo,
	settings repository.ISettingsRepo,
	users repository.IUserRepo,
	outbox repository.INotificationRepo,
	cacheClient cache.Cache,
	providerID int64,
	defaultLanguage string,
	log *slog.Logger,
) *Service {
	return &Service{
		booking:         booking,
		events:          events,
		waitlist:        waitlist,
		settings:        settings,
		users:           users,
		outbox:          outbox,
		cache:           cacheClient,
		providerID:      providerID,
		defaultLanguage: defaultLanguage,
		Log:             log,
	}
}

// mutation результат применения перехода: события журнала и исходящие уведомления,
// записываемые в той же транзакции, что и новая проекция
type mutation struct {
	events        []*domain.NegotiationEvent
	notifications []*domain.Notification
}

// mutateRequest каркас перехода: одна транзакция на заявку, строка под
// блокировкой, запись с проверкой версии. fn возвращает nil-мутацию для no-op.
// Конфликт версии повторяется один раз: проигравший перечитывает состояние
// и, как правило, получает честный ErrOutOfTurn/ErrInvalidState.
func (s *Service) mutateRequest(
	ctx context.Context,
	requestID uuid.UUID,
	fn func(ctx context.Context, tx persistence.Transaction, req *domain.BookingRequest) (*mutation, error),
) (*domain.BookingRequest, error) {
	attempt := func() (*domain.BookingRequest, error) {
		var result *domain.BookingRequest
		err := s.booking.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
			req, err := s.booking.GetByIDForUpdateTx(ctx, tx, requestID)
			if err != nil {
				return err
			}

			mut, err := fn(ctx, tx, req)
			if err != nil {
				return err
			}
			if mut == nil {
				// переход не требуется
				result = req
				return nil
			}

			req.UpdatedAt = time.Now().UTC()
			if err := s.booking.UpdateStateTx(ctx, tx, req); err != nil {
				return err
			}

			for _, ev := range mut.events {
				if err := s.events.AppendTx(ctx, tx, ev); err != nil {
					return err
				}
			}
			for _, n := range mut.notifications {
				if err := s.outbox.CreateTx(ctx, tx, n); err != nil {
					return err
				}
			}

			result = req
			return nil
		})
		return result, err
	}

	result, err := attempt()
	if errors.Is(err, domain.ErrConcurrencyConflict) {
		s.Log.Warn("transition hit concurrency conflict, retrying once", "request_id", requestID)
		result, err = attempt()
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// notice строит outbox-уведомление по совершённому переходу
func notice(
	req *domain.BookingRequest,
	ev *domain.NegotiationEvent,
	kind domain.NotificationKind,
	oldStatus domain.RequestStatus,
	recipient int64,
) *domain.Notification {
	return &domain.Notification{
		ID:           uuid.New(),
		EventID:      ev.ID,
		RequestID:    req.ID,
		Recipient:    recipient,
		Kind:         kind,
		OldStatus:    oldStatus,
		NewStatus:    req.Status,
		Actor:        ev.Actor,
		ProposedTime: req.ProposedTime,
		CreatedAt:    time.Now().UTC(),
	}
}

// bothParties уведомления обеим сторонам (для терминальных переходов)
func bothParties(req *domain.BookingRequest, ev *domain.NegotiationEvent, kind domain.NotificationKind, oldStatus domain.RequestStatus) []*domain.Notification {
	return []*domain.Notification{
		notice(req, ev, kind, oldStatus, req.RequesterID),
		notice(req, ev, kind, oldStatus, req.ProviderID),
	}
}

// GetOrCreateUser возвращает пользователя бота, создавая запись при первом контакте
func (s *Service) GetOrCreateUser(ctx context.Context, id int64, language string) (*domain.User, error) {
	if language == "" {
		language = s.defaultLanguage
	}
	user, err := s.users.GetOrCreate(ctx, id, language)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}
	return user, nil
}

// SetUserLanguage сохраняет выбранный пользователем язык
func (s *Service) SetUserLanguage(ctx context.Context, id int64, language string) error {
	return s.users.SetLanguage(ctx, id, language)
}
