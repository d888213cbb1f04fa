package negotiation

import (
	"context"
	"fmt"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/ports/persistence"
	"github.com/google/uuid"
)

// ToggleAvailability переключает флаг доступности провайдера.
// Переход off→on запускает разбор листа ожидания; on→off не трогает
// заявки, уже находящиеся в переговорах. Возвращает число заявок,
// выведенных из очереди.
func (s *Service) ToggleAvailability(ctx context.Context, on bool) (int, error) {
	var previous bool
	err := s.booking.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		prev, err := s.settings.SetAvailabilityTx(ctx, tx, on)
		if err != nil {
			return err
		}
		previous = prev
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to toggle availability: %w", err)
	}

	s.invalidateSettingsCache(ctx)

	if !on || previous {
		return 0, nil
	}

	return s.drainWaitlist(ctx)
}

// Availability текущее значение флага доступности
func (s *Service) Availability(ctx context.Context) (bool, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return false, err
	}
	return settings.AvailabilityOn, nil
}

// drainWaitlist выводит заявки из листа ожидания в порядке FIFO.
// Снимок очереди берётся на момент переключения; каждая заявка обрабатывается
// в собственной транзакции — сбой на середине оставляет уже обработанные
// в переговорах, остальные в очереди, без частично испорченных записей.
func (s *Service) drainWaitlist(ctx context.Context) (int, error) {
	entries, err := s.waitlist.ListFIFO(ctx)
	if err != nil {
		return 0, err
	}

	dequeued := 0
	for _, entry := range entries {
		if err := s.dequeueOne(ctx, entry.RequestID); err != nil {
			s.Log.Error("failed to dequeue waitlisted request",
				"error", err,
				"request_id", entry.RequestID)
			continue
		}
		dequeued++
	}

	s.Log.Info("waitlist drained", "total", len(entries), "dequeued", dequeued)
	return dequeued, nil
}

// dequeueOne переводит одну заявку waitlisted → negotiating, заново выставляя
// исходное желаемое время как предложение клиента
func (s *Service) dequeueOne(ctx context.Context, requestID uuid.UUID) error {
	_, err := s.mutateRequest(ctx, requestID, func(ctx context.Context, tx persistence.Transaction, req *domain.BookingRequest) (*mutation, error) {
		removed, err := s.waitlist.DeleteTx(ctx, tx, req.ID)
		if err != nil {
			return nil, err
		}
		if !removed || req.Status != domain.StatusWaitlisted {
			// заявка уже снята с очереди (withdraw или прямое предложение)
			return nil, nil
		}

		oldStatus := req.Status
		req.Status = domain.StatusNegotiating
		req.ProposedTime = req.DesiredTime
		req.ProposedBy = domain.PartyRequester

		deq := domain.NewEvent(req.ID, domain.PartySystem, domain.ActionDequeue, nil)
		prop := domain.NewEvent(req.ID, domain.PartyRequester, domain.ActionPropose, req.DesiredTime)

		return &mutation{
			events: []*domain.NegotiationEvent{deq, prop},
			notifications: []*domain.Notification{
				notice(req, deq, domain.NotificationDequeued, oldStatus, req.RequesterID),
				notice(req, prop, domain.NotificationProposal, oldStatus, req.ProviderID),
			},
		}, nil
	})
	return err
}

// Withdraw снимает заявку клиента с листа ожидания до разбора очереди.
// Если заявка уже выведена из очереди — no-op: вызывающий перечитывает статус.
func (s *Service) Withdraw(ctx context.Context, requestID uuid.UUID) error {
	_, err := s.mutateRequest(ctx, requestID, func(ctx context.Context, tx persistence.Transaction, req *domain.BookingRequest) (*mutation, error) {
		removed, err := s.waitlist.DeleteTx(ctx, tx, req.ID)
		if err != nil {
			return nil, err
		}
		if !removed || req.Status != domain.StatusWaitlisted {
			return nil, nil
		}

		oldStatus := req.Status
		req.Status = domain.StatusRejected

		ev := domain.NewEvent(req.ID, domain.PartyRequester, domain.ActionReject, nil)
		return &mutation{
			events:        []*domain.NegotiationEvent{ev},
			notifications: []*domain.Notification{notice(req, ev, domain.NotificationRejected, oldStatus, req.ProviderID)},
		}, nil
	})
	if err != nil {
		return err
	}

	s.Log.Info("waitlist entry withdrawn", "request_id", requestID)
	return nil
}
