package negotiation

import (
	"context"
	"fmt"
	"time"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/ports/persistence"
	"github.com/abriesk/psychobotV1/internal/ports/service"
	"github.com/google/uuid"
)

// CreateRequest создаёт заявку из анкеты клиента. Флаг доступности читается
// в той же транзакции: при выключенной доступности заявка уходит в лист
// ожидания без предложения времени, иначе — сразу в переговоры с первым
// предложением от клиента.
func (s *Service) CreateRequest(ctx context.Context, in service.CreateRequestInput) (*domain.BookingRequest, error) {
	if !in.SessionKind.IsValid() {
		return nil, fmt.Errorf("invalid session kind: %q", in.SessionKind)
	}
	if !in.Format.IsValid() {
		return nil, fmt.Errorf("invalid session format: %q", in.Format)
	}
	if in.DesiredTime == nil {
		return nil, fmt.Errorf("desired time is required")
	}

	var created *domain.BookingRequest
	err := s.booking.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		settings, err := s.settings.GetTx(ctx, tx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		req := &domain.BookingRequest{
			ID:          uuid.New(),
			RequesterID: in.RequesterID,
			ProviderID:  s.providerID,
			SessionKind: in.SessionKind,
			Format:      in.Format,
			Timezone:    in.Timezone,
			Problem:     in.Problem,
			DesiredTime: in.DesiredTime,
			Version:     1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if !settings.AvailabilityOn {
			req.Status = domain.StatusWaitlisted

			if err := s.booking.CreateTx(ctx, tx, req); err != nil {
				return err
			}
			if err := s.waitlist.EnqueueTx(ctx, tx, req.ID, now); err != nil {
				return err
			}

			ev := domain.NewEvent(req.ID, domain.PartySystem, domain.ActionWaitlist, nil)
			if err := s.events.AppendTx(ctx, tx, ev); err != nil {
				return err
			}

			// клиенту — подтверждение очереди, провайдеру — сигнал о новой заявке
			for _, n := range bothParties(req, ev, domain.NotificationWaitlisted, domain.StatusPending) {
				if err := s.outbox.CreateTx(ctx, tx, n); err != nil {
					return err
				}
			}

			created = req
			return nil
		}

		req.Status = domain.StatusNegotiating
		req.ProposedTime = in.DesiredTime
		req.ProposedBy = domain.PartyRequester

		if err := s.booking.CreateTx(ctx, tx, req); err != nil {
			return err
		}

		ev := domain.NewEvent(req.ID, domain.PartyRequester, domain.ActionPropose, in.DesiredTime)
		if err := s.events.AppendTx(ctx, tx, ev); err != nil {
			return err
		}

		n := notice(req, ev, domain.NotificationProposal, domain.StatusPending, req.ProviderID)
		if err := s.outbox.CreateTx(ctx, tx, n); err != nil {
			return err
		}

		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("booking request created",
		"request_id", created.ID,
		"requester_id", created.RequesterID,
		"status", created.Status)
	return created, nil
}
