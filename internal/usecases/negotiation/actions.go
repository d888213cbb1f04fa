package negotiation

import (
	"context"
	"fmt"
	"time"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/ports/persistence"
	"github.com/google/uuid"
)

// ProposeTime выставляет новое предложение времени от имени actor.
// На заявке в листе ожидания это первое предложение (дополнительно снимает
// её с очереди); в переговорах — контрпредложение, доступное только стороне,
// не владеющей текущим предложением.
func (s *Service) ProposeTime(ctx context.Context, requestID uuid.UUID, actor domain.Party, t time.Time) (*domain.BookingRequest, error) {
	if actor != domain.PartyRequester && actor != domain.PartyProvider {
		return nil, fmt.Errorf("invalid proposing party: %q", actor)
	}

	req, err := s.mutateRequest(ctx, requestID, func(ctx context.Context, tx persistence.Transaction, req *domain.BookingRequest) (*mutation, error) {
		action := domain.ActionCounterPropose
		if req.ProposedBy == "" {
			action = domain.ActionPropose
		}

		next, err := nextStatus(req, action, actor)
		if err != nil {
			return nil, err
		}

		if req.Status == domain.StatusWaitlisted {
			// заявка выходит из очереди прямым предложением, не дожидаясь drain
			if _, err := s.waitlist.DeleteTx(ctx, tx, req.ID); err != nil {
				return nil, err
			}
		}

		oldStatus := req.Status
		tv := t
		req.Status = next
		req.ProposedTime = &tv
		req.ProposedBy = actor

		ev := domain.NewEvent(req.ID, actor, action, &tv)
		return &mutation{
			events:        []*domain.NegotiationEvent{ev},
			notifications: []*domain.Notification{notice(req, ev, domain.NotificationProposal, oldStatus, req.RecipientFor(actor.Counterpart()))},
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("time proposed",
		"request_id", requestID,
		"actor", actor,
		"proposed_time", t)
	return req, nil
}

// Accept принимает предложение контрагента; согласованным временем становится
// текущее proposed_time. Терминальный переход.
func (s *Service) Accept(ctx context.Context, requestID uuid.UUID, actor domain.Party) (*domain.BookingRequest, error) {
	req, err := s.mutateRequest(ctx, requestID, func(ctx context.Context, tx persistence.Transaction, req *domain.BookingRequest) (*mutation, error) {
		next, err := nextStatus(req, domain.ActionAccept, actor)
		if err != nil {
			return nil, err
		}

		oldStatus := req.Status
		req.Status = next

		ev := domain.NewEvent(req.ID, actor, domain.ActionAccept, nil)
		return &mutation{
			events:        []*domain.NegotiationEvent{ev},
			notifications: bothParties(req, ev, domain.NotificationAccepted, oldStatus),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("booking request accepted",
		"request_id", requestID,
		"actor", actor,
		"final_time", req.ProposedTime)
	return req, nil
}

// Reject отклоняет заявку. Допустим из переговоров и из листа ожидания
// (во втором случае запись очереди снимается). Терминальный переход.
func (s *Service) Reject(ctx context.Context, requestID uuid.UUID, actor domain.Party) (*domain.BookingRequest, error) {
	req, err := s.mutateRequest(ctx, requestID, func(ctx context.Context, tx persistence.Transaction, req *domain.BookingRequest) (*mutation, error) {
		next, err := nextStatus(req, domain.ActionReject, actor)
		if err != nil {
			return nil, err
		}

		if req.Status == domain.StatusWaitlisted {
			if _, err := s.waitlist.DeleteTx(ctx, tx, req.ID); err != nil {
				return nil, err
			}
		}

		oldStatus := req.Status
		req.Status = next

		ev := domain.NewEvent(req.ID, actor, domain.ActionReject, nil)
		return &mutation{
			events:        []*domain.NegotiationEvent{ev},
			notifications: bothParties(req, ev, domain.NotificationRejected, oldStatus),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.Info("booking request rejected", "request_id", requestID, "actor", actor)
	return req, nil
}

// Expire системный переход по истечении срока молчания. Безопасен при
// повторном вызове: заявка, уже доведённая до терминального статуса
// конкурирующим действием, остаётся нетронутой (no-op, не ошибка).
func (s *Service) Expire(ctx context.Context, requestID uuid.UUID) (*domain.BookingRequest, error) {
	expired := false
	req, err := s.mutateRequest(ctx, requestID, func(ctx context.Context, tx persistence.Transaction, req *domain.BookingRequest) (*mutation, error) {
		if req.Status.IsTerminal() {
			return nil, nil
		}

		next, err := nextStatus(req, domain.ActionExpire, domain.PartySystem)
		if err != nil {
			return nil, err
		}

		oldStatus := req.Status
		req.Status = next
		expired = true

		ev := domain.NewEvent(req.ID, domain.PartySystem, domain.ActionExpire, nil)
		return &mutation{
			events:        []*domain.NegotiationEvent{ev},
			notifications: bothParties(req, ev, domain.NotificationExpired, oldStatus),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	if expired {
		s.Log.Info("booking request expired", "request_id", requestID)
	}
	return req, nil
}
