package negotiation

import (
	"github.com/abriesk/psychobotV1/internal/domain"
)

type transitionKey struct {
	status domain.RequestStatus
	action domain.NegotiationAction
}

type transitionRule struct {
	next domain.RequestStatus
	// counterpartyOnly действие доступно только стороне, которая НЕ владеет
	// текущим предложением: нельзя принять или перебить собственную ставку
	counterpartyOnly bool
}

// transitions таблица допустимых переходов (статус, действие) → новый статус.
// Отсутствие ключа означает недопустимое действие в данном статусе.
var transitions = map[transitionKey]transitionRule{
	{domain.StatusPending, domain.ActionPropose}:  {next: domain.StatusNegotiating},
	{domain.StatusPending, domain.ActionWaitlist}: {next: domain.StatusWaitlisted},

	{domain.StatusWaitlisted, domain.ActionPropose}: {next: domain.StatusNegotiating},
	{domain.StatusWaitlisted, domain.ActionDequeue}: {next: domain.StatusNegotiating},
	{domain.StatusWaitlisted, domain.ActionReject}:  {next: domain.StatusRejected},

	{domain.StatusNegotiating, domain.ActionCounterPropose}: {next: domain.StatusNegotiating, counterpartyOnly: true},
	{domain.StatusNegotiating, domain.ActionAccept}:         {next: domain.StatusAccepted, counterpartyOnly: true},
	{domain.StatusNegotiating, domain.ActionReject}:         {next: domain.StatusRejected},
	{domain.StatusNegotiating, domain.ActionExpire}:         {next: domain.StatusExpired},
}

// nextStatus проверяет допустимость перехода и возвращает новый статус.
// Очерёдность хода: сторона, чьё предложение сейчас на столе (proposed_by),
// ждёт ответа контрагента.
func nextStatus(req *domain.BookingRequest, action domain.NegotiationAction, actor domain.Party) (domain.RequestStatus, error) {
	rule, ok := transitions[transitionKey{status: req.Status, action: action}]
	if !ok {
		return "", domain.ErrInvalidState
	}

	if rule.counterpartyOnly && req.ProposedBy != "" && actor == req.ProposedBy {
		return "", domain.ErrOutOfTurn
	}

	return rule.next, nil
}
