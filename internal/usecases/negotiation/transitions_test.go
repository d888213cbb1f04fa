package negotiation

import (
	"errors"
	"testing"

	"github.com/abriesk/psychobotV1/internal/domain"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     domain.RequestStatus
		proposedBy domain.Party
		action     domain.NegotiationAction
		actor      domain.Party
		want       domain.RequestStatus
		wantErr    error
	}{
		{
			name:   "pending propose",
			status: domain.StatusPending, action: domain.ActionPropose, actor: domain.PartyRequester,
			want: domain.StatusNegotiating,
		},
		{
			name:   "pending waitlist",
			status: domain.StatusPending, action: domain.ActionWaitlist, actor: domain.PartySystem,
			want: domain.StatusWaitlisted,
		},
		{
			name:   "waitlisted dequeue",
			status: domain.StatusWaitlisted, action: domain.ActionDequeue, actor: domain.PartySystem,
			want: domain.StatusNegotiating,
		},
		{
			name:   "waitlisted direct propose",
			status: domain.StatusWaitlisted, action: domain.ActionPropose, actor: domain.PartyProvider,
			want: domain.StatusNegotiating,
		},
		{
			name:   "waitlisted reject",
			status: domain.StatusWaitlisted, action: domain.ActionReject, actor: domain.PartyRequester,
			want: domain.StatusRejected,
		},
		{
			name:   "counter by counterparty",
			status: domain.StatusNegotiating, proposedBy: domain.PartyRequester,
			action: domain.ActionCounterPropose, actor: domain.PartyProvider,
			want: domain.StatusNegotiating,
		},
		{
			name:   "counter by offer owner",
			status: domain.StatusNegotiating, proposedBy: domain.PartyRequester,
			action: domain.ActionCounterPropose, actor: domain.PartyRequester,
			wantErr: domain.ErrOutOfTurn,
		},
		{
			name:   "accept by counterparty",
			status: domain.StatusNegotiating, proposedBy: domain.PartyProvider,
			action: domain.ActionAccept, actor: domain.PartyRequester,
			want: domain.StatusAccepted,
		},
		{
			name:   "accept own offer",
			status: domain.StatusNegotiating, proposedBy: domain.PartyProvider,
			action: domain.ActionAccept, actor: domain.PartyProvider,
			wantErr: domain.ErrOutOfTurn,
		},
		{
			name:   "reject by offer owner allowed",
			status: domain.StatusNegotiating, proposedBy: domain.PartyRequester,
			action: domain.ActionReject, actor: domain.PartyRequester,
			want: domain.StatusRejected,
		},
		{
			name:   "expire negotiating",
			status: domain.StatusNegotiating, proposedBy: domain.PartyProvider,
			action: domain.ActionExpire, actor: domain.PartySystem,
			want: domain.StatusExpired,
		},
		{
			name:   "accept from pending",
			status: domain.StatusPending, action: domain.ActionAccept, actor: domain.PartyProvider,
			wantErr: domain.ErrInvalidState,
		},
		{
			name:   "counter from accepted",
			status: domain.StatusAccepted, proposedBy: domain.PartyProvider,
			action: domain.ActionCounterPropose, actor: domain.PartyRequester,
			wantErr: domain.ErrInvalidState,
		},
		{
			name:   "expire rejected",
			status: domain.StatusRejected, action: domain.ActionExpire, actor: domain.PartySystem,
			wantErr: domain.ErrInvalidState,
		},
		{
			name:   "waitlist expired",
			status: domain.StatusExpired, action: domain.ActionWaitlist, actor: domain.PartySystem,
			wantErr: domain.ErrInvalidState,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := &domain.BookingRequest{Status: tc.status, ProposedBy: tc.proposedBy}
			got, err := nextStatus(req, tc.action, tc.actor)

			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tc.want {
				t.Errorf("next = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := []domain.RequestStatus{domain.StatusAccepted, domain.StatusRejected, domain.StatusExpired}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
	open := []domain.RequestStatus{domain.StatusPending, domain.StatusWaitlisted, domain.StatusNegotiating}
	for _, s := range open {
		if s.IsTerminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}
