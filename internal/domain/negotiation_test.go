package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestReplay(t *testing.T) {
	requestID := uuid.New()
	t1 := time.Date(2026, 9, 14, 13, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 9, 14, 16, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		events []*NegotiationEvent
		want   Projection
	}{
		{
			name:   "empty journal",
			events: nil,
			want:   Projection{Status: StatusPending},
		},
		{
			name: "single proposal",
			events: []*NegotiationEvent{
				NewEvent(requestID, PartyRequester, ActionPropose, &t1),
			},
			want: Projection{Status: StatusNegotiating, ProposedTime: &t1, ProposedBy: PartyRequester},
		},
		{
			name: "counter moves the offer",
			events: []*NegotiationEvent{
				NewEvent(requestID, PartyRequester, ActionPropose, &t1),
				NewEvent(requestID, PartyProvider, ActionCounterPropose, &t2),
			},
			want: Projection{Status: StatusNegotiating, ProposedTime: &t2, ProposedBy: PartyProvider},
		},
		{
			name: "accept keeps last offer",
			events: []*NegotiationEvent{
				NewEvent(requestID, PartyRequester, ActionPropose, &t1),
				NewEvent(requestID, PartyProvider, ActionCounterPropose, &t2),
				NewEvent(requestID, PartyRequester, ActionAccept, nil),
			},
			want: Projection{Status: StatusAccepted, ProposedTime: &t2, ProposedBy: PartyProvider},
		},
		{
			name: "waitlist then dequeue then proposal",
			events: []*NegotiationEvent{
				NewEvent(requestID, PartySystem, ActionWaitlist, nil),
				NewEvent(requestID, PartySystem, ActionDequeue, nil),
				NewEvent(requestID, PartyRequester, ActionPropose, &t1),
			},
			want: Projection{Status: StatusNegotiating, ProposedTime: &t1, ProposedBy: PartyRequester},
		},
		{
			name: "reject from waitlist",
			events: []*NegotiationEvent{
				NewEvent(requestID, PartySystem, ActionWaitlist, nil),
				NewEvent(requestID, PartyRequester, ActionReject, nil),
			},
			want: Projection{Status: StatusRejected},
		},
		{
			name: "expire",
			events: []*NegotiationEvent{
				NewEvent(requestID, PartyRequester, ActionPropose, &t1),
				NewEvent(requestID, PartySystem, ActionExpire, nil),
			},
			want: Projection{Status: StatusExpired, ProposedTime: &t1, ProposedBy: PartyRequester},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Replay(tc.events)

			if got.Status != tc.want.Status {
				t.Errorf("status = %s, want %s", got.Status, tc.want.Status)
			}
			if got.ProposedBy != tc.want.ProposedBy {
				t.Errorf("proposed_by = %q, want %q", got.ProposedBy, tc.want.ProposedBy)
			}
			switch {
			case got.ProposedTime == nil && tc.want.ProposedTime == nil:
			case got.ProposedTime == nil || tc.want.ProposedTime == nil:
				t.Errorf("proposed_time = %v, want %v", got.ProposedTime, tc.want.ProposedTime)
			case !got.ProposedTime.Equal(*tc.want.ProposedTime):
				t.Errorf("proposed_time = %v, want %v", got.ProposedTime, tc.want.ProposedTime)
			}
		})
	}
}

func TestPartyCounterpart(t *testing.T) {
	if got := PartyRequester.Counterpart(); got != PartyProvider {
		t.Errorf("requester counterpart = %s", got)
	}
	if got := PartyProvider.Counterpart(); got != PartyRequester {
		t.Errorf("provider counterpart = %s", got)
	}
	if got := PartySystem.Counterpart(); got != PartySystem {
		t.Errorf("system counterpart = %s", got)
	}
}

func TestRecipientFor(t *testing.T) {
	req := &BookingRequest{RequesterID: 7, ProviderID: 9}
	if got := req.RecipientFor(PartyRequester); got != 7 {
		t.Errorf("requester recipient = %d", got)
	}
	if got := req.RecipientFor(PartyProvider); got != 9 {
		t.Errorf("provider recipient = %d", got)
	}
}
