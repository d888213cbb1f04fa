package negotiation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/ports/persistence"
	"github.com/abriesk/psychobotV1/internal/ports/service"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	testRequesterID int64 = 100
	testProviderID  int64 = 200
)

// fakeTx заглушка транзакции для тестирования движка в памяти
type fakeTx struct{}

func (fakeTx) Get(context.Context, interface{}, string, ...interface{}) error    { return nil }
func (fakeTx) Select(context.Context, interface{}, string, ...interface{}) error { return nil }
func (fakeTx) Exec(context.Context, string, ...interface{}) error                { return nil }
func (fakeTx) ExecWithResult(context.Context, string, ...interface{}) (int64, error) {
	return 0, nil
}
func (fakeTx) NamedExec(context.Context, string, interface{}) error             { return nil }
func (fakeTx) QueryRow(context.Context, string, ...interface{}) *sqlx.Row       { return nil }
func (fakeTx) Commit() error                                                    { return nil }
func (fakeTx) Rollback() error                                                  { return nil }

type fakeBookingRepo struct {
	requests map[uuid.UUID]*domain.BookingRequest
	// failUpdates имитирует конкурентный конфликт: столько UpdateStateTx
	// подряд вернут ErrConcurrencyConflict
	failUpdates int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{requests: make(map[uuid.UUID]*domain.BookingRequest)}
}

func copyRequest(r *domain.BookingRequest) *domain.BookingRequest {
	c := *r
	return &c
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.BookingRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyRequest(r), nil
}

func (f *fakeBookingRepo) ListByProvider(_ context.Context, providerID int64, status domain.RequestStatus) ([]*domain.BookingRequest, error) {
	var out []*domain.BookingRequest
	for _, r := range f.requests {
		if r.ProviderID == providerID && r.Status == status {
			out = append(out, copyRequest(r))
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListStale(_ context.Context, status domain.RequestStatus, updatedBefore time.Time) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for id, r := range f.requests {
		if r.Status == status && r.UpdatedAt.Before(updatedBefore) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) BeginTx(context.Context) (persistence.Transaction, error) {
	return fakeTx{}, nil
}

func (f *fakeBookingRepo) WithTransaction(ctx context.Context, fn func(context.Context, persistence.Transaction) error) error {
	return fn(ctx, fakeTx{})
}

func (f *fakeBookingRepo) CreateTx(_ context.Context, _ persistence.Transaction, req *domain.BookingRequest) error {
	f.requests[req.ID] = copyRequest(req)
	return nil
}

func (f *fakeBookingRepo) GetByIDForUpdateTx(_ context.Context, _ persistence.Transaction, id uuid.UUID) (*domain.BookingRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyRequest(r), nil
}

func (f *fakeBookingRepo) UpdateStateTx(_ context.Context, _ persistence.Transaction, req *domain.BookingRequest) error {
	if f.failUpdates > 0 {
		f.failUpdates--
		return domain.ErrConcurrencyConflict
	}

	stored, ok := f.requests[req.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != req.Version {
		return domain.ErrConcurrencyConflict
	}

	req.Version++
	f.requests[req.ID] = copyRequest(req)
	return nil
}

type fakeNegotiationRepo struct {
	events []*domain.NegotiationEvent
}

func (f *fakeNegotiationRepo) AppendTx(_ context.Context, _ persistence.Transaction, ev *domain.NegotiationEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeNegotiationRepo) ListByRequest(_ context.Context, requestID uuid.UUID) ([]*domain.NegotiationEvent, error) {
	var out []*domain.NegotiationEvent
	for _, ev := range f.events {
		if ev.RequestID == requestID {
			out = append(out, ev)
		}
	}
	return out, nil
}

type fakeWaitlistRepo struct {
	entries []*domain.WaitlistEntry
}

func (f *fakeWaitlistRepo) EnqueueTx(_ context.Context, _ persistence.Transaction, requestID uuid.UUID, enqueuedAt time.Time) error {
	f.entries = append(f.entries, &domain.WaitlistEntry{RequestID: requestID, EnqueuedAt: enqueuedAt})
	return nil
}

func (f *fakeWaitlistRepo) DeleteTx(_ context.Context, _ persistence.Transaction, requestID uuid.UUID) (bool, error) {
	for i, e := range f.entries {
		if e.RequestID == requestID {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeWaitlistRepo) ListFIFO(context.Context) ([]*domain.WaitlistEntry, error) {
	out := make([]*domain.WaitlistEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

type fakeSettingsRepo struct {
	settings domain.Settings
}

func (f *fakeSettingsRepo) Get(context.Context) (*domain.Settings, error) {
	s := f.settings
	return &s, nil
}

func (f *fakeSettingsRepo) GetTx(context.Context, persistence.Transaction) (*domain.Settings, error) {
	s := f.settings
	return &s, nil
}

func (f *fakeSettingsRepo) SetAvailabilityTx(_ context.Context, _ persistence.Transaction, on bool) (bool, error) {
	prev := f.settings.AvailabilityOn
	f.settings.AvailabilityOn = on
	return prev, nil
}

func (f *fakeSettingsRepo) UpdatePrices(_ context.Context, individual, couple string) error {
	f.settings.IndividualPrice = individual
	f.settings.CouplePrice = couple
	return nil
}

type fakeUserRepo struct {
	users map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User)}
}

func (f *fakeUserRepo) GetOrCreate(_ context.Context, id int64, language string) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	u := &domain.User{ID: id, Language: language, CreatedAt: time.Now().UTC()}
	f.users[id] = u
	return u, nil
}

func (f *fakeUserRepo) Get(_ context.Context, id int64) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) SetLanguage(_ context.Context, id int64, language string) error {
	if u, ok := f.users[id]; ok {
		u.Language = language
	}
	return nil
}

type fakeNotificationRepo struct {
	notifications []*domain.Notification
}

func (f *fakeNotificationRepo) CreateTx(_ context.Context, _ persistence.Transaction, n *domain.Notification) error {
	f.notifications = append(f.notifications, n)
	return nil
}

func (f *fakeNotificationRepo) ListUnsent(_ context.Context, maxAttempts, limit int) ([]*domain.Notification, error) {
	var out []*domain.Notification
	for _, n := range f.notifications {
		if n.SentAt == nil && n.Attempts < maxAttempts {
			out = append(out, n)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkSent(_ context.Context, id uuid.UUID, sentAt time.Time) error {
	for _, n := range f.notifications {
		if n.ID == id {
			t := sentAt
			n.SentAt = &t
		}
	}
	return nil
}

func (f *fakeNotificationRepo) MarkFailed(_ context.Context, id uuid.UUID, lastError string) error {
	for _, n := range f.notifications {
		if n.ID == id {
			n.Attempts++
			e := lastError
			n.LastError = &e
		}
	}
	return nil
}

type testEnv struct {
	svc      *Service
	booking  *fakeBookingRepo
	events   *fakeNegotiationRepo
	waitlist *fakeWaitlistRepo
	settings *fakeSettingsRepo
	outbox   *fakeNotificationRepo
}

func newTestEnv(availabilityOn bool) *testEnv {
	booking := newFakeBookingRepo()
	events := &fakeNegotiationRepo{}
	waitlist := &fakeWaitlistRepo{}
	settings := &fakeSettingsRepo{settings: domain.Settings{
		ID:                  1,
		AvailabilityOn:      availabilityOn,
		IndividualPrice:     "3000 RUB",
		CouplePrice:         "4500 RUB",
		NegotiationTTLHours: 48,
	}}
	users := newFakeUserRepo()
	outbox := &fakeNotificationRepo{}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(booking, events, waitlist, settings, users, outbox, nil, testProviderID, "ru", log)

	return &testEnv{
		svc:      svc,
		booking:  booking,
		events:   events,
		waitlist: waitlist,
		settings: settings,
		outbox:   outbox,
	}
}

func testInput(desired time.Time) service.CreateRequestInput {
	return service.CreateRequestInput{
		RequesterID: testRequesterID,
		SessionKind: domain.SessionKindIndividual,
		Format:      domain.FormatOnline,
		Timezone:    "UTC+3",
		Problem:     "anxiety",
		DesiredTime: &desired,
	}
}

func TestCreateRequestStartsNegotiation(t *testing.T) {
	env := newTestEnv(true)
	ctx := context.Background()
	desired := time.Date(2026, 9, 14, 13, 0, 0, 0, time.UTC)

	req, err := env.svc.CreateRequest(ctx, testInput(desired))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	if req.Status != domain.StatusNegotiating {
		t.Errorf("status = %s, want %s", req.Status, domain.StatusNegotiating)
	}
	if req.ProposedBy != domain.PartyRequester {
		t.Errorf("proposed_by = %s, want %s", req.ProposedBy, domain.PartyRequester)
	}
	if req.ProposedTime == nil || !req.ProposedTime.Equal(desired) {
		t.Errorf("proposed_time = %v, want %v", req.ProposedTime, desired)
	}

	if len(env.events.events) != 1 || env.events.events[0].Action != domain.ActionPropose {
		t.Fatalf("expected single propose event, got %+v", env.events.events)
	}
	if len(env.outbox.notifications) != 1 {
		t.Fatalf("expected one notification, got %d", len(env.outbox.notifications))
	}
	n := env.outbox.notifications[0]
	if n.Recipient != testProviderID || n.Kind != domain.NotificationProposal {
		t.Errorf("notification = recipient %d kind %s, want provider proposal", n.Recipient, n.Kind)
	}
}

func TestCreateRequestWaitlistedWhenUnavailable(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()
	desired := time.Date(2026, 9, 14, 13, 0, 0, 0, time.UTC)

	req, err := env.svc.CreateRequest(ctx, testInput(desired))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	if req.Status != domain.StatusWaitlisted {
		t.Errorf("status = %s, want %s", req.Status, domain.StatusWaitlisted)
	}
	if req.ProposedBy != "" || req.ProposedTime != nil {
		t.Errorf("waitlisted request must carry no proposal, got by=%q time=%v", req.ProposedBy, req.ProposedTime)
	}
	if len(env.waitlist.entries) != 1 || env.waitlist.entries[0].RequestID != req.ID {
		t.Fatalf("expected request in waitlist, got %+v", env.waitlist.entries)
	}
	if len(env.outbox.notifications) != 2 {
		t.Errorf("expected notifications to both parties, got %d", len(env.outbox.notifications))
	}
}

func TestCreateRequestValidation(t *testing.T) {
	env := newTestEnv(true)
	ctx := context.Background()
	desired := time.Now().UTC()

	in := testInput(desired)
	in.SessionKind = "group"
	if _, err := env.svc.CreateRequest(ctx, in); err == nil {
		t.Error("expected error for invalid session kind")
	}

	in = testInput(desired)
	in.DesiredTime = nil
	if _, err := env.svc.CreateRequest(ctx, in); err == nil {
		t.Error("expected error for missing desired time")
	}
}

func TestCounterProposeAlternatesTurns(t *testing.T) {
	env := newTestEnv(true)
	ctx := context.Background()
	desired := time.Date(2026, 9, 14, 13, 0, 0, 0, time.UTC)

	req, err := env.svc.CreateRequest(ctx, testInput(desired))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	// Клиент не может перебить собственное предложение
	if _, err := env.svc.ProposeTime(ctx, req.ID, domain.PartyRequester, desired.Add(time.Hour)); !errors.Is(err, domain.ErrOutOfTurn) {
		t.Fatalf("requester re-proposal: err = %v, want ErrOutOfTurn", err)
	}

	counter := desired.Add(2 * time.Hour)
	req, err = env.svc.ProposeTime(ctx, req.ID, domain.PartyProvider, counter)
	if err != nil {
		t.Fatalf("provider counter: %v", err)
	}
	if req.ProposedBy != domain.PartyProvider || !req.ProposedTime.Equal(counter) {
		t.Errorf("after counter: by=%s time=%v, want provider %v", req.ProposedBy, req.ProposedTime, counter)
	}

	// Ход вернулся к клиенту
	again := counter.Add(time.Hour)
	req, err = env.svc.ProposeTime(ctx, req.ID, domain.PartyRequester, again)
	if err != nil {
		t.Fatalf("requester counter: %v", err)
	}
	if req.ProposedBy != domain.PartyRequester {
		t.Errorf("proposed_by = %s, want requester", req.ProposedBy)
	}
}

func TestAcceptOnlyByCounterparty(t *testing.T) {
	env := newTestEnv(true)
	ctx := context.Background()
	desired := time.Date(2026, 9, 14, 13, 0, 0, 0, time.UTC)

	req, err := env.svc.CreateRequest(ctx, testInput(desired))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	if _, err := env.svc.Accept(ctx, req.ID, domain.PartyRequester); !errors.Is(err, domain.ErrOutOfTurn) {
		t.Fatalf("self-accept: err = %v, want ErrOutOfTurn", err)
	}

	req, err = env.svc.Accept(ctx, req.ID, domain.PartyProvider)
	if err != nil {
		t.Fatalf("provider accept: %v", err)
	}
	if req.Status != domain.StatusAccepted {
		t.Errorf("status = %s, want accepted", req.Status)
	}
	if req.ProposedTime == nil || !req.ProposedTime.Equal(desired) {
		t.Errorf("final time = %v, want %v", req.ProposedTime, desired)
	}

	// Терминальная заявка неизменяема
	if _, err := env.svc.ProposeTime(ctx, req.ID, domain.PartyProvider, desired.Add(time.Hour)); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("propose after accept: err = %v, want ErrInvalidState", err)
	}
	if _, err := env.svc.Reject(ctx, req.ID, domain.PartyProvider); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("reject after accept: err = %v, want ErrInvalidState", err)
	}
}

func TestRejectFromNegotiation(t *testing.T) {
	env := newTestEnv(true)
	ctx := context.Background()

	req, err := env.svc.CreateRequest(ctx, testInput(time.Now().UTC().Add(24*time.Hour)))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	req, err = env.svc.Reject(ctx, req.ID, domain.PartyProvider)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if req.Status != domain.StatusRejected {
		t.Errorf("status = %s, want rejected", req.Status)
	}

	var rejected int
	for _, n := range env.outbox.notifications {
		if n.Kind == domain.NotificationRejected {
			rejected++
		}
	}
	if rejected != 2 {
		t.Errorf("rejected notifications = %d, want both parties", rejected)
	}
}

func TestExpireIsIdempotent(t *testing.T) {
	env := newTestEnv(true)
	ctx := context.Background()

	req, err := env.svc.CreateRequest(ctx, testInput(time.Now().UTC().Add(24*time.Hour)))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	req, err = env.svc.Expire(ctx, req.ID)
	if err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if req.Status != domain.StatusExpired {
		t.Errorf("status = %s, want expired", req.Status)
	}

	eventsBefore := len(env.events.events)

	// Повторный expire — no-op, не ошибка
	req, err = env.svc.Expire(ctx, req.ID)
	if err != nil {
		t.Fatalf("second Expire: %v", err)
	}
	if req.Status != domain.StatusExpired {
		t.Errorf("status after second expire = %s, want expired", req.Status)
	}
	if len(env.events.events) != eventsBefore {
		t.Errorf("second expire appended events: %d -> %d", eventsBefore, len(env.events.events))
	}
}

func TestToggleAvailabilityDrainsWaitlist(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()

	first, err := env.svc.CreateRequest(ctx, testInput(time.Date(2026, 9, 14, 13, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("CreateRequest first: %v", err)
	}
	second, err := env.svc.CreateRequest(ctx, testInput(time.Date(2026, 9, 15, 13, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("CreateRequest second: %v", err)
	}

	dequeued, err := env.svc.ToggleAvailability(ctx, true)
	if err != nil {
		t.Fatalf("ToggleAvailability: %v", err)
	}
	if dequeued != 2 {
		t.Errorf("dequeued = %d, want 2", dequeued)
	}
	if len(env.waitlist.entries) != 0 {
		t.Errorf("waitlist not drained: %d entries left", len(env.waitlist.entries))
	}

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		stored := env.booking.requests[id]
		if stored.Status != domain.StatusNegotiating {
			t.Errorf("request %s status = %s, want negotiating", id, stored.Status)
		}
		if stored.ProposedBy != domain.PartyRequester {
			t.Errorf("request %s proposed_by = %s, want requester", id, stored.ProposedBy)
		}
		if stored.ProposedTime == nil || !stored.ProposedTime.Equal(*stored.DesiredTime) {
			t.Errorf("request %s proposed_time = %v, want desired %v", id, stored.ProposedTime, stored.DesiredTime)
		}
	}

	// Повторное включение — очередь пуста, без дополнительных dequeue
	dequeued, err = env.svc.ToggleAvailability(ctx, true)
	if err != nil {
		t.Fatalf("second ToggleAvailability: %v", err)
	}
	if dequeued != 0 {
		t.Errorf("second toggle dequeued = %d, want 0", dequeued)
	}
}

func TestWithdrawFromWaitlist(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()

	req, err := env.svc.CreateRequest(ctx, testInput(time.Now().UTC().Add(24*time.Hour)))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	if err := env.svc.Withdraw(ctx, req.ID); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}

	stored := env.booking.requests[req.ID]
	if stored.Status != domain.StatusRejected {
		t.Errorf("status = %s, want rejected", stored.Status)
	}
	if len(env.waitlist.entries) != 0 {
		t.Errorf("waitlist entry not removed")
	}

	// Повторный withdraw — no-op
	if err := env.svc.Withdraw(ctx, req.ID); err != nil {
		t.Fatalf("second Withdraw: %v", err)
	}
}

func TestProposeDirectlyFromWaitlist(t *testing.T) {
	env := newTestEnv(false)
	ctx := context.Background()

	req, err := env.svc.CreateRequest(ctx, testInput(time.Now().UTC().Add(24*time.Hour)))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	proposed := time.Date(2026, 9, 20, 10, 0, 0, 0, time.UTC)
	req, err = env.svc.ProposeTime(ctx, req.ID, domain.PartyProvider, proposed)
	if err != nil {
		t.Fatalf("ProposeTime from waitlist: %v", err)
	}

	if req.Status != domain.StatusNegotiating {
		t.Errorf("status = %s, want negotiating", req.Status)
	}
	if req.ProposedBy != domain.PartyProvider {
		t.Errorf("proposed_by = %s, want provider", req.ProposedBy)
	}
	if len(env.waitlist.entries) != 0 {
		t.Errorf("waitlist entry must be removed by direct proposal")
	}
}

func TestConcurrencyConflictRetriedOnce(t *testing.T) {
	env := newTestEnv(true)
	ctx := context.Background()

	req, err := env.svc.CreateRequest(ctx, testInput(time.Now().UTC().Add(24*time.Hour)))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	env.booking.failUpdates = 1
	req, err = env.svc.Accept(ctx, req.ID, domain.PartyProvider)
	if err != nil {
		t.Fatalf("Accept after transient conflict: %v", err)
	}
	if req.Status != domain.StatusAccepted {
		t.Errorf("status = %s, want accepted", req.Status)
	}

	// Два конфликта подряд исчерпывают единственный повтор
	second, err := env.svc.CreateRequest(ctx, testInput(time.Now().UTC().Add(48*time.Hour)))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	env.booking.failUpdates = 2
	if _, err := env.svc.Accept(ctx, second.ID, domain.PartyProvider); !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Errorf("err = %v, want ErrConcurrencyConflict", err)
	}
}

func TestJournalReplayMatchesProjection(t *testing.T) {
	env := newTestEnv(true)
	ctx := context.Background()
	desired := time.Date(2026, 9, 14, 13, 0, 0, 0, time.UTC)

	req, err := env.svc.CreateRequest(ctx, testInput(desired))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	counter := desired.Add(3 * time.Hour)
	if _, err := env.svc.ProposeTime(ctx, req.ID, domain.PartyProvider, counter); err != nil {
		t.Fatalf("ProposeTime: %v", err)
	}
	if _, err := env.svc.Accept(ctx, req.ID, domain.PartyRequester); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	stored, events, err := env.svc.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}

	p := domain.Replay(events)
	if p.Status != stored.Status {
		t.Errorf("replayed status = %s, stored %s", p.Status, stored.Status)
	}
	if p.ProposedBy != stored.ProposedBy {
		t.Errorf("replayed proposed_by = %s, stored %s", p.ProposedBy, stored.ProposedBy)
	}
	if (p.ProposedTime == nil) != (stored.ProposedTime == nil) {
		t.Fatalf("replayed proposed_time presence mismatch")
	}
	if p.ProposedTime != nil && !p.ProposedTime.Equal(*stored.ProposedTime) {
		t.Errorf("replayed proposed_time = %v, stored %v", p.ProposedTime, stored.ProposedTime)
	}
}
