package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	TgClient "github.com/abriesk/psychobotV1/internal/adapters/secondary/telegram"
	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/pkg/texts"
	"github.com/abriesk/psychobotV1/internal/pkg/tz"
	"github.com/abriesk/psychobotV1/internal/ports/kafka"
	"github.com/abriesk/psychobotV1/internal/ports/repository"
)

const (
	notificationPumpName = "notification-pump"

	defaultPumpInterval = 10 * time.Second
	pumpBatchLimit      = 50
	pumpMaxAttempts     = 10
)

// NotificationPump доставляет строки outbox: телеграм-сообщение получателю
// и событие в Kafka. Доставка at-least-once: строка помечается sent_at только
// после успешной отправки, неудачи увеличивают attempts.
type NotificationPump struct {
	outbox     repository.INotificationRepo
	booking    repository.IBookingRepo
	users      repository.IUserRepo
	client     *TgClient.Client
	producer   kafka.Producer // nil — поток в Kafka выключен
	providerID int64
	interval   time.Duration
	log        *slog.Logger
}

func NewNotificationPump(
	outbox repository.INotificationRepo,
	booking repository.IBookingRepo,
	users repository.IUserRepo,
	client *TgClient.Client,
	producer kafka.Producer,
	providerID int64,
	interval time.Duration,
	log *slog.Logger,
) *NotificationPump {
	if interval <= 0 {
		interval = defaultPumpInterval
	}

	return &NotificationPump{
		outbox:     outbox,
		booking:    booking,
		users:      users,
		client:     client,
		producer:   producer,
		providerID: providerID,
		interval:   interval,
		log:        log,
	}
}

func (j *NotificationPump) Name() string {
	return notificationPumpName
}

// NextRun каждые interval
func (j *NotificationPump) NextRun(now time.Time) time.Time {
	return now.Add(j.interval)
}

// Run забирает пачку неотправленных уведомлений и доставляет их
func (j *NotificationPump) Run(ctx context.Context) error {
	pending, err := j.outbox.ListUnsent(ctx, pumpMaxAttempts, pumpBatchLimit)
	if err != nil {
		return fmt.Errorf("failed to list unsent notifications: %w", err)
	}

	for _, n := range pending {
		if err := j.deliver(ctx, n); err != nil {
			j.log.Warn("notification delivery failed",
				"error", err,
				"notification_id", n.ID,
				"recipient", n.Recipient,
				"attempts", n.Attempts,
			)
			if markErr := j.outbox.MarkFailed(ctx, n.ID, err.Error()); markErr != nil {
				j.log.Error("failed to mark notification failed",
					"error", markErr,
					"notification_id", n.ID,
				)
			}
			continue
		}

		if err := j.outbox.MarkSent(ctx, n.ID, time.Now().UTC()); err != nil {
			// Сообщение уже ушло; при падении здесь будет повторная доставка
			j.log.Error("failed to mark notification sent",
				"error", err,
				"notification_id", n.ID,
			)
		}
	}

	return nil
}

// deliver отправляет одно уведомление: телеграм, затем Kafka (best effort)
func (j *NotificationPump) deliver(ctx context.Context, n *domain.Notification) error {
	req, err := j.booking.GetByID(ctx, n.RequestID)
	if err != nil {
		return fmt.Errorf("failed to load request: %w", err)
	}

	language := "ru"
	if user, err := j.users.Get(ctx, n.Recipient); err == nil && user != nil && texts.IsSupported(user.Language) {
		language = user.Language
	}

	text, keyboard := j.render(n, req, language)

	if keyboard != nil {
		err = j.client.SendMessageWithKeyboard(ctx, n.Recipient, text, keyboard)
	} else {
		err = j.client.SendMessage(ctx, n.Recipient, text)
	}
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	j.publishEvent(ctx, n)
	return nil
}

// render собирает текст и клавиатуру под тип уведомления
func (j *NotificationPump) render(n *domain.Notification, req *domain.BookingRequest, language string) (string, map[string]interface{}) {
	if n.Kind == domain.NotificationCustom && n.Message != "" {
		return n.Message, nil
	}

	proposedAt := ""
	if n.ProposedTime != nil {
		loc := req.Timezone
		if n.Recipient == j.providerID {
			// Провайдер видит время в UTC, клиент — в своём поясе
			loc = "UTC+0"
		}
		proposedAt = tz.Format(*n.ProposedTime, loc)
	}

	switch n.Kind {
	case domain.NotificationProposal:
		text := texts.Getf(language, "proposal_received", proposedAt)
		return text, j.proposalKeyboard(n, language)
	case domain.NotificationAccepted:
		return texts.Getf(language, "accepted", proposedAt), nil
	case domain.NotificationRejected:
		return texts.Get(language, "rejected"), nil
	case domain.NotificationExpired:
		return texts.Get(language, "expired"), nil
	case domain.NotificationWaitlisted:
		return texts.Getf(language, "waitlisted", n.RequestID.String()), nil
	case domain.NotificationDequeued:
		return texts.Get(language, "dequeued"), nil
	default:
		return n.Message, nil
	}
}

// proposalKeyboard кнопки ответа на предложение времени.
// Провайдер получает админские кнопки, клиент — пользовательские.
func (j *NotificationPump) proposalKeyboard(n *domain.Notification, language string) map[string]interface{} {
	id := n.RequestID.String()

	if n.Recipient == j.providerID {
		return map[string]interface{}{
			"inline_keyboard": [][]map[string]interface{}{
				{
					{"text": texts.Get(language, "btn_agree"), "callback_data": "adm_accept_" + id},
					{"text": texts.Get(language, "btn_counter"), "callback_data": "adm_prop_" + id},
				},
				{
					{"text": texts.Get(language, "btn_decline"), "callback_data": "adm_reject_" + id},
				},
			},
		}
	}

	return map[string]interface{}{
		"inline_keyboard": [][]map[string]interface{}{
			{
				{"text": texts.Get(language, "btn_agree"), "callback_data": "usr_yes_" + id},
				{"text": texts.Get(language, "btn_counter"), "callback_data": "usr_counter_" + id},
			},
		},
	}
}

// outboundEvent формат сообщения в Kafka
type outboundEvent struct {
	EventID      string     `json:"event_id"`
	RequestID    string     `json:"request_id"`
	Recipient    int64      `json:"recipient"`
	Kind         string     `json:"kind"`
	OldStatus    string     `json:"old_status"`
	NewStatus    string     `json:"new_status"`
	Actor        string     `json:"actor"`
	ProposedTime *time.Time `json:"proposed_time,omitempty"`
}

// publishEvent шлёт событие в Kafka; неуспех не блокирует доставку в телеграм
func (j *NotificationPump) publishEvent(ctx context.Context, n *domain.Notification) {
	if j.producer == nil {
		return
	}

	payload, err := json.Marshal(outboundEvent{
		EventID:      n.EventID.String(),
		RequestID:    n.RequestID.String(),
		Recipient:    n.Recipient,
		Kind:         string(n.Kind),
		OldStatus:    string(n.OldStatus),
		NewStatus:    string(n.NewStatus),
		Actor:        string(n.Actor),
		ProposedTime: n.ProposedTime,
	})
	if err != nil {
		j.log.Error("failed to marshal outbound event", "error", err, "notification_id", n.ID)
		return
	}

	if err := j.producer.Send(ctx, n.EventID.String(), payload); err != nil {
		j.log.Warn("failed to publish event to kafka",
			"error", err,
			"event_id", n.EventID,
		)
	}
}
