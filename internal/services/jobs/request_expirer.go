package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/ports/repository"
	"github.com/abriesk/psychobotV1/internal/ports/service"
)

const requestExpirerName = "request-expirer"

// RequestExpirer закрывает переговоры, по которым долго нет ответа.
// TTL читается из настроек при каждом запуске, заявки закрываются через
// движок (Expire), чтобы в журнале остались события и ушли уведомления.
type RequestExpirer struct {
	booking  repository.IBookingRepo
	settings repository.ISettingsRepo
	engine   service.INegotiationService
	interval time.Duration
	log      *slog.Logger
}

func NewRequestExpirer(
	booking repository.IBookingRepo,
	settings repository.ISettingsRepo,
	engine service.INegotiationService,
	interval time.Duration,
	log *slog.Logger,
) *RequestExpirer {
	if interval <= 0 {
		interval = time.Hour
	}

	return &RequestExpirer{
		booking:  booking,
		settings: settings,
		engine:   engine,
		interval: interval,
		log:      log,
	}
}

func (j *RequestExpirer) Name() string {
	return requestExpirerName
}

// NextRun каждые interval
func (j *RequestExpirer) NextRun(now time.Time) time.Time {
	return now.Add(j.interval)
}

// Run находит зависшие переговоры и закрывает их
func (j *RequestExpirer) Run(ctx context.Context) error {
	settings, err := j.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	ttl := time.Duration(settings.NegotiationTTLHours) * time.Hour
	if ttl <= 0 {
		return nil
	}

	cutoff := time.Now().UTC().Add(-ttl)
	staleIDs, err := j.booking.ListStale(ctx, domain.StatusNegotiating, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list stale requests: %w", err)
	}

	if len(staleIDs) == 0 {
		return nil
	}

	expired := 0
	for _, id := range staleIDs {
		if _, err := j.engine.Expire(ctx, id); err != nil {
			// Одна ошибка не должна останавливать остальные: лог и дальше
			j.log.Error("failed to expire stale request",
				"error", err,
				"request_id", id,
			)
			continue
		}
		expired++
	}

	j.log.Info("stale requests expired",
		"found", len(staleIDs),
		"expired", expired,
		"cutoff", cutoff,
	)
	return nil
}
