package negotiation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/google/uuid"
)

const (
	settingsCacheKey = "psychobot:settings"
	settingsCacheTTL = time.Minute
)

// GetRequest возвращает заявку и полный журнал её переговоров
func (s *Service) GetRequest(ctx context.Context, requestID uuid.UUID) (*domain.BookingRequest, []*domain.NegotiationEvent, error) {
	req, err := s.booking.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}

	events, err := s.events.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}

	return req, events, nil
}

// ListByProvider заявки провайдера в указанном статусе (для админки).
// providerID == 0 означает сконфигурированного провайдера.
func (s *Service) ListByProvider(ctx context.Context, providerID int64, status domain.RequestStatus) ([]*domain.BookingRequest, error) {
	if providerID == 0 {
		providerID = s.providerID
	}
	return s.booking.ListByProvider(ctx, providerID, status)
}

// Settings настройки провайдера; прайс кешируется (cache-aside с коротким TTL),
// кеш опционален — при его отсутствии или промахе читаем хранилище
func (s *Service) Settings(ctx context.Context) (*domain.Settings, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, settingsCacheKey); err == nil {
			var cached domain.Settings
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(settings); err == nil {
			if err := s.cache.Set(ctx, settingsCacheKey, string(raw), settingsCacheTTL); err != nil {
				s.Log.Debug("failed to cache settings", "error", err)
			}
		}
	}

	return settings, nil
}

// UpdatePrices обновляет прайс и сбрасывает кеш
func (s *Service) UpdatePrices(ctx context.Context, individual, couple string) error {
	if err := s.settings.UpdatePrices(ctx, individual, couple); err != nil {
		return err
	}
	s.invalidateSettingsCache(ctx)
	return nil
}

func (s *Service) invalidateSettingsCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
		s.Log.Debug("failed to invalidate settings cache", "error", err)
	}
}
