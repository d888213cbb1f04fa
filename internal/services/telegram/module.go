package telegram

import (
	"log/slog"

	TgClient "github.com/abriesk/psychobotV1/internal/adapters/secondary/telegram"
	"github.com/abriesk/psychobotV1/internal/ports/cache"
	"github.com/abriesk/psychobotV1/internal/ports/service"
)

// Service транспортный слой бота: принимает апдейты Telegram,
// ведёт анкету записи и транслирует кнопки в операции движка.
type Service struct {
	Client     *TgClient.Client
	Engine     service.INegotiationService
	Cache      cache.Cache
	ProviderID int64
	AdminIDs   map[int64]bool
	ClinicInfo string
	Log        *slog.Logger
}

func New(
	client *TgClient.Client,
	engine service.INegotiationService,
	cacheClient cache.Cache,
	providerID int64,
	adminIDs []int64,
	clinicInfo string,
	log *slog.Logger,
) *Service {
	admins := make(map[int64]bool, len(adminIDs)+1)
	admins[providerID] = true
	for _, id := range adminIDs {
		admins[id] = true
	}

	return &Service{
		Client:     client,
		Engine:     engine,
		Cache:      cacheClient,
		ProviderID: providerID,
		AdminIDs:   admins,
		ClinicInfo: clinicInfo,
		Log:        log,
	}
}

// isAdmin провайдер и перечисленные админы
func (s *Service) isAdmin(userID int64) bool {
	return s.AdminIDs[userID]
}
