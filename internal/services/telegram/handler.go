package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/pkg/texts"
)

// HandleUpdate основной метод для обработки всех типов обновлений
func (s *Service) HandleUpdate(ctx context.Context, update *domain.Update) error {
	if update == nil {
		return fmt.Errorf("update is nil")
	}

	if update.CallbackQuery != nil {
		return s.HandleCallback(ctx, update.CallbackQuery, update.UpdateID)
	}

	if update.Message != nil {
		return s.HandleMessage(ctx, update.Message, update.UpdateID)
	}

	return nil
}

// HandleMessage обрабатывает входящее сообщение
func (s *Service) HandleMessage(ctx context.Context, message *domain.Message, updateID int64) error {
	if message == nil {
		return fmt.Errorf("message is nil")
	}

	if message.From == nil || message.From.IsBot {
		s.Log.Debug("ignoring message from bot", "update_id", updateID)
		return nil
	}

	if message.Chat != nil && message.Chat.Type != "private" {
		s.Log.Warn("ignoring message from group/chat",
			"update_id", updateID,
			"chat_type", message.Chat.Type,
			"chat_id", message.Chat.ID,
		)
		return nil
	}

	language := ""
	if message.From.LanguageCode != nil {
		language = *message.From.LanguageCode
	}

	user, err := s.Engine.GetOrCreateUser(ctx, message.From.ID, language)
	if err != nil {
		s.Log.Error("failed to get or create user",
			"error", err,
			"telegram_user_id", message.From.ID,
			"update_id", updateID,
		)
		return fmt.Errorf("failed to get or create user: %w", err)
	}

	if message.Text == nil {
		return nil
	}
	text := *message.Text

	if IsCommand(text) {
		return s.handleCommand(ctx, user, ParseCommand(text))
	}

	return s.handleText(ctx, user, text)
}

// handleCommand обрабатывает команду бота
func (s *Service) handleCommand(ctx context.Context, user *domain.User, command string) error {
	switch command {
	case "start":
		return s.send(ctx, user.ID, texts.Get(user.Language, "start"))
	case "help":
		return s.send(ctx, user.ID, texts.Get(user.Language, "help"))
	case "book":
		return s.startIntake(ctx, user)
	case "cancel":
		return s.cancelIntake(ctx, user)
	case "language":
		return s.sendLanguageKeyboard(ctx, user)
	default:
		return s.send(ctx, user.ID, texts.Get(user.Language, "help"))
	}
}

// handleText свободный текст: либо шаг анкеты, либо встречное время
func (s *Service) handleText(ctx context.Context, user *domain.User, text string) error {
	handled, err := s.handleCounterText(ctx, user, text)
	if err != nil || handled {
		return err
	}

	handled, err = s.handleIntakeText(ctx, user, text)
	if err != nil || handled {
		return err
	}

	// Текст вне анкеты: подсказываем команды
	return s.send(ctx, user.ID, texts.Get(user.Language, "help"))
}

func ParseCommand(text string) string {
	text = strings.TrimPrefix(text, "/")

	if idx := strings.Index(text, "@"); idx != -1 {
		text = text[:idx]
	}

	if idx := strings.Index(text, " "); idx != -1 {
		text = text[:idx]
	}

	return text
}

func IsCommand(text string) bool {
	return len(text) > 0 && text[0] == '/'
}
