package telegram

import (
	"context"
	"fmt"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/pkg/texts"
)

// inlineButton кнопка inline-клавиатуры
type inlineButton struct {
	Text string
	Data string
}

// inlineKeyboard собирает reply_markup для Telegram API
func inlineKeyboard(rows [][]inlineButton) map[string]interface{} {
	markup := make([][]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		buttons := make([]map[string]interface{}, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, map[string]interface{}{
				"text":          b.Text,
				"callback_data": b.Data,
			})
		}
		markup = append(markup, buttons)
	}
	return map[string]interface{}{"inline_keyboard": markup}
}

// send отправляет текстовое сообщение пользователю
func (s *Service) send(ctx context.Context, chatID int64, text string) error {
	if err := s.Client.SendMessage(ctx, chatID, text); err != nil {
		s.Log.Error("failed to send message",
			"error", err,
			"chat_id", chatID,
		)
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// sendKeyboard отправляет сообщение с inline-клавиатурой
func (s *Service) sendKeyboard(ctx context.Context, chatID int64, text string, keyboard map[string]interface{}) error {
	if err := s.Client.SendMessageWithKeyboard(ctx, chatID, text, keyboard); err != nil {
		s.Log.Error("failed to send message with keyboard",
			"error", err,
			"chat_id", chatID,
		)
		return fmt.Errorf("failed to send message with keyboard: %w", err)
	}
	return nil
}

// sendLanguageKeyboard клавиатура выбора языка
func (s *Service) sendLanguageKeyboard(ctx context.Context, user *domain.User) error {
	keyboard := inlineKeyboard([][]inlineButton{{
		{Text: "Русский", Data: "lang_ru"},
		{Text: "English", Data: "lang_en"},
	}})
	return s.sendKeyboard(ctx, user.ID, texts.Get(user.Language, "choose_language"), keyboard)
}
