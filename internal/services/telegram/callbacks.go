package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/pkg/texts"
)

const (
	counterKeyPrefix = "psychobot:counter:"
	counterTTL       = 30 * time.Minute
)

// HandleCallback обрабатывает нажатие inline-кнопки
func (s *Service) HandleCallback(ctx context.Context, cb *domain.CallbackQuery, updateID int64) error {
	if cb == nil || cb.From == nil || cb.Data == nil {
		return nil
	}
	data := *cb.Data

	language := ""
	if cb.From.LanguageCode != nil {
		language = *cb.From.LanguageCode
	}

	user, err := s.Engine.GetOrCreateUser(ctx, cb.From.ID, language)
	if err != nil {
		s.Log.Error("failed to get or create user",
			"error", err,
			"telegram_user_id", cb.From.ID,
			"update_id", updateID,
		)
		return fmt.Errorf("failed to get or create user: %w", err)
	}

	if err := s.routeCallback(ctx, user, cb, data); err != nil {
		s.Log.Error("failed to handle callback",
			"error", err,
			"data", data,
			"user_id", user.ID,
			"update_id", updateID,
		)
		return s.answerCallback(ctx, cb.ID, texts.ForError(user.Language, err), true)
	}

	return nil
}

func (s *Service) routeCallback(ctx context.Context, user *domain.User, cb *domain.CallbackQuery, data string) error {
	switch {
	case data == "lang_ru" || data == "lang_en":
		return s.setLanguage(ctx, user, cb, strings.TrimPrefix(data, "lang_"))

	case data == "fmt_online":
		return s.ackAnd(ctx, cb, s.handleIntakeFormat(ctx, user, domain.FormatOnline))
	case data == "fmt_onsite":
		return s.ackAnd(ctx, cb, s.handleIntakeFormat(ctx, user, domain.FormatOnsite))

	case data == "kind_individual":
		return s.ackAnd(ctx, cb, s.handleIntakeKind(ctx, user, domain.SessionKindIndividual))
	case data == "kind_couple":
		return s.ackAnd(ctx, cb, s.handleIntakeKind(ctx, user, domain.SessionKindCouple))

	case strings.HasPrefix(data, "usr_yes_"):
		return s.acceptCallback(ctx, user, cb, strings.TrimPrefix(data, "usr_yes_"), domain.PartyRequester)
	case strings.HasPrefix(data, "usr_counter_"):
		return s.counterCallback(ctx, user, cb, strings.TrimPrefix(data, "usr_counter_"))
	case strings.HasPrefix(data, "usr_cancel_"):
		return s.withdrawCallback(ctx, user, cb, strings.TrimPrefix(data, "usr_cancel_"))

	case strings.HasPrefix(data, "adm_accept_"):
		return s.adminOnly(user, func() error {
			return s.acceptCallback(ctx, user, cb, strings.TrimPrefix(data, "adm_accept_"), domain.PartyProvider)
		})
	case strings.HasPrefix(data, "adm_prop_"):
		return s.adminOnly(user, func() error {
			return s.counterCallback(ctx, user, cb, strings.TrimPrefix(data, "adm_prop_"))
		})
	case strings.HasPrefix(data, "adm_reject_"):
		return s.adminOnly(user, func() error {
			return s.rejectCallback(ctx, user, cb, strings.TrimPrefix(data, "adm_reject_"))
		})

	default:
		s.Log.Warn("unknown callback data", "data", data, "user_id", user.ID)
		return s.answerCallback(ctx, cb.ID, "", false)
	}
}

func (s *Service) adminOnly(user *domain.User, fn func() error) error {
	if !s.isAdmin(user.ID) {
		return domain.ErrInvalidState
	}
	return fn()
}

func (s *Service) setLanguage(ctx context.Context, user *domain.User, cb *domain.CallbackQuery, lang string) error {
	if err := s.Engine.SetUserLanguage(ctx, user.ID, lang); err != nil {
		return err
	}
	if err := s.answerCallback(ctx, cb.ID, "", false); err != nil {
		return err
	}
	return s.send(ctx, user.ID, texts.Get(lang, "language_set"))
}

// acceptCallback кнопка подтверждения предложенного времени
func (s *Service) acceptCallback(ctx context.Context, user *domain.User, cb *domain.CallbackQuery, rawID string, actor domain.Party) error {
	requestID, err := uuid.Parse(rawID)
	if err != nil {
		return domain.ErrNotFound
	}

	req, err := s.Engine.Accept(ctx, requestID, actor)
	if err != nil {
		return err
	}

	if err := s.answerCallback(ctx, cb.ID, "✅", false); err != nil {
		return err
	}

	// Уведомления обеим сторонам уйдут через outbox, здесь только убираем клавиатуру
	if cb.Message != nil && req.ProposedTime != nil {
		text := texts.Getf(user.Language, "accepted", formatForUser(*req.ProposedTime, req.Timezone))
		if err := s.Client.EditMessageText(ctx, cb.Message.Chat.ID, cb.Message.MessageID, text); err != nil {
			s.Log.Warn("failed to edit message after accept", "error", err)
		}
	}
	return nil
}

// counterCallback кнопка "предложить другое время": ждём текст со временем
func (s *Service) counterCallback(ctx context.Context, user *domain.User, cb *domain.CallbackQuery, rawID string) error {
	requestID, err := uuid.Parse(rawID)
	if err != nil {
		return domain.ErrNotFound
	}

	// Проверяем, что заявка существует и ещё открыта
	req, _, err := s.Engine.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status.IsTerminal() {
		return domain.ErrInvalidState
	}

	key := fmt.Sprintf("%s%d", counterKeyPrefix, user.ID)
	if err := s.Cache.Set(ctx, key, requestID.String(), counterTTL); err != nil {
		return err
	}

	if err := s.answerCallback(ctx, cb.ID, "", false); err != nil {
		return err
	}
	return s.send(ctx, user.ID, texts.Get(user.Language, "counter_prompt"))
}

// withdrawCallback клиент снимает заявку из листа ожидания
func (s *Service) withdrawCallback(ctx context.Context, user *domain.User, cb *domain.CallbackQuery, rawID string) error {
	requestID, err := uuid.Parse(rawID)
	if err != nil {
		return domain.ErrNotFound
	}

	if err := s.Engine.Withdraw(ctx, requestID); err != nil {
		return err
	}

	if err := s.answerCallback(ctx, cb.ID, "", false); err != nil {
		return err
	}
	return s.send(ctx, user.ID, texts.Get(user.Language, "rejected"))
}

func (s *Service) rejectCallback(ctx context.Context, user *domain.User, cb *domain.CallbackQuery, rawID string) error {
	requestID, err := uuid.Parse(rawID)
	if err != nil {
		return domain.ErrNotFound
	}

	if _, err := s.Engine.Reject(ctx, requestID, domain.PartyProvider); err != nil {
		return err
	}

	return s.answerCallback(ctx, cb.ID, "✅", false)
}

// handleCounterText текст со встречным временем после кнопки counter
func (s *Service) handleCounterText(ctx context.Context, user *domain.User, text string) (bool, error) {
	key := fmt.Sprintf("%s%d", counterKeyPrefix, user.ID)
	rawID, err := s.Cache.Get(ctx, key)
	if err != nil || rawID == "" {
		return false, err
	}

	requestID, err := uuid.Parse(rawID)
	if err != nil {
		s.dropCounterState(ctx, user.ID)
		return false, nil
	}

	req, _, err := s.Engine.GetRequest(ctx, requestID)
	if err != nil {
		s.dropCounterState(ctx, user.ID)
		return true, s.send(ctx, user.ID, texts.ForError(user.Language, err))
	}

	t, err := parseLocalTime(text, req.Timezone)
	if err != nil {
		return true, s.send(ctx, user.ID, texts.Get(user.Language, "bad_time"))
	}

	actor := domain.PartyRequester
	if s.isAdmin(user.ID) && user.ID != req.RequesterID {
		actor = domain.PartyProvider
	}

	if _, err := s.Engine.ProposeTime(ctx, requestID, actor, t); err != nil {
		s.dropCounterState(ctx, user.ID)
		return true, s.send(ctx, user.ID, texts.ForError(user.Language, err))
	}

	s.dropCounterState(ctx, user.ID)
	return true, s.send(ctx, user.ID, texts.Get(user.Language, "confirm_sent"))
}

func (s *Service) dropCounterState(ctx context.Context, userID int64) {
	key := fmt.Sprintf("%s%d", counterKeyPrefix, userID)
	if err := s.Cache.Delete(ctx, key); err != nil {
		s.Log.Warn("failed to drop counter state", "error", err, "user_id", userID)
	}
}

// answerCallback отвечает на callback query (убирает "часики" на кнопке)
func (s *Service) answerCallback(ctx context.Context, callbackID, text string, showAlert bool) error {
	if err := s.Client.AnswerCallbackQuery(ctx, callbackID, text, showAlert); err != nil {
		s.Log.Error("failed to answer callback query",
			"error", err,
			"callback_id", callbackID,
		)
		return fmt.Errorf("failed to answer callback query: %w", err)
	}
	return nil
}

// ackAnd отвечает на callback и возвращает результат шага анкеты
func (s *Service) ackAnd(ctx context.Context, cb *domain.CallbackQuery, stepErr error) error {
	if err := s.answerCallback(ctx, cb.ID, "", false); err != nil {
		return err
	}
	return stepErr
}
