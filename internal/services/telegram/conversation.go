package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/pkg/texts"
	"github.com/abriesk/psychobotV1/internal/ports/service"
)

const (
	intakeKeyPrefix = "psychobot:intake:"
	intakeTTL       = 30 * time.Minute

	stepFormat   = "format"
	stepKind     = "kind"
	stepTimezone = "timezone"
	stepTime     = "time"
	stepProblem  = "problem"
)

// intakeDraft состояние заполняемой анкеты, живёт в кэше
type intakeDraft struct {
	Step        string               `json:"step"`
	Format      domain.SessionFormat `json:"format,omitempty"`
	Kind        domain.SessionKind   `json:"kind,omitempty"`
	Timezone    string               `json:"timezone,omitempty"`
	DesiredTime *time.Time           `json:"desired_time,omitempty"` // UTC
}

func intakeKey(userID int64) string {
	return fmt.Sprintf("%s%d", intakeKeyPrefix, userID)
}

func (s *Service) loadDraft(ctx context.Context, userID int64) (*intakeDraft, error) {
	raw, err := s.Cache.Get(ctx, intakeKey(userID))
	if err != nil || raw == "" {
		return nil, err
	}

	var draft intakeDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal intake draft: %w", err)
	}
	return &draft, nil
}

func (s *Service) saveDraft(ctx context.Context, userID int64, draft *intakeDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal intake draft: %w", err)
	}
	return s.Cache.Set(ctx, intakeKey(userID), string(raw), intakeTTL)
}

func (s *Service) dropDraft(ctx context.Context, userID int64) {
	if err := s.Cache.Delete(ctx, intakeKey(userID)); err != nil {
		s.Log.Warn("failed to drop intake draft", "error", err, "user_id", userID)
	}
}

// startIntake начинает анкету с выбора формата
func (s *Service) startIntake(ctx context.Context, user *domain.User) error {
	if err := s.saveDraft(ctx, user.ID, &intakeDraft{Step: stepFormat}); err != nil {
		return err
	}

	keyboard := inlineKeyboard([][]inlineButton{{
		{Text: texts.Get(user.Language, "btn_online"), Data: "fmt_online"},
		{Text: texts.Get(user.Language, "btn_onsite"), Data: "fmt_onsite"},
	}})
	return s.sendKeyboard(ctx, user.ID, texts.Get(user.Language, "ask_format"), keyboard)
}

// cancelIntake прерывает анкету и ожидание встречного времени
func (s *Service) cancelIntake(ctx context.Context, user *domain.User) error {
	s.dropDraft(ctx, user.ID)
	s.dropCounterState(ctx, user.ID)
	return s.send(ctx, user.ID, texts.Get(user.Language, "cancelled"))
}

// handleIntakeFormat шаг выбора формата (callback)
func (s *Service) handleIntakeFormat(ctx context.Context, user *domain.User, format domain.SessionFormat) error {
	draft, err := s.loadDraft(ctx, user.ID)
	if err != nil {
		return err
	}
	if draft == nil || draft.Step != stepFormat {
		return nil
	}

	draft.Format = format
	draft.Step = stepKind
	if err := s.saveDraft(ctx, user.ID, draft); err != nil {
		return err
	}

	if format == domain.FormatOnsite && s.ClinicInfo != "" {
		if err := s.send(ctx, user.ID, texts.Getf(user.Language, "onsite_link", s.ClinicInfo)); err != nil {
			return err
		}
	}

	settings, err := s.Engine.Settings(ctx)
	if err != nil {
		s.Log.Error("failed to load settings for intake", "error", err)
		return s.send(ctx, user.ID, texts.Get(user.Language, "err_try_again"))
	}

	keyboard := inlineKeyboard([][]inlineButton{
		{{Text: texts.Getf(user.Language, "btn_individual", settings.IndividualPrice), Data: "kind_individual"}},
		{{Text: texts.Getf(user.Language, "btn_couple", settings.CouplePrice), Data: "kind_couple"}},
	})
	return s.sendKeyboard(ctx, user.ID, texts.Get(user.Language, "ask_kind"), keyboard)
}

// handleIntakeKind шаг выбора типа консультации (callback)
func (s *Service) handleIntakeKind(ctx context.Context, user *domain.User, kind domain.SessionKind) error {
	draft, err := s.loadDraft(ctx, user.ID)
	if err != nil {
		return err
	}
	if draft == nil || draft.Step != stepKind {
		return nil
	}

	draft.Kind = kind
	draft.Step = stepTimezone
	if err := s.saveDraft(ctx, user.ID, draft); err != nil {
		return err
	}

	return s.send(ctx, user.ID, texts.Get(user.Language, "ask_timezone"))
}

// handleIntakeText текстовые шаги анкеты: таймзона, время, описание
func (s *Service) handleIntakeText(ctx context.Context, user *domain.User, text string) (bool, error) {
	draft, err := s.loadDraft(ctx, user.ID)
	if err != nil {
		return false, err
	}
	if draft == nil {
		return false, nil
	}

	switch draft.Step {
	case stepTimezone:
		if _, err := parseUTCOffset(text); err != nil {
			return true, s.send(ctx, user.ID, texts.Get(user.Language, "bad_timezone"))
		}
		draft.Timezone = normalizeUTCOffset(text)
		draft.Step = stepTime
		if err := s.saveDraft(ctx, user.ID, draft); err != nil {
			return true, err
		}
		return true, s.send(ctx, user.ID, texts.Get(user.Language, "ask_time"))

	case stepTime:
		t, err := parseLocalTime(text, draft.Timezone)
		if err != nil {
			return true, s.send(ctx, user.ID, texts.Get(user.Language, "bad_time"))
		}
		draft.DesiredTime = &t
		draft.Step = stepProblem
		if err := s.saveDraft(ctx, user.ID, draft); err != nil {
			return true, err
		}
		return true, s.send(ctx, user.ID, texts.Get(user.Language, "ask_problem"))

	case stepProblem:
		return true, s.submitIntake(ctx, user, draft, text)

	default:
		// Анкета ждёт нажатия кнопки, текст игнорируем
		return true, nil
	}
}

// submitIntake создаёт заявку из заполненной анкеты
func (s *Service) submitIntake(ctx context.Context, user *domain.User, draft *intakeDraft, problem string) error {
	req, err := s.Engine.CreateRequest(ctx, service.CreateRequestInput{
		RequesterID: user.ID,
		SessionKind: draft.Kind,
		Format:      draft.Format,
		Timezone:    draft.Timezone,
		Problem:     problem,
		DesiredTime: draft.DesiredTime,
	})
	if err != nil {
		s.Log.Error("failed to create booking request",
			"error", err,
			"user_id", user.ID,
		)
		return s.send(ctx, user.ID, texts.ForError(user.Language, err))
	}

	s.dropDraft(ctx, user.ID)

	if req.Status == domain.StatusWaitlisted {
		if err := s.send(ctx, user.ID, texts.Get(user.Language, "waitlist_intro")); err != nil {
			return err
		}
		keyboard := inlineKeyboard([][]inlineButton{{
			{Text: texts.Get(user.Language, "btn_decline"), Data: "usr_cancel_" + req.ID.String()},
		}})
		return s.sendKeyboard(ctx, user.ID,
			texts.Getf(user.Language, "waitlisted", req.ID.String()), keyboard)
	}

	return s.send(ctx, user.ID, texts.Get(user.Language, "confirm_sent"))
}
