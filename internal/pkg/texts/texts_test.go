package texts

import (
	"fmt"
	"testing"

	"github.com/abriesk/psychobotV1/internal/domain"
)

func TestGetFallsBackToRussian(t *testing.T) {
	if got := Get("en", "start"); got == "" || got == "start" {
		t.Errorf("Get(en, start) = %q", got)
	}
	// Неизвестный язык падает на русский
	if got, ru := Get("de", "start"), Get("ru", "start"); got != ru {
		t.Errorf("Get(de, start) = %q, want %q", got, ru)
	}
	// Неизвестный ключ возвращается как есть
	if got := Get("ru", "no_such_key"); got != "no_such_key" {
		t.Errorf("Get(ru, no_such_key) = %q", got)
	}
}

func TestEveryKeyPresentInAllLanguages(t *testing.T) {
	for _, lang := range Supported() {
		if !IsSupported(lang) {
			t.Fatalf("language %s not supported", lang)
		}
	}

	ru := messages["ru"]
	for _, lang := range Supported() {
		m := messages[lang]
		if len(m) != len(ru) {
			t.Errorf("language %s has %d keys, ru has %d", lang, len(m), len(ru))
		}
		for key := range ru {
			if _, ok := m[key]; !ok {
				t.Errorf("language %s missing key %q", lang, key)
			}
		}
	}
}

func TestForError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrOutOfTurn, "err_out_of_turn"},
		{domain.ErrInvalidState, "err_invalid_state"},
		{domain.ErrNotFound, "err_not_found"},
		{fmt.Errorf("boom"), "err_try_again"},
		{fmt.Errorf("wrapped: %w", domain.ErrOutOfTurn), "err_out_of_turn"},
	}
	for _, tc := range tests {
		if got := ForError("ru", tc.err); got != Get("ru", tc.want) {
			t.Errorf("ForError(%v) = %q, want %q", tc.err, got, Get("ru", tc.want))
		}
	}
}
