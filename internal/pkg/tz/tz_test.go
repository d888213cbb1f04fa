package tz

import (
	"testing"
	"time"
)

func TestParseOffset(t *testing.T) {
	valid := []struct {
		in   string
		name string
	}{
		{"UTC+3", "UTC+3"},
		{"utc-5", "UTC-5"},
		{" UTC + 10 ", "UTC+10"},
		{"UTC+0", "UTC+0"},
		{"UTC-12", "UTC-12"},
		{"UTC+14", "UTC+14"},
	}
	for _, tc := range valid {
		loc, err := ParseOffset(tc.in)
		if err != nil {
			t.Errorf("ParseOffset(%q): %v", tc.in, err)
			continue
		}
		if loc.String() != tc.name {
			t.Errorf("ParseOffset(%q) = %s, want %s", tc.in, loc.String(), tc.name)
		}
	}

	invalid := []string{"", "GMT+3", "UTC", "UTC+15", "UTC-13", "Moscow", "+3", "UTC+3:30"}
	for _, in := range invalid {
		if _, err := ParseOffset(in); err == nil {
			t.Errorf("ParseOffset(%q): expected error", in)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("utc - 4"); got != "UTC-4" {
		t.Errorf("Normalize = %q, want UTC-4", got)
	}
	// Невалидный ввод возвращается как есть, только без пробелов по краям
	if got := Normalize(" Mars "); got != "Mars" {
		t.Errorf("Normalize = %q, want Mars", got)
	}
}

func TestParseLocal(t *testing.T) {
	got, err := ParseLocal("2026-09-14 16:00", "UTC+3")
	if err != nil {
		t.Fatalf("ParseLocal: %v", err)
	}
	want := time.Date(2026, 9, 14, 13, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseLocal = %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("ParseLocal must return UTC, got %v", got.Location())
	}

	if _, err := ParseLocal("tomorrow", "UTC+3"); err == nil {
		t.Error("expected error for unparseable time")
	}
}

func TestFormat(t *testing.T) {
	utc := time.Date(2026, 9, 14, 13, 0, 0, 0, time.UTC)
	if got := Format(utc, "UTC+3"); got != "2026-09-14 16:00 (UTC+3)" {
		t.Errorf("Format = %q", got)
	}
	// Неразборчивый пояс показываем как UTC
	if got := Format(utc, "somewhere"); got != "2026-09-14 13:00 (UTC)" {
		t.Errorf("Format fallback = %q", got)
	}
}
