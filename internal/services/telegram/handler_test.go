package telegram

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/start", "start"},
		{"/book@psychobot", "book"},
		{"/language ru", "language"},
		{"/cancel@psychobot now", "cancel"},
		{"help", "help"},
	}
	for _, tc := range tests {
		if got := ParseCommand(tc.in); got != tc.want {
			t.Errorf("ParseCommand(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsCommand(t *testing.T) {
	if !IsCommand("/start") {
		t.Error("IsCommand(/start) = false")
	}
	if IsCommand("hello") {
		t.Error("IsCommand(hello) = true")
	}
	if IsCommand("") {
		t.Error("IsCommand(empty) = true")
	}
}
