package telegram

import (
	"time"

	"github.com/abriesk/psychobotV1/internal/pkg/tz"
)

func parseUTCOffset(text string) (*time.Location, error) {
	return tz.ParseOffset(text)
}

func normalizeUTCOffset(text string) string {
	return tz.Normalize(text)
}

func parseLocalTime(text, offset string) (time.Time, error) {
	return tz.ParseLocal(text, offset)
}

func formatForUser(t time.Time, offset string) string {
	return tz.Format(t, offset)
}
