// Package tz разбор пользовательских таймзон вида "UTC+3" / "UTC-11".
// Клиенты указывают пояс свободным текстом, полноценные имена IANA не нужны.
package tz

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout формат дат в диалоге с пользователем
const Layout = "2006-01-02 15:04"

var offsetRe = regexp.MustCompile(`^(?i)utc\s*([+-])\s*(\d{1,2})$`)

// ParseOffset разбирает таймзону вида UTC+3 / UTC-11
func ParseOffset(text string) (*time.Location, error) {
	m := offsetRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil, fmt.Errorf("invalid utc offset: %q", text)
	}

	hours, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, fmt.Errorf("invalid utc offset: %q", text)
	}
	if m[1] == "-" {
		hours = -hours
	}
	if hours < -12 || hours > 14 {
		return nil, fmt.Errorf("utc offset out of range: %d", hours)
	}

	name := fmt.Sprintf("UTC%+d", hours)
	return time.FixedZone(name, hours*3600), nil
}

// Normalize приводит валидный оффсет к каноничному виду "UTC+3"
func Normalize(text string) string {
	loc, err := ParseOffset(text)
	if err != nil {
		return strings.TrimSpace(text)
	}
	return loc.String()
}

// ParseLocal разбирает "2006-01-02 15:04" в указанном поясе, возвращает UTC
func ParseLocal(text, offset string) (time.Time, error) {
	loc, err := ParseOffset(offset)
	if err != nil {
		loc = time.UTC
	}

	t, err := time.ParseInLocation(Layout, strings.TrimSpace(text), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", text, err)
	}
	return t.UTC(), nil
}

// Format показывает UTC время в указанном поясе с его подписью
func Format(t time.Time, offset string) string {
	loc, err := ParseOffset(offset)
	if err != nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return local.Format(Layout) + " (" + loc.String() + ")"
}
