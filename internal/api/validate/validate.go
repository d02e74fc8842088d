package validate

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	hhmmRx  = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	colorRx = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// NonEmpty rejects blank-after-trim values.
func NonEmpty(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// ClockTime validates an HH:MM 24-hour string.
func ClockTime(field, v string) error {
	if !hhmmRx.MatchString(v) {
		return fmt.Errorf("%s must be HH:MM", field)
	}
	return nil
}

// HexColor validates a #rgb or #rrggbb value.
func HexColor(field, v string) error {
	if !colorRx.MatchString(v) {
		return fmt.Errorf("%s must be a hex color", field)
	}
	return nil
}

// Positive rejects non-positive counts.
func Positive(field string, v int) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive", field)
	}
	return nil
}

// CreateSchedule validates a timetable entry payload. Start-before-end
// is deliberately not enforced here.
func CreateSchedule(title, startTime, endTime string) error {
	if err := NonEmpty("title", title); err != nil {
		return err
	}
	if err := ClockTime("startTime", startTime); err != nil {
		return err
	}
	return ClockTime("endTime", endTime)
}

// CreateSubject validates a subject payload.
func CreateSubject(name, color string) error {
	if err := NonEmpty("name", name); err != nil {
		return err
	}
	return HexColor("color", color)
}
