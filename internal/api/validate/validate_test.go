package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClockTime(t *testing.T) {
	for _, v := range []string{"00:00", "09:30", "23:59"} {
		assert.NoError(t, ClockTime("t", v), v)
	}
	for _, v := range []string{"24:00", "9:30", "12:60", "noonish", ""} {
		assert.Error(t, ClockTime("t", v), v)
	}
}

func TestHexColor(t *testing.T) {
	for _, v := range []string{"#fff", "#3b82f6", "#ABCDEF"} {
		assert.NoError(t, HexColor("c", v), v)
	}
	for _, v := range []string{"3b82f6", "#12", "#gggggg", ""} {
		assert.Error(t, HexColor("c", v), v)
	}
}

func TestNonEmptyTrims(t *testing.T) {
	assert.NoError(t, NonEmpty("f", "x"))
	assert.Error(t, NonEmpty("f", "   "))
}

func TestCreateScheduleAllowsInvertedTimes(t *testing.T) {
	// Overnight blocks make start>end legitimate; only the format is checked.
	assert.NoError(t, CreateSchedule("Sleep", "23:00", "07:00"))
	assert.Error(t, CreateSchedule("", "23:00", "07:00"))
	assert.Error(t, CreateSchedule("X", "23:00", "7:00"))
}

func TestCreateSubject(t *testing.T) {
	assert.NoError(t, CreateSubject("Biology", "#22c55e"))
	assert.Error(t, CreateSubject(" ", "#22c55e"))
	assert.Error(t, CreateSubject("Biology", "green"))
}
