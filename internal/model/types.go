package model

import (
	"strings"
	"time"
)

// DayOfWeek names a timetable day. Values are the display strings used on
// the wire and inside the assistant contract.
type DayOfWeek string

const (
	Monday    DayOfWeek = "Monday"
	Tuesday   DayOfWeek = "Tuesday"
	Wednesday DayOfWeek = "Wednesday"
	Thursday  DayOfWeek = "Thursday"
	Friday    DayOfWeek = "Friday"
	Saturday  DayOfWeek = "Saturday"
	Sunday    DayOfWeek = "Sunday"
)

// Days lists all days in display order, Monday first.
var Days = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseDayOfWeek matches a day name case-insensitively.
func ParseDayOfWeek(s string) (DayOfWeek, bool) {
	for _, d := range Days {
		if strings.EqualFold(string(d), s) {
			return d, true
		}
	}
	return "", false
}

// DayOf returns the DayOfWeek for a point in time.
func DayOf(t time.Time) DayOfWeek {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// ActivityType tags logs and schedule entries.
type ActivityType string

const (
	ActivityStudy    ActivityType = "Study"
	ActivitySleep    ActivityType = "Sleep"
	ActivityMeal     ActivityType = "Meal"
	ActivitySocial   ActivityType = "Social"
	ActivityExercise ActivityType = "Exercise"
	ActivityClass    ActivityType = "Class"
	ActivityOther    ActivityType = "Other"
)

// ActivityTypes lists the selectable activity kinds.
var ActivityTypes = []ActivityType{
	ActivityStudy, ActivitySleep, ActivityMeal,
	ActivitySocial, ActivityExercise, ActivityClass, ActivityOther,
}

// ParseActivityType matches an activity type case-insensitively, falling
// back to ActivityOther for anything unrecognized.
func ParseActivityType(s string) ActivityType {
	for _, t := range ActivityTypes {
		if strings.EqualFold(string(t), s) {
			return t
		}
	}
	return ActivityOther
}

// User is the single profile record of a state snapshot.
type User struct {
	ID                      string  `json:"id"`
	Name                    string  `json:"name"`
	Email                   string  `json:"email"`
	Avatar                  string  `json:"avatar,omitempty"`
	DailyGoalHours          float64 `json:"dailyGoalHours"`
	SleepGoalHours          float64 `json:"sleepGoalHours"`
	SocialMediaLimitMinutes int     `json:"socialMediaLimitMinutes"`
	Theme                   string  `json:"theme"`
}

// Subject is a named, colored category referenced by logs and schedule
// entries. Deleting a subject leaves dangling references behind; lookups
// against them report "not found", never an error.
type Subject struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ScheduleItem is a recurring weekly time block.
type ScheduleItem struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	SubjectID string       `json:"subjectId,omitempty"`
	Title     string       `json:"title"`
	Type      ActivityType `json:"type"`
	Day       DayOfWeek    `json:"day"`
	StartTime string       `json:"startTime"` // HH:MM
	EndTime   string       `json:"endTime"`   // HH:MM
	Color     string       `json:"color,omitempty"`
}

// ActivityLog is a timestamped record of a completed activity. Logs are
// append-only; there is no update operation.
type ActivityLog struct {
	ID              string       `json:"id"`
	UserID          string       `json:"userId"`
	Type            ActivityType `json:"type"`
	Title           string       `json:"title"`
	SubjectID       string       `json:"subjectId,omitempty"`
	StartTime       time.Time    `json:"startTime"`
	EndTime         time.Time    `json:"endTime"`
	DurationMinutes int          `json:"durationMinutes"`
	Note            string       `json:"note,omitempty"`
	Topics          []string     `json:"topics,omitempty"`
	Difficulty      string       `json:"difficulty,omitempty"`
	Productivity    int          `json:"productivity,omitempty"` // 1-5
}

// AppState is the aggregate root and the unit of persistence. Every
// mutation produces a wholly new value; nothing is patched in place.
type AppState struct {
	User      *User          `json:"user"`
	Subjects  []Subject      `json:"subjects"`
	Schedules []ScheduleItem `json:"schedules"`
	Logs      []ActivityLog  `json:"logs"`
}

// Clone returns a copy whose collections may be appended to or filtered
// without touching the receiver. Element values are shared; mutators
// replace elements rather than editing them.
func (s *AppState) Clone() *AppState {
	next := &AppState{
		Subjects:  make([]Subject, len(s.Subjects)),
		Schedules: make([]ScheduleItem, len(s.Schedules)),
		Logs:      make([]ActivityLog, len(s.Logs)),
	}
	if s.User != nil {
		u := *s.User
		next.User = &u
	}
	copy(next.Subjects, s.Subjects)
	copy(next.Schedules, s.Schedules)
	copy(next.Logs, s.Logs)
	return next
}

// SubjectByID looks up a subject by id.
func (s *AppState) SubjectByID(id string) (Subject, bool) {
	for _, sub := range s.Subjects {
		if sub.ID == id {
			return sub, true
		}
	}
	return Subject{}, false
}
