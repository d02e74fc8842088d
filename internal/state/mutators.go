// Package state holds the pure mutators that derive a new application
// state from the current one. Every mutator is a transform
// (state, request) -> state'; none mutate their input.
package state

import (
	"strings"
	"time"

	"github.com/studiflow/studiflow/internal/model"
)

// ownerID picks the owning user id for new records: the signed-in
// identity when present, then the profile user, then "guest".
func ownerID(st *model.AppState, actor string) string {
	if actor != "" {
		return actor
	}
	if st.User != nil && st.User.ID != "" {
		return st.User.ID
	}
	return "guest"
}

// AddLog appends an activity log. A fresh id and the acting user's id are
// assigned here; callers supply everything else.
func AddLog(st *model.AppState, actor string, log model.ActivityLog) *model.AppState {
	log.ID = NewID()
	log.UserID = ownerID(st, actor)
	next := st.Clone()
	next.Logs = append(next.Logs, log)
	return next
}

// NewTimerLog records a quick-timer study session where only the duration
// is known. The end time is approximated as now+duration, while the start
// time honors an explicit date when one was given; the two code paths can
// therefore disagree and that behavior is preserved.
func NewTimerLog(st *model.AppState, actor, subjectID string, durationMinutes int, date string, now time.Time) *model.AppState {
	title := "Study Session"
	if sub, ok := st.SubjectByID(subjectID); ok {
		title = "Studied " + sub.Name
	}
	start := now
	if date != "" {
		if d, err := time.Parse("2006-01-02", date); err == nil {
			start = d
		}
	}
	return AddLog(st, actor, model.ActivityLog{
		Type:            model.ActivityStudy,
		Title:           title,
		SubjectID:       subjectID,
		StartTime:       start.UTC(),
		EndTime:         now.Add(time.Duration(durationMinutes) * time.Minute).UTC(),
		DurationMinutes: durationMinutes,
	})
}

// AddSchedule appends a timetable entry, assigning id and owner.
func AddSchedule(st *model.AppState, actor string, item model.ScheduleItem) *model.AppState {
	item.ID = NewID()
	item.UserID = ownerID(st, actor)
	next := st.Clone()
	next.Schedules = append(next.Schedules, item)
	return next
}

// RemoveSchedule drops the entry with the matching id. An absent id is a
// no-op, not an error.
func RemoveSchedule(st *model.AppState, id string) *model.AppState {
	next := st.Clone()
	kept := next.Schedules[:0]
	for _, s := range next.Schedules {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	next.Schedules = kept
	return next
}

// AddSubject appends a subject. A name that trims to empty is rejected
// silently and the input state is returned unchanged.
func AddSubject(st *model.AppState, name, color string) *model.AppState {
	name = strings.TrimSpace(name)
	if name == "" {
		return st
	}
	next := st.Clone()
	next.Subjects = append(next.Subjects, model.Subject{
		ID:    NewSubjectID(),
		Name:  name,
		Color: color,
	})
	return next
}

// UpdateSubject replaces name and color on the matching subject; no-op
// when the id is absent.
func UpdateSubject(st *model.AppState, id, name, color string) *model.AppState {
	next := st.Clone()
	for i, s := range next.Subjects {
		if s.ID == id {
			next.Subjects[i] = model.Subject{ID: id, Name: name, Color: color}
			break
		}
	}
	return next
}

// DeleteSubject removes the subject without cascading: logs and schedule
// entries keep their subjectId and consumers treat the dangling reference
// as "subject unknown". Confirmation policy lives in the calling layer.
func DeleteSubject(st *model.AppState, id string) *model.AppState {
	next := st.Clone()
	kept := next.Subjects[:0]
	for _, s := range next.Subjects {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	next.Subjects = kept
	return next
}

// UpdateUserField replaces a single named profile field. Unknown fields
// and a nil user are silent no-ops.
func UpdateUserField(st *model.AppState, field string, value any) *model.AppState {
	if st.User == nil {
		return st
	}
	next := st.Clone()
	u := next.User
	switch field {
	case "name":
		if v, ok := value.(string); ok {
			u.Name = v
		}
	case "email":
		if v, ok := value.(string); ok {
			u.Email = v
		}
	case "avatar":
		if v, ok := value.(string); ok {
			u.Avatar = v
		}
	case "theme":
		if v, ok := value.(string); ok {
			u.Theme = v
		}
	case "dailyGoalHours":
		if v, ok := toFloat(value); ok {
			u.DailyGoalHours = v
		}
	case "sleepGoalHours":
		if v, ok := toFloat(value); ok {
			u.SleepGoalHours = v
		}
	case "socialMediaLimitMinutes":
		if v, ok := toFloat(value); ok {
			u.SocialMediaLimitMinutes = int(v)
		}
	}
	return next
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
