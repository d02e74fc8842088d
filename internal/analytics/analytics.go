// Package analytics computes dashboard figures from a state snapshot.
// Everything here is pure arithmetic; rendering is out of scope.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/studiflow/studiflow/internal/model"
)

const defaultDailyGoalHours = 6

// SubjectTotal is accumulated study time for one subject.
type SubjectTotal struct {
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
	Color   string `json:"color"`
}

// DailyTotal is one day of the weekly trend, in hours.
type DailyTotal struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Hours float64 `json:"hours"`
}

// Summary aggregates the dashboard and analytics figures for one snapshot.
type Summary struct {
	TotalMinutesToday int                  `json:"totalMinutesToday"`
	GoalProgress      float64              `json:"goalProgress"` // percent, capped at 100
	SubjectTotals     []SubjectTotal       `json:"subjectTotals"`
	DailyTotals       []DailyTotal         `json:"dailyTotals"`
	TodaySchedule     []model.ScheduleItem `json:"todaySchedule"`
	RecentLogs        []model.ActivityLog  `json:"recentLogs"`
}

// Summarize computes the full summary relative to now.
func Summarize(st *model.AppState, now time.Time) Summary {
	return Summary{
		TotalMinutesToday: TotalMinutesToday(st, now),
		GoalProgress:      GoalProgress(st, now),
		SubjectTotals:     SubjectTotals(st),
		DailyTotals:       DailyTotals(st, now),
		TodaySchedule:     TodaySchedule(st, now),
		RecentLogs:        RecentLogs(st, 5),
	}
}

// TotalMinutesToday sums durations of logs starting on now's calendar day.
func TotalMinutesToday(st *model.AppState, now time.Time) int {
	today := now.Format("2006-01-02")
	total := 0
	for _, log := range st.Logs {
		if log.StartTime.Format("2006-01-02") == today {
			total += log.DurationMinutes
		}
	}
	return total
}

// GoalProgress is today's study minutes as a percentage of the daily
// goal, capped at 100.
func GoalProgress(st *model.AppState, now time.Time) float64 {
	goal := defaultDailyGoalHours * 60.0
	if st.User != nil && st.User.DailyGoalHours > 0 {
		goal = st.User.DailyGoalHours * 60
	}
	progress := float64(TotalMinutesToday(st, now)) / goal * 100
	return math.Min(progress, 100)
}

// SubjectTotals accumulates study minutes per subject, most-studied
// first. Logs whose subject no longer exists are skipped, per the
// dangling-reference contract.
func SubjectTotals(st *model.AppState) []SubjectTotal {
	totals := map[string]*SubjectTotal{}
	var order []string
	for _, log := range st.Logs {
		sub, ok := st.SubjectByID(log.SubjectID)
		if !ok {
			continue
		}
		t, seen := totals[sub.ID]
		if !seen {
			t = &SubjectTotal{Name: sub.Name, Color: sub.Color}
			totals[sub.ID] = t
			order = append(order, sub.ID)
		}
		t.Minutes += log.DurationMinutes
	}
	out := make([]SubjectTotal, 0, len(order))
	for _, id := range order {
		out = append(out, *totals[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Minutes > out[j].Minutes })
	return out
}

// DailyTotals buckets log minutes into the last seven calendar days,
// oldest first, reported in hours rounded to one decimal.
func DailyTotals(st *model.AppState, now time.Time) []DailyTotal {
	minutes := map[string]int{}
	days := make([]string, 0, 7)
	for i := 6; i >= 0; i-- {
		d := now.AddDate(0, 0, -i).Format("2006-01-02")
		days = append(days, d)
		minutes[d] = 0
	}
	for _, log := range st.Logs {
		d := log.StartTime.Format("2006-01-02")
		if _, ok := minutes[d]; ok {
			minutes[d] += log.DurationMinutes
		}
	}
	out := make([]DailyTotal, 0, 7)
	for _, d := range days {
		out = append(out, DailyTotal{
			Date:  d,
			Hours: math.Round(float64(minutes[d])/60*10) / 10,
		})
	}
	return out
}

// TodaySchedule returns today's timetable entries sorted by start time.
func TodaySchedule(st *model.AppState, now time.Time) []model.ScheduleItem {
	day := model.DayOf(now)
	var out []model.ScheduleItem
	for _, item := range st.Schedules {
		if item.Day == day {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

// RecentLogs returns the n most recently appended logs, newest first.
func RecentLogs(st *model.AppState, n int) []model.ActivityLog {
	if n > len(st.Logs) {
		n = len(st.Logs)
	}
	out := make([]model.ActivityLog, 0, n)
	for i := len(st.Logs) - 1; i >= len(st.Logs)-n; i-- {
		out = append(out, st.Logs[i])
	}
	return out
}
