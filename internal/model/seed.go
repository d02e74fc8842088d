package model

// DefaultSubjects seeds a fresh state with a usable subject set.
var DefaultSubjects = []Subject{
	{ID: "sub_math", Name: "Math", Color: "#3b82f6"},
	{ID: "sub_physics", Name: "Physics", Color: "#8b5cf6"},
	{ID: "sub_chemistry", Name: "Chemistry", Color: "#10b981"},
	{ID: "sub_history", Name: "History", Color: "#f59e0b"},
}

// DefaultState is the seed substituted whenever no persisted state exists
// or the persisted payload fails to parse.
func DefaultState() *AppState {
	subjects := make([]Subject, len(DefaultSubjects))
	copy(subjects, DefaultSubjects)
	return &AppState{
		User: &User{
			ID:                      "user_1",
			Name:                    "Student Pro",
			Email:                   "hello@studiflow.com",
			DailyGoalHours:          6,
			SleepGoalHours:          8,
			SocialMediaLimitMinutes: 120,
			Theme:                   "light",
		},
		Subjects:  subjects,
		Schedules: []ScheduleItem{},
		Logs:      []ActivityLog{},
	}
}
