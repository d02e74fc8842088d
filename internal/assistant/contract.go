package assistant

// The command contract: the fixed set of named operations, with typed
// argument schemas, exposed to the language model for structured output.
// Wire shapes follow the generative-language function-calling API.

// Property describes one typed argument field.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// Schema is an OBJECT parameter block with a required-field list.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// FunctionDeclaration names one operation the model may invoke.
type FunctionDeclaration struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  Schema `json:"parameters"`
}

// Operation names. These are wire-level and must not change.
const (
	opLogActivity    = "logActivity"
	opAddStudyLog    = "addStudyLog"
	opUpdateSchedule = "updateSchedule"
)

// Declarations returns the bounded command contract sent on every call.
func Declarations() []FunctionDeclaration {
	return []FunctionDeclaration{
		{
			Name:        opLogActivity,
			Description: "Logs a completed activity (study, sleep, meal, social media, exercise) for the user.",
			Parameters: Schema{
				Type: "OBJECT",
				Properties: map[string]Property{
					"type": {
						Type:        "STRING",
						Description: "The kind of activity",
						Enum:        []string{"Study", "Sleep", "Meal", "Social", "Exercise", "Class", "Other"},
					},
					"title":           {Type: "STRING", Description: "Short title for the activity (e.g. 'Math Homework', 'Night Sleep')"},
					"durationMinutes": {Type: "NUMBER", Description: "Duration of the activity in minutes"},
					"startTime":       {Type: "STRING", Description: "Start time in HH:MM (24h). Defaults to now."},
				},
				Required: []string{"type", "title", "durationMinutes"},
			},
		},
		{
			Name:        opAddStudyLog,
			Description: "Adds a manual study session log for a subject.",
			Parameters: Schema{
				Type: "OBJECT",
				Properties: map[string]Property{
					"subjectName":     {Type: "STRING", Description: "The name of the subject (e.g. Math, Physics)"},
					"durationMinutes": {Type: "NUMBER", Description: "Duration of study in minutes"},
					"date":            {Type: "STRING", Description: "Date of study in YYYY-MM-DD format. Defaults to today."},
				},
				Required: []string{"subjectName", "durationMinutes"},
			},
		},
		{
			Name:        opUpdateSchedule,
			Description: "Adds or updates a repeating weekly schedule entry.",
			Parameters: Schema{
				Type: "OBJECT",
				Properties: map[string]Property{
					"subjectName": {Type: "STRING", Description: "The name of the subject, when the entry is for one"},
					"title":       {Type: "STRING", Description: "Title of the entry (e.g. 'History Lecture')"},
					"day":         {Type: "STRING", Description: "Day of the week (e.g. Monday, Tuesday)"},
					"startTime":   {Type: "STRING", Description: "Start time in HH:MM"},
					"endTime":     {Type: "STRING", Description: "End time in HH:MM"},
				},
				Required: []string{"day", "startTime", "endTime"},
			},
		},
	}
}
