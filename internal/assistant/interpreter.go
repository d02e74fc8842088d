// Package assistant translates free-text user commands into validated,
// typed state mutations via an external language model's function-calling
// interface.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/studiflow/studiflow/internal/model"
)

// Apology is the fixed reply substituted for every provider failure.
const Apology = "I'm sorry, I'm having trouble connecting to my brain right now. Please try again later!"

const fallbackReply = "I'm not sure how to respond to that."

var hhmmRx = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// CommandKind tags the two mutation kinds the model may request.
type CommandKind int

const (
	CommandLog CommandKind = iota + 1
	CommandSchedule
)

// Command is one validated mutation decoded from a function call. Exactly
// one of Log or Schedule is meaningful, selected by Kind.
type Command struct {
	Kind     CommandKind
	Log      model.ActivityLog
	Schedule model.ScheduleItem
}

// Interpreter composes the command contract, dispatches to the provider
// and maps structured calls onto mutation commands.
type Interpreter struct {
	provider Provider
	log      zerolog.Logger
	now      func() time.Time
}

// New builds an interpreter over a provider.
func New(p Provider, log zerolog.Logger) *Interpreter {
	return &Interpreter{provider: p, log: log, now: time.Now}
}

// WithClock overrides the time source. Tests only.
func (i *Interpreter) WithClock(now func() time.Time) *Interpreter {
	i.now = now
	return i
}

// Chat runs one stateless interpreter pass: compose, dispatch, interpret.
// It returns the model's reply text and the validated commands; on any
// provider failure the reply is the fixed apology and no commands are
// returned (all-or-nothing per call).
func (i *Interpreter) Chat(ctx context.Context, prompt string, st *model.AppState) (string, []Command) {
	req := Request{
		SystemInstruction: systemInstruction(st, i.now()),
		Prompt:            prompt,
		Tools:             Declarations(),
	}

	resp, err := i.provider.Generate(ctx, req)
	if err != nil {
		i.log.Warn().Err(err).Msg("assistant provider failed")
		return Apology, nil
	}

	var cmds []Command
	for _, call := range resp.Calls {
		cmd, ok := i.decode(call, st)
		if !ok {
			i.log.Debug().Str("op", call.Name).Msg("dropped unusable function call")
			continue
		}
		cmds = append(cmds, cmd)
	}

	reply := resp.Text
	if reply == "" {
		reply = fallbackReply
	}
	return reply, cmds
}

// systemInstruction frames the call with a summary of the current state.
func systemInstruction(st *model.AppState, now time.Time) string {
	userJSON, _ := json.Marshal(st.User)
	subjectsJSON, _ := json.Marshal(st.Subjects)
	schedulesJSON, _ := json.Marshal(st.Schedules)

	return fmt.Sprintf(`You are StudiFlow AI, a helpful study assistant.
You have access to the user's study data:
- User: %s
- Subjects: %s
- Schedule: %s
- Logs (Total logs count): %d

Current Date: %s

Users might ask you to:
1. Log study time or daily activities (e.g., "I studied Math for 2 hours today").
2. Add/Update their timetable (e.g., "Schedule Physics for Mondays at 2pm to 4pm").
3. Get stats (e.g., "How many hours did I study this week?").

Always be encouraging and professional. If you call a function, confirm the action to the user.`,
		userJSON, subjectsJSON, schedulesJSON, len(st.Logs),
		now.Format("2006-01-02"))
}

// decode validates one function call against the contract. Unknown
// operations and malformed arguments fail closed: the call is dropped,
// never partially applied.
func (i *Interpreter) decode(call FunctionCall, st *model.AppState) (Command, bool) {
	switch call.Name {
	case opLogActivity:
		return i.decodeLogActivity(call.Args, st)
	case opAddStudyLog:
		return i.decodeAddStudyLog(call.Args, st)
	case opUpdateSchedule:
		return i.decodeUpdateSchedule(call.Args, st)
	default:
		return Command{}, false
	}
}

func (i *Interpreter) decodeLogActivity(args map[string]any, st *model.AppState) (Command, bool) {
	title, ok := argString(args, "title")
	if !ok || title == "" {
		return Command{}, false
	}
	duration, ok := argMinutes(args, "durationMinutes")
	if !ok {
		return Command{}, false
	}
	typ := model.ActivityOther
	if raw, ok := argString(args, "type"); ok {
		typ = model.ParseActivityType(raw)
	}

	// Study sessions get a subject resolved from the title when the model
	// did not name one explicitly. A failed match leaves the reference
	// unset; the cost of a miss is a blank subject, not an error.
	var subjectID string
	if typ == model.ActivityStudy {
		if sub, ok := ResolveSubject(title, st.Subjects); ok {
			subjectID = sub.ID
		}
	}

	start := i.now()
	if hhmm, ok := argString(args, "startTime"); ok && hhmmRx.MatchString(hhmm) {
		start = combineWithToday(hhmm, i.now())
	}
	end := start.Add(time.Duration(duration) * time.Minute)

	return Command{
		Kind: CommandLog,
		Log: model.ActivityLog{
			Type:            typ,
			Title:           title,
			SubjectID:       subjectID,
			StartTime:       start.UTC(),
			EndTime:         end.UTC(),
			DurationMinutes: duration,
		},
	}, true
}

// decodeAddStudyLog handles the legacy subject-first logging operation.
func (i *Interpreter) decodeAddStudyLog(args map[string]any, st *model.AppState) (Command, bool) {
	subjectName, ok := argString(args, "subjectName")
	if !ok || subjectName == "" {
		return Command{}, false
	}
	duration, ok := argMinutes(args, "durationMinutes")
	if !ok {
		return Command{}, false
	}

	title := subjectName
	var subjectID string
	if sub, ok := ResolveSubject(subjectName, st.Subjects); ok {
		subjectID = sub.ID
		title = "Studied " + sub.Name
	}

	start := i.now()
	if date, ok := argString(args, "date"); ok {
		if d, err := time.Parse("2006-01-02", date); err == nil {
			start = d
		}
	}
	end := start.Add(time.Duration(duration) * time.Minute)

	return Command{
		Kind: CommandLog,
		Log: model.ActivityLog{
			Type:            model.ActivityStudy,
			Title:           title,
			SubjectID:       subjectID,
			StartTime:       start.UTC(),
			EndTime:         end.UTC(),
			DurationMinutes: duration,
		},
	}, true
}

func (i *Interpreter) decodeUpdateSchedule(args map[string]any, st *model.AppState) (Command, bool) {
	rawDay, ok := argString(args, "day")
	if !ok {
		return Command{}, false
	}
	day, ok := model.ParseDayOfWeek(rawDay)
	if !ok {
		return Command{}, false
	}
	startTime, ok := argString(args, "startTime")
	if !ok || !hhmmRx.MatchString(startTime) {
		return Command{}, false
	}
	endTime, ok := argString(args, "endTime")
	if !ok || !hhmmRx.MatchString(endTime) {
		return Command{}, false
	}

	subjectName, _ := argString(args, "subjectName")
	title, _ := argString(args, "title")
	lookup := subjectName
	if lookup == "" {
		lookup = title
	}
	if lookup == "" {
		return Command{}, false
	}

	sub, resolved := ResolveSubject(lookup, st.Subjects)

	// Study when a subject resolved, otherwise a generic class block.
	typ := model.ActivityClass
	var subjectID string
	if resolved {
		typ = model.ActivityStudy
		subjectID = sub.ID
	}
	if title == "" {
		if resolved {
			title = sub.Name
		} else {
			title = "Class"
		}
	}

	return Command{
		Kind: CommandSchedule,
		Schedule: model.ScheduleItem{
			SubjectID: subjectID,
			Title:     title,
			Type:      typ,
			Day:       day,
			StartTime: startTime,
			EndTime:   endTime,
		},
	}, true
}

// ResolveSubject matches text against known subject names by
// case-insensitive substring, first match wins. Deliberately fuzzy: the
// model may paraphrase subject names, and a miss only leaves the
// reference unset.
func ResolveSubject(text string, subjects []model.Subject) (model.Subject, bool) {
	lower := strings.ToLower(text)
	for _, sub := range subjects {
		if sub.Name == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(sub.Name)) {
			return sub, true
		}
	}
	return model.Subject{}, false
}

// combineWithToday anchors an HH:MM time on the current calendar date.
func combineWithToday(hhmm string, now time.Time) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return now
	}
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
}

func argString(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// argMinutes accepts the JSON number shapes the model produces.
func argMinutes(args map[string]any, key string) (int, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		if n <= 0 {
			return 0, false
		}
		return int(n), true
	case int:
		if n <= 0 {
			return 0, false
		}
		return n, true
	case json.Number:
		f, err := n.Float64()
		if err != nil || f <= 0 {
			return 0, false
		}
		return int(f), true
	}
	return 0, false
}
