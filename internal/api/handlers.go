// Package api exposes the application over HTTP. Handlers decode and
// validate requests, then delegate to the sync controller and the pure
// mutators; no domain logic lives here.
package api

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/studiflow/studiflow/internal/analytics"
	"github.com/studiflow/studiflow/internal/api/respond"
	"github.com/studiflow/studiflow/internal/api/validate"
	"github.com/studiflow/studiflow/internal/assistant"
	"github.com/studiflow/studiflow/internal/model"
	"github.com/studiflow/studiflow/internal/state"
	syncctl "github.com/studiflow/studiflow/internal/sync"
)

// Handler bundles the request handlers and their collaborators.
type Handler struct {
	ctrl    *syncctl.Controller
	interp  *assistant.Interpreter
	healthy func() bool
	log     zerolog.Logger
	now     func() time.Time
}

// NewHandler wires the handler set. healthy reports aggregated service
// health for the health endpoint.
func NewHandler(ctrl *syncctl.Controller, interp *assistant.Interpreter, healthy func() bool, log zerolog.Logger) *Handler {
	return &Handler{ctrl: ctrl, interp: interp, healthy: healthy, log: log, now: time.Now}
}

// GetState returns the full current snapshot.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, h.ctrl.State())
}

// ResetState erases the locally persisted data and returns the resulting
// snapshot (the seed state in local mode). Remote documents are never
// touched.
func (h *Handler) ResetState(w http.ResponseWriter, r *http.Request) {
	st, err := h.ctrl.ResetLocal()
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, st)
}

// CreateLog appends a detailed activity log.
func (h *Handler) CreateLog(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Type            string    `json:"type"`
		Title           string    `json:"title"`
		SubjectID       string    `json:"subjectId"`
		StartTime       time.Time `json:"startTime"`
		EndTime         time.Time `json:"endTime"`
		DurationMinutes int       `json:"durationMinutes"`
		Note            string    `json:"note"`
		Topics          []string  `json:"topics"`
		Difficulty      string    `json:"difficulty"`
		Productivity    int       `json:"productivity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.NonEmpty("type", in.Type); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	typ := model.ParseActivityType(in.Type)
	title := in.Title
	if title == "" {
		title = string(typ)
	}

	start := in.StartTime
	if start.IsZero() {
		start = h.now()
	}
	end := in.EndTime
	duration := in.DurationMinutes
	switch {
	case duration <= 0 && !end.IsZero():
		duration = int(math.Round(end.Sub(start).Minutes()))
	case end.IsZero() && duration > 0:
		end = start.Add(time.Duration(duration) * time.Minute)
	}
	if err := validate.Positive("durationMinutes", duration); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	next := h.ctrl.Apply(func(st *model.AppState) *model.AppState {
		return state.AddLog(st, h.ctrl.Actor(), model.ActivityLog{
			Type:            typ,
			Title:           title,
			SubjectID:       in.SubjectID,
			StartTime:       start.UTC(),
			EndTime:         end.UTC(),
			DurationMinutes: duration,
			Note:            in.Note,
			Topics:          in.Topics,
			Difficulty:      in.Difficulty,
			Productivity:    in.Productivity,
		})
	})
	respond.WriteJSON(w, http.StatusCreated, next.Logs[len(next.Logs)-1])
}

// CreateTimerLog records a quick-timer session where only a subject and
// duration are known.
func (h *Handler) CreateTimerLog(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SubjectID       string `json:"subjectId"`
		DurationMinutes int    `json:"durationMinutes"`
		Date            string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.Positive("durationMinutes", in.DurationMinutes); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	next := h.ctrl.Apply(func(st *model.AppState) *model.AppState {
		return state.NewTimerLog(st, h.ctrl.Actor(), in.SubjectID, in.DurationMinutes, in.Date, h.now())
	})
	respond.WriteJSON(w, http.StatusCreated, next.Logs[len(next.Logs)-1])
}

// CreateSchedule appends a timetable entry.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SubjectID string `json:"subjectId"`
		Title     string `json:"title"`
		Type      string `json:"type"`
		Day       string `json:"day"`
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
		Color     string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	day, ok := model.ParseDayOfWeek(in.Day)
	if !ok {
		respond.WriteBadRequest(w, "unknown day of week")
		return
	}
	title := in.Title
	if title == "" {
		if sub, found := h.ctrl.State().SubjectByID(in.SubjectID); found {
			title = sub.Name
		}
	}
	if err := validate.CreateSchedule(title, in.StartTime, in.EndTime); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	typ := model.ActivityClass
	if in.Type != "" {
		typ = model.ParseActivityType(in.Type)
	} else if in.SubjectID != "" {
		typ = model.ActivityStudy
	}

	next := h.ctrl.Apply(func(st *model.AppState) *model.AppState {
		return state.AddSchedule(st, h.ctrl.Actor(), model.ScheduleItem{
			SubjectID: in.SubjectID,
			Title:     title,
			Type:      typ,
			Day:       day,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			Color:     in.Color,
		})
	})
	respond.WriteJSON(w, http.StatusCreated, next.Schedules[len(next.Schedules)-1])
}

// DeleteSchedule removes an entry. A missing id is still 204: removal of
// an absent entry is a no-op, not an error.
func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	h.ctrl.Apply(func(st *model.AppState) *model.AppState {
		return state.RemoveSchedule(st, id)
	})
	w.WriteHeader(http.StatusNoContent)
}

// CreateSubject adds a subject.
func (h *Handler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.CreateSubject(in.Name, in.Color); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	next := h.ctrl.Apply(func(st *model.AppState) *model.AppState {
		return state.AddSubject(st, in.Name, in.Color)
	})
	respond.WriteJSON(w, http.StatusCreated, next.Subjects[len(next.Subjects)-1])
}

// UpdateSubject replaces name and color on an existing subject.
func (h *Handler) UpdateSubject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var in struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.CreateSubject(in.Name, in.Color); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if _, found := h.ctrl.State().SubjectByID(id); !found {
		respond.WriteNotFound(w, "subject not found")
		return
	}

	next := h.ctrl.Apply(func(st *model.AppState) *model.AppState {
		return state.UpdateSubject(st, id, in.Name, in.Color)
	})
	sub, _ := next.SubjectByID(id)
	respond.WriteJSON(w, http.StatusOK, sub)
}

// DeleteSubject removes a subject. The confirmation policy lives here:
// the caller must pass ?confirm=true, mirroring the interactive prompt.
// Referencing logs and schedule entries keep their dangling subjectId.
func (h *Handler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		respond.WriteBadRequest(w, "deletion requires confirm=true; existing logs remain")
		return
	}
	id := mux.Vars(r)["id"]
	h.ctrl.Apply(func(st *model.AppState) *model.AppState {
		return state.DeleteSubject(st, id)
	})
	w.WriteHeader(http.StatusNoContent)
}

// UpdateUser replaces a single named profile field.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Field string `json:"field"`
		Value any    `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.NonEmpty("field", in.Field); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	next := h.ctrl.Apply(func(st *model.AppState) *model.AppState {
		return state.UpdateUserField(st, in.Field, in.Value)
	})
	respond.WriteJSON(w, http.StatusOK, next.User)
}

// Chat runs one assistant turn and returns the reply plus the state it
// produced.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.NonEmpty("message", in.Message); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	reply := h.ctrl.RunAssistant(r.Context(), h.interp, in.Message)
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"reply": reply,
		"state": h.ctrl.State(),
	})
}

// AnalyticsSummary returns the dashboard figures for the current snapshot.
func (h *Handler) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, analytics.Summarize(h.ctrl.State(), h.now()))
}

// SetIdentity switches the session to remote mode for the given user.
// Identity itself comes from an external provider; only the stable id
// matters here.
func (h *Handler) SetIdentity(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.NonEmpty("userId", in.UserID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	h.ctrl.SetIdentity(in.UserID)
	if h.ctrl.Identity() != in.UserID {
		respond.WriteError(w, http.StatusConflict, "remote persistence is not configured")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"mode": "remote", "userId": in.UserID})
}

// ClearIdentity switches back to local mode.
func (h *Handler) ClearIdentity(w http.ResponseWriter, r *http.Request) {
	h.ctrl.ClearIdentity()
	respond.WriteJSON(w, http.StatusOK, map[string]string{"mode": "local"})
}

// CheckHealth reports aggregated service health.
func (h *Handler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	if h.healthy != nil && !h.healthy() {
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
