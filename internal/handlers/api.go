package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/zhurnal/internal/app"
	"github.com/shrimpsizemoose/zhurnal/internal/billing"
	"github.com/shrimpsizemoose/zhurnal/internal/metrics"
	"github.com/shrimpsizemoose/zhurnal/internal/models"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Debug.Printf("Invalid request body for %s: %v", r.URL.Path, err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func (h *Handler) HandleToggleAttendance(w http.ResponseWriter, r *http.Request) {
	actor := app.ActorFromContext(r.Context())
	if err := app.RequireAdmin(actor); err != nil {
		fail(w, r, err)
		return
	}

	var req models.ToggleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.service.ToggleAttendance(actor, req)
	if err != nil {
		metrics.AttendanceTogglesTotal.WithLabelValues("error").Inc()
		fail(w, r, err)
		return
	}

	result := "absent"
	if res.Present {
		result = "present"
	}
	metrics.AttendanceTogglesTotal.WithLabelValues(result).Inc()
	if d, err := models.ParseDate(req.Date); err == nil {
		metrics.MonthTotalGauge.WithLabelValues(billing.MonthOf(d).String()).Set(float64(res.Total))
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleAddStudent(w http.ResponseWriter, r *http.Request) {
	actor := app.ActorFromContext(r.Context())
	if err := app.RequireAdmin(actor); err != nil {
		fail(w, r, err)
		return
	}

	var req models.StudentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	student, err := h.service.AddStudent(actor, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":   student.ID,
		"name": student.Name,
	})
}

func (h *Handler) HandleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteStudent(app.ActorFromContext(r.Context()), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleLinkParent(w http.ResponseWriter, r *http.Request) {
	actor := app.ActorFromContext(r.Context())
	if err := app.RequireAdmin(actor); err != nil {
		fail(w, r, err)
		return
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req models.ParentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.LinkParent(actor, id, req); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleAddSong(w http.ResponseWriter, r *http.Request) {
	actor := app.ActorFromContext(r.Context())
	if err := app.RequireAdmin(actor); err != nil {
		fail(w, r, err)
		return
	}

	var req models.SongRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	song, err := h.service.AddSong(actor, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": song.ID})
}

func (h *Handler) HandleDeleteSong(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteSong(app.ActorFromContext(r.Context()), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	actor := app.ActorFromContext(r.Context())
	if err := app.RequireAdmin(actor); err != nil {
		fail(w, r, err)
		return
	}

	var req models.AssignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.Assign(actor, req); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) HandleUnassign(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(w, r, "student_id")
	if !ok {
		return
	}
	songID, ok := pathID(w, r, "song_id")
	if !ok {
		return
	}
	if err := h.service.Unassign(app.ActorFromContext(r.Context()), studentID, songID); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
