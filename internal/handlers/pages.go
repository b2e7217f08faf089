package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/zhurnal/internal/app"
)

func queryInt(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}

func (h *Handler) HandleJournal(w http.ResponseWriter, r *http.Request) {
	year, okY := queryInt(r, "y")
	month, okM := queryInt(r, "m")
	if !okY || !okM {
		http.Error(w, "Invalid year or month", http.StatusBadRequest)
		return
	}

	view, err := h.service.Journal(app.ActorFromContext(r.Context()), year, time.Month(month))
	if err != nil {
		fail(w, r, err)
		return
	}
	h.render(w, r, "journal", "Журнал", view)
}

func (h *Handler) HandleStudents(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Students(app.ActorFromContext(r.Context()))
	if err != nil {
		fail(w, r, err)
		return
	}
	h.render(w, r, "students", "Учні", view)
}

func (h *Handler) HandleSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := h.service.Songs()
	if err != nil {
		fail(w, r, err)
		return
	}
	h.render(w, r, "songs", "Пісні", songs)
}
