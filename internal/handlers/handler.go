package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/zhurnal/internal/app"
	"github.com/shrimpsizemoose/zhurnal/internal/metrics"
)

type Handler struct {
	service *app.Service
	pages   map[string]*template.Template
}

func NewHandler(service *app.Service) (*Handler, error) {
	pages, err := loadPages()
	if err != nil {
		return nil, err
	}
	return &Handler{
		service: service,
		pages:   pages,
	}, nil
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, instrument(pattern, fn))
	}

	handle("GET /{$}", h.HandleRoot)
	handle("GET /healthz", h.HandleHealth)

	handle("GET /auth/login", h.HandleLoginPage)
	handle("POST /auth/login", h.HandleLogin)
	handle("GET /auth/register", h.HandleRegisterPage)
	handle("POST /auth/register", h.HandleRegister)
	handle("GET /auth/logout", h.page(h.HandleLogout))

	handle("GET /journal", h.page(h.HandleJournal))
	handle("GET /students", h.page(h.HandleStudents))
	handle("GET /songs", h.page(h.HandleSongs))

	handle("POST /api/attendance/toggle", h.api(h.HandleToggleAttendance))
	handle("POST /api/student", h.api(h.HandleAddStudent))
	handle("DELETE /api/student/{id}", h.api(h.HandleDeleteStudent))
	handle("POST /api/student/{id}/parent", h.api(h.HandleLinkParent))
	handle("POST /api/song", h.api(h.HandleAddSong))
	handle("DELETE /api/song/{id}", h.api(h.HandleDeleteSong))
	handle("POST /api/assign", h.api(h.HandleAssign))
	handle("DELETE /api/unassign/{student_id}/{song_id}", h.api(h.HandleUnassign))

	mux.Handle("GET /static/", http.FileServerFS(staticFS))
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func instrument(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.APIRequestDuration.WithLabelValues(
			pattern,
			r.Method,
			strconv.Itoa(rec.status),
		).Observe(time.Since(start).Seconds())
	})
}

// authenticate puts the session's user into the request context, it leaves
// anonymous requests untouched.
func (h *Handler) authenticate(r *http.Request) *http.Request {
	c, err := r.Cookie(h.service.Config.Sessions.CookieName)
	if err != nil {
		return r
	}
	actor, err := h.service.Authenticate(r.Context(), c.Value)
	if err != nil {
		if !errors.Is(err, app.ErrAuthRequired) {
			logger.Error.Printf("Failed to authenticate request: %v", err)
		}
		return r
	}
	return r.WithContext(app.WithActor(r.Context(), actor))
}

// page guards HTML routes, anonymous visitors are sent to the login form
func (h *Handler) page(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r = h.authenticate(r)
		if app.ActorFromContext(r.Context()) == nil {
			http.Redirect(w, r, "/auth/login", http.StatusFound)
			return
		}
		next(w, r)
	}
}

// api guards JSON routes, anonymous callers get a bare 401
func (h *Handler) api(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r = h.authenticate(r)
		if app.ActorFromContext(r.Context()) == nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func statusOf(err error) int {
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, app.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, app.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
	} else {
		logger.Debug.Printf("%s %s rejected with %d: %v", r.Method, r.URL.Path, status, err)
	}
	http.Error(w, http.StatusText(status), status)
}

func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/journal", http.StatusFound)
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
