package handlers

import (
	"errors"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/zhurnal/internal/app"
	"github.com/shrimpsizemoose/zhurnal/internal/metrics"
	"github.com/shrimpsizemoose/zhurnal/internal/models"
)

func (h *Handler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login", "Вхід", nil)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	form := models.LoginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	token, user, err := h.service.Login(r.Context(), form)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCredentials) {
			metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
			setFlash(w, "danger", "Невірні дані")
			http.Redirect(w, r, "/auth/login", http.StatusFound)
			return
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		fail(w, r, err)
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues("ok").Inc()
	logger.Info.Printf("User %s logged in", user.Email)

	http.SetCookie(w, &http.Cookie{
		Name:     h.service.Config.Sessions.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.service.Sessions.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	setFlash(w, "success", "Успішний вхід!")
	http.Redirect(w, r, "/journal", http.StatusFound)
}

func (h *Handler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register", "Реєстрація", nil)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	form := models.RegisterForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Role:     r.PostFormValue("role"),
	}
	_, err := h.service.Register(form)

	var verr *app.ValidationError
	switch {
	case err == nil:
		setFlash(w, "success", "Успішна реєстрація, увійдіть!")
		http.Redirect(w, r, "/auth/login", http.StatusFound)
	case errors.Is(err, app.ErrEmailExists):
		setFlash(w, "danger", "Такий email вже існує")
		http.Redirect(w, r, "/auth/register", http.StatusFound)
	case errors.As(err, &verr):
		setFlash(w, "danger", "Перевірте поле "+verr.Field)
		http.Redirect(w, r, "/auth/register", http.StatusFound)
	default:
		fail(w, r, err)
	}
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.service.Config.Sessions.CookieName); err == nil {
		if err := h.service.Logout(r.Context(), c.Value); err != nil {
			logger.Error.Printf("Failed to destroy session: %v", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:   h.service.Config.Sessions.CookieName,
		Path:   "/",
		MaxAge: -1,
	})
	http.Redirect(w, r, "/auth/login", http.StatusFound)
}
