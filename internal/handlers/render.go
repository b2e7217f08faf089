package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/zhurnal/internal/app"
	"github.com/shrimpsizemoose/zhurnal/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const flashCookie = "flash"

var monthNames = [...]string{
	"Січень", "Лютий", "Березень", "Квітень", "Травень", "Червень",
	"Липень", "Серпень", "Вересень", "Жовтень", "Листопад", "Грудень",
}

var templateFuncs = template.FuncMap{
	"monthName": func(m time.Month) string {
		if m < time.January || m > time.December {
			return m.String()
		}
		return monthNames[m-1]
	},
	"stars": func(n int) string {
		if n < 1 {
			n = 1
		}
		return strings.Repeat("★", n)
	},
	"attended": func(days map[string]bool, d models.Date) bool {
		return days[d.String()]
	},
}

type flash struct {
	Kind    string
	Message string
}

type pageData struct {
	Title string
	Actor *models.User
	Flash *flash
	View  interface{}
}

func loadPages() (map[string]*template.Template, error) {
	names, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		page := strings.TrimSuffix(strings.TrimPrefix(name, "templates/"), ".html")
		if page == "layout" {
			continue
		}
		tpl, err := template.New(page).Funcs(templateFuncs).ParseFS(templatesFS, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[page] = tpl
	}
	return pages, nil
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string, view interface{}) {
	tpl, ok := h.pages[page]
	if !ok {
		logger.Error.Printf("Unknown page template: %s", page)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	data := pageData{
		Title: title,
		Actor: app.ActorFromContext(r.Context()),
		Flash: popFlash(w, r),
		View:  view,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.ExecuteTemplate(w, "layout", data); err != nil {
		logger.Error.Printf("Failed to render %s: %v", page, err)
	}
}

func setFlash(w http.ResponseWriter, kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(kind + "|" + message),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func popFlash(w http.ResponseWriter, r *http.Request) *flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})

	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return nil
	}
	kind, message, found := strings.Cut(raw, "|")
	if !found {
		return &flash{Kind: "info", Message: raw}
	}
	return &flash{Kind: kind, Message: message}
}
