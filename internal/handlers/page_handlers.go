// File: internal/handlers/page_handlers.go
package handlers

import (
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/rfaizy/govassist/internal/auth"
	"github.com/rfaizy/govassist/internal/middleware"
)

// Template cache to avoid parsing templates on every request
var (
	templateCache     map[string]*template.Template
	templateCacheOnce sync.Once
)

// loadTemplateCache creates separate template sets for each page
func loadTemplateCache() {
	templateCache = make(map[string]*template.Template)

	templates := []string{"chat.html", "source.html", "error.html"}

	for _, tmpl := range templates {
		ts := template.New(tmpl)

		ts, err := ts.ParseFiles("web/templates/layout.html")
		if err != nil {
			log.Fatalf("Error parsing layout for %s: %v", tmpl, err)
		}

		ts, err = ts.ParseFiles("web/templates/" + tmpl)
		if err != nil {
			log.Fatalf("Error parsing %s: %v", tmpl, err)
		}

		templateCache[tmpl] = ts
	}
}

func renderTemplate(w http.ResponseWriter, tmpl string, data map[string]interface{}) {
	templateCacheOnce.Do(loadTemplateCache)
	addSecurityHeaders(w)

	if data == nil {
		data = make(map[string]interface{})
	}

	t, ok := templateCache[tmpl]
	if !ok {
		log.Printf("Template %s not found in cache", tmpl)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	if err := t.ExecuteTemplate(w, "layout.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", tmpl, err)
	}
}

func addSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "same-origin")
}

type PageHandler struct {
	tokenSecret []byte
}

func NewPageHandler(tokenSecret []byte) *PageHandler {
	return &PageHandler{tokenSecret: tokenSecret}
}

// ShowChatPage renders the chat shell and makes sure the browser carries a
// client token for the API.
func (h *PageHandler) ShowChatPage(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(middleware.ClientTokenCookie); err != nil {
		token, tokenErr := auth.GenerateClientToken(uuid.NewString(), h.tokenSecret)
		if tokenErr != nil {
			log.Printf("[PageHandler] Could not issue client token: %v", tokenErr)
			http.Error(w, "Something went wrong on our end.", http.StatusInternalServerError)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.ClientTokenCookie,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(30 * 24 * time.Hour),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	renderTemplate(w, "chat.html", map[string]interface{}{
		"Title": "GovAssist - KPK Information Assistant",
	})
}

// ShowSourcePage is the placeholder a citation click lands on. Citations
// never navigate to their URL; this stub is the intended destination until
// the document viewer ships.
func (h *PageHandler) ShowSourcePage(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, "source.html", map[string]interface{}{
		"Title": "Source Document",
		"Label": mux.Vars(r)["label"],
	})
}

// ShowErrorPage renders a friendly error page.
func (h *PageHandler) ShowErrorPage(w http.ResponseWriter, code, title, message string) {
	renderTemplate(w, "error.html", map[string]interface{}{
		"Title":   title,
		"Code":    code,
		"Message": message,
	})
}
