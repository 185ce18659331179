// Package authserver serves the one-page OAuth authorization-code callback:
// Strava redirects here after the athlete grants access, and the page shows
// the token pair to copy into the environment.
package authserver

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/oauth2"
)

var page = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<body>
{{if .Error}}
<h1>Error</h1>
<p>{{.Error}}</p>
{{else}}
<h1>Authorization Successful!</h1>
<p>Access Token: {{.AccessToken}}</p>
<p>Refresh Token: {{.RefreshToken}}</p>
{{end}}
</body>
</html>
`))

type pageData struct {
	Error        string
	AccessToken  string
	RefreshToken string
}

// Server exchanges authorization codes for token pairs.
type Server struct {
	OAuth  *oauth2.Config
	Logger *slog.Logger
}

// Handler returns the HTTP handler for the callback.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleCallback)
	r.Get("/exchange", s.handleCallback)
	return r
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		s.render(w, pageData{Error: "No authorization code found in the URL. Make sure you granted permission."})
		return
	}

	token, err := s.OAuth.Exchange(r.Context(), code)
	if err != nil {
		s.Logger.Error("code exchange failed", "error", err)
		s.render(w, pageData{Error: fmt.Sprintf("Failed to retrieve access token: %v", err)})
		return
	}

	s.Logger.Info("authorization code exchanged")
	s.render(w, pageData{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	})
}

func (s *Server) render(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(w, data); err != nil {
		s.Logger.Error("render callback page", "error", err)
	}
}

// ListenAndServe blocks serving the callback on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.Logger.Info("auth callback server listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}
