package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-portfolio/content"
	"github.com/jrsteele09/go-portfolio/guard"
	"github.com/jrsteele09/go-portfolio/internal/errors"
	"github.com/jrsteele09/go-portfolio/session"
)

// LoginHandler starts the external login round trip
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gate := s.gateFor(w, r)
		if gate.IsAuthenticated() {
			session.NewHTTPNavigator(w, r).Navigate(RouteAdmin)
			return
		}
		if err := gate.Login(); err != nil {
			http.Error(w, "Admin login is not configured.", http.StatusInternalServerError)
		}
	}
}

// CallbackHandler consumes the login hub's redirect. The gate answers with the redirect
// in every case.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.logger.Warn().Err(err).Msg("unreadable callback form")
		}
		if err := s.gateFor(w, r).HandleCallback(r.Context(), r.Form); err != nil {
			s.logger.Debug().Err(err).Str("client", s.fingerprint.Of(r)).Msg("callback rejected")
		}
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = s.gateFor(w, r).Logout()
	}
}

// AdminDashboardHandler renders the content panel
func (s *Server) AdminDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := guard.RoleFromContext(r.Context())
		data := map[string]any{
			"AppName":         s.config.GetAppName(),
			"Role":            role.String(),
			"CanEditSettings": role.CanEditSettings(),
			"CanEditContent":  role.CanEditContent(),
			"Settings":        s.settingsPayload().Settings,
			"Connected":       s.content.Settings().Connected(),
			"Projects":        s.content.Projects().State().Data,
			"Education":       s.content.Education().State().Data,
			"Experience":      s.content.Experience().State().Data,
			"Error":           r.URL.Query().Get("error"),
		}
		s.render(w, http.StatusOK, s.templates.admin, data)
	}
}

func (s *Server) AdminSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !guard.RoleFromContext(r.Context()).CanEditSettings() {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		settings := content.SiteSettings{
			Title:       r.PostForm.Get("title"),
			Tagline:     r.PostForm.Get("tagline"),
			About:       r.PostForm.Get("about"),
			Email:       strings.TrimSpace(r.PostForm.Get("email")),
			ShowContact: r.PostForm.Get("show_contact") == "on",
		}
		if err := s.content.UpdateSettings(r.Context(), settings); err != nil {
			s.adminError(w, r, err)
			return
		}
		s.logger.Info().Str("role", guard.RoleFromContext(r.Context()).String()).Msg("site settings updated")
		session.NewHTTPNavigator(w, r).Navigate(RouteAdmin)
	}
}

func (s *Server) AdminProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !guard.RoleFromContext(r.Context()).CanEditContent() {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		order, _ := strconv.Atoi(r.PostForm.Get("sort_order"))
		project := content.Project{
			ID:        strings.TrimSpace(r.PostForm.Get("id")),
			Title:     r.PostForm.Get("title"),
			Summary:   r.PostForm.Get("summary"),
			URL:       strings.TrimSpace(r.PostForm.Get("url")),
			Tags:      r.PostForm.Get("tags"),
			SortOrder: order,
		}
		if _, err := s.content.UpsertProject(r.Context(), project); err != nil {
			s.adminError(w, r, err)
			return
		}
		session.NewHTTPNavigator(w, r).Navigate(RouteAdmin)
	}
}

func (s *Server) AdminProjectDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !guard.RoleFromContext(r.Context()).CanEditContent() {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if err := s.content.DeleteProject(r.Context(), r.PathValue("id")); err != nil {
			s.adminError(w, r, err)
			return
		}
		session.NewHTTPNavigator(w, r).Navigate(RouteAdmin)
	}
}

func (s *Server) AdminEducationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !guard.RoleFromContext(r.Context()).CanEditContent() {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		order, _ := strconv.Atoi(r.PostForm.Get("sort_order"))
		education := content.Education{
			ID:            strings.TrimSpace(r.PostForm.Get("id")),
			Institution:   r.PostForm.Get("institution"),
			Qualification: r.PostForm.Get("qualification"),
			Period:        r.PostForm.Get("period"),
			SortOrder:     order,
		}
		if _, err := s.content.UpsertEducation(r.Context(), education); err != nil {
			s.adminError(w, r, err)
			return
		}
		session.NewHTTPNavigator(w, r).Navigate(RouteAdmin)
	}
}

func (s *Server) AdminEducationDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !guard.RoleFromContext(r.Context()).CanEditContent() {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if err := s.content.DeleteEducation(r.Context(), r.PathValue("id")); err != nil {
			s.adminError(w, r, err)
			return
		}
		session.NewHTTPNavigator(w, r).Navigate(RouteAdmin)
	}
}

func (s *Server) AdminExperienceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !guard.RoleFromContext(r.Context()).CanEditContent() {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		order, _ := strconv.Atoi(r.PostForm.Get("sort_order"))
		experience := content.Experience{
			ID:        strings.TrimSpace(r.PostForm.Get("id")),
			Company:   r.PostForm.Get("company"),
			Role:      r.PostForm.Get("role"),
			Period:    r.PostForm.Get("period"),
			Summary:   r.PostForm.Get("summary"),
			SortOrder: order,
		}
		if _, err := s.content.UpsertExperience(r.Context(), experience); err != nil {
			s.adminError(w, r, err)
			return
		}
		session.NewHTTPNavigator(w, r).Navigate(RouteAdmin)
	}
}

func (s *Server) AdminExperienceDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !guard.RoleFromContext(r.Context()).CanEditContent() {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if err := s.content.DeleteExperience(r.Context(), r.PathValue("id")); err != nil {
			s.adminError(w, r, err)
			return
		}
		session.NewHTTPNavigator(w, r).Navigate(RouteAdmin)
	}
}

func (s *Server) adminError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errors.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, errors.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("admin update failed")
		http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
	}
}
