package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-portfolio/content"
)

type settingsResponse struct {
	Settings  content.SiteSettings `json:"settings"`
	Stale     bool                 `json:"stale"`
	UpdatedAt *time.Time           `json:"updated_at,omitempty"`
}

func (s *Server) settingsPayload() settingsResponse {
	st := s.content.Settings().State()
	resp := settingsResponse{Settings: st.Data, Stale: st.Stale}
	if st.Loading && st.Data.ID == "" {
		resp.Settings = content.DefaultSettings()
	}
	if !st.UpdatedAt.IsZero() {
		resp.UpdatedAt = &st.UpdatedAt
	}
	return resp
}

// IndexHandler renders the public portfolio page
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings := s.settingsPayload().Settings
		data := map[string]any{
			"AppName":    s.config.GetAppName(),
			"Settings":   settings,
			"Projects":   s.content.Projects().State().Data,
			"Education":  s.content.Education().State().Data,
			"Experience": s.content.Experience().State().Data,
		}
		s.render(w, http.StatusOK, s.templates.index, data)
	}
}

// PreflightHandler answers OPTIONS requests that carry no Origin
func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// SettingsHandler returns the displayed settings as JSON
func (s *Server) SettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		if err := json.NewEncoder(w).Encode(s.settingsPayload()); err != nil {
			s.logger.Error().Err(err).Msg("encode settings")
		}
	}
}

// SettingsEventsHandler streams the settings as server-sent events, one event now and
// one every time the displayed value changes.
func (s *Server) SettingsEventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		settings := s.content.Settings()
		for {
			changed := settings.Changed()
			raw, err := json.Marshal(s.settingsPayload())
			if err != nil {
				s.logger.Error().Err(err).Msg("encode settings event")
				return
			}
			if _, err := fmt.Fprintf(w, "event: settings\ndata: %s\n\n", raw); err != nil {
				return
			}
			flusher.Flush()

			select {
			case <-r.Context().Done():
				return
			case <-s.stop:
				return
			case <-changed:
			}
		}
	}
}

// ContactHandler accepts the contact form and answers with an htmx fragment
func (s *Server) ContactHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.settingsPayload().Settings.ShowContact {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			s.render(w, http.StatusBadRequest, s.templates.contactResult, map[string]any{"Error": "The form could not be read."})
			return
		}

		msg := ContactMessage{
			Name:    strings.TrimSpace(r.PostForm.Get("name")),
			Email:   strings.TrimSpace(r.PostForm.Get("email")),
			Message: strings.TrimSpace(r.PostForm.Get("message")),
		}
		if msg.Name == "" || msg.Email == "" || msg.Message == "" {
			s.render(w, http.StatusOK, s.templates.contactResult, map[string]any{"Error": "Please fill in every field."})
			return
		}

		if s.mailer == nil {
			s.logger.Warn().Str("client", s.fingerprint.Of(r)).Msg("contact form submitted but mail is not configured")
			s.render(w, http.StatusOK, s.templates.contactResult, map[string]any{"Error": "Sorry, messages cannot be sent right now."})
			return
		}
		if err := s.mailer.Send(r.Context(), msg); err != nil {
			s.logger.Error().Err(err).Str("client", s.fingerprint.Of(r)).Msg("contact mail failed")
			s.render(w, http.StatusOK, s.templates.contactResult, map[string]any{"Error": "Sorry, there was an error sending your message. Please try again later."})
			return
		}

		s.logger.Info().Str("client", s.fingerprint.Of(r)).Msg("contact message sent")
		s.render(w, http.StatusOK, s.templates.contactResult, map[string]any{"Success": "Thank you for your message! I'll get back to you soon."})
	}
}
