// Package content holds the portfolio records and keeps live views of them.
package content

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jrsteele09/go-portfolio/realtime"
)

const (
	TableSettings   = "site_settings"
	TableProjects   = "projects"
	TableEducation  = "education"
	TableExperience = "experience"

	// SettingsID is the id of the single site_settings row
	SettingsID = "site"

	// TopicSettings is the broadcast topic for "settings changed"
	TopicSettings = "settings-changed"
)

// Tables lists every table the service reads.
var Tables = []string{TableSettings, TableProjects, TableEducation, TableExperience}

type SiteSettings struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Tagline     string `json:"tagline"`
	About       string `json:"about"`
	Email       string `json:"email"`
	ShowContact bool   `json:"show_contact"`
}

// DefaultSettings is shown until the remote row exists.
func DefaultSettings() SiteSettings {
	return SiteSettings{ID: SettingsID, Title: "Portfolio", ShowContact: true}
}

func (s SiteSettings) Row() realtime.Row {
	return realtime.Row{
		"id":           SettingsID,
		"title":        s.Title,
		"tagline":      s.Tagline,
		"about":        s.About,
		"email":        s.Email,
		"show_contact": s.ShowContact,
	}
}

type Project struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	URL       string `json:"url"`
	Tags      string `json:"tags"`
	SortOrder int    `json:"sort_order"`
}

// TagList splits the comma separated tags.
func (p Project) TagList() []string {
	var out []string
	for _, tag := range strings.Split(p.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func (p Project) Row() realtime.Row {
	return realtime.Row{
		"id":         p.ID,
		"title":      p.Title,
		"summary":    p.Summary,
		"url":        p.URL,
		"tags":       p.Tags,
		"sort_order": p.SortOrder,
	}
}

func (p Project) order() int { return p.SortOrder }

type Education struct {
	ID            string `json:"id"`
	Institution   string `json:"institution"`
	Qualification string `json:"qualification"`
	Period        string `json:"period"`
	SortOrder     int    `json:"sort_order"`
}

func (e Education) Row() realtime.Row {
	return realtime.Row{
		"id":            e.ID,
		"institution":   e.Institution,
		"qualification": e.Qualification,
		"period":        e.Period,
		"sort_order":    e.SortOrder,
	}
}

func (e Education) order() int { return e.SortOrder }

type Experience struct {
	ID        string `json:"id"`
	Company   string `json:"company"`
	Role      string `json:"role"`
	Period    string `json:"period"`
	Summary   string `json:"summary"`
	SortOrder int    `json:"sort_order"`
}

func (e Experience) Row() realtime.Row {
	return realtime.Row{
		"id":         e.ID,
		"company":    e.Company,
		"role":       e.Role,
		"period":     e.Period,
		"summary":    e.Summary,
		"sort_order": e.SortOrder,
	}
}

func (e Experience) order() int { return e.SortOrder }

type ordered interface {
	order() int
}

// decodeRow converts a generic row into T through its JSON form.
func decodeRow[T any](row realtime.Row) (T, error) {
	var v T
	raw, err := json.Marshal(row)
	if err != nil {
		return v, fmt.Errorf("encode row: %w", err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode row: %w", err)
	}
	return v, nil
}

func decodeRows[T ordered](rows []realtime.Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		v, err := decodeRow[T](row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].order() < out[j].order() })
	return out, nil
}
