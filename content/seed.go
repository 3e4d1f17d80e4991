package content

import (
	"context"

	"github.com/jrsteele09/go-portfolio/internal/errors"
	"github.com/jrsteele09/go-portfolio/realtime"
)

// Seed writes demo content for the in-memory development backend.
func Seed(ctx context.Context, w realtime.Writer) error {
	settings := SiteSettings{
		Title:       "Jane Doe",
		Tagline:     "Teacher and software developer",
		About:       "I teach computing and build small tools for classrooms.",
		Email:       "jane@example.com",
		ShowContact: true,
	}
	if err := w.Upsert(ctx, TableSettings, settings.Row()); err != nil {
		return errors.Wrapf(err, "seed settings")
	}

	projects := []Project{
		{ID: "p1", Title: "Quiz Builder", Summary: "Self-marking quizzes for lessons.", Tags: "go, htmx", SortOrder: 1},
		{ID: "p2", Title: "Lab Timetable", Summary: "Room booking for the computing labs.", Tags: "postgres", SortOrder: 2},
	}
	for _, p := range projects {
		if err := w.Upsert(ctx, TableProjects, p.Row()); err != nil {
			return errors.Wrapf(err, "seed project %s", p.ID)
		}
	}

	if err := w.Upsert(ctx, TableEducation, Education{
		ID: "e1", Institution: "University of Leeds", Qualification: "BSc Computer Science", Period: "2010 - 2013", SortOrder: 1,
	}.Row()); err != nil {
		return errors.Wrapf(err, "seed education")
	}

	if err := w.Upsert(ctx, TableExperience, Experience{
		ID: "x1", Company: "Northfield Academy", Role: "Head of Computing", Period: "2018 - present",
		Summary: "Runs the computing curriculum for years 7 to 13.", SortOrder: 1,
	}.Row()); err != nil {
		return errors.Wrapf(err, "seed experience")
	}
	return nil
}
