package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-portfolio/authurl"
	"github.com/jrsteele09/go-portfolio/internal/errors"
	"github.com/jrsteele09/go-portfolio/realtime"
	"github.com/jrsteele09/go-portfolio/storage"
)

// Backend is the remote store the service reads and writes.
type Backend interface {
	realtime.Client
	realtime.Writer
}

type ServiceConfig struct {
	Backend     Backend
	Broadcaster realtime.Broadcaster
	// Snapshots keeps the last displayed settings across restarts. Optional.
	Snapshots    storage.KV
	PollInterval time.Duration
	Logger       *zerolog.Logger
}

// Service keeps live views of the portfolio content and applies admin edits.
type Service struct {
	backend Backend
	bus     realtime.Broadcaster
	logger  zerolog.Logger

	settings   *realtime.Settings[SiteSettings]
	projects   *realtime.AutoRefresh[[]Project]
	education  *realtime.AutoRefresh[[]Education]
	experience *realtime.AutoRefresh[[]Experience]
}

func NewService(ctx context.Context, cfg ServiceConfig) *Service {
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	s := &Service{backend: cfg.Backend, bus: cfg.Broadcaster, logger: logger}

	settingsFilter := authurl.Filter{Column: "id", Value: SettingsID}
	s.settings = realtime.NewSettings(ctx, realtime.SettingsConfig[SiteSettings]{
		Client:       cfg.Backend,
		Table:        TableSettings,
		Filter:       settingsFilter,
		Fetch:        s.fetchSettings(settingsFilter),
		Snapshots:    cfg.Snapshots,
		SnapshotKey:  storage.KeySettingsSnapshot,
		Broadcaster:  cfg.Broadcaster,
		Topic:        TopicSettings,
		PollInterval: cfg.PollInterval,
		Logger:       &logger,
	})
	s.projects = realtime.NewAutoRefresh(ctx, cfg.Backend, TableProjects, fetchList[Project](cfg.Backend, TableProjects))
	s.education = realtime.NewAutoRefresh(ctx, cfg.Backend, TableEducation, fetchList[Education](cfg.Backend, TableEducation))
	s.experience = realtime.NewAutoRefresh(ctx, cfg.Backend, TableExperience, fetchList[Experience](cfg.Backend, TableExperience))
	return s
}

func (s *Service) fetchSettings(filter authurl.Filter) realtime.FetchFunc[SiteSettings] {
	return func(ctx context.Context) (SiteSettings, error) {
		rows, err := s.backend.Fetch(ctx, TableSettings, filter)
		if err != nil {
			return SiteSettings{}, err
		}
		if len(rows) == 0 {
			return DefaultSettings(), nil
		}
		return decodeRow[SiteSettings](rows[0])
	}
}

func fetchList[T ordered](client realtime.Client, table string) realtime.FetchFunc[[]T] {
	return func(ctx context.Context) ([]T, error) {
		rows, err := client.Fetch(ctx, table, authurl.Filter{})
		if err != nil {
			return nil, err
		}
		return decodeRows[T](rows)
	}
}

func (s *Service) Settings() *realtime.Settings[SiteSettings] {
	return s.settings
}

func (s *Service) Projects() *realtime.AutoRefresh[[]Project] {
	return s.projects
}

func (s *Service) Education() *realtime.AutoRefresh[[]Education] {
	return s.education
}

func (s *Service) Experience() *realtime.AutoRefresh[[]Experience] {
	return s.experience
}

// UpdateSettings writes the settings row and tells same-origin peers to re-fetch.
func (s *Service) UpdateSettings(ctx context.Context, settings SiteSettings) error {
	settings.Title = strings.TrimSpace(settings.Title)
	if settings.Title == "" {
		return fmt.Errorf("%w: settings title is required", errors.ErrInvalidInput)
	}
	if err := s.backend.Upsert(ctx, TableSettings, settings.Row()); err != nil {
		return errors.Wrapf(err, "update settings")
	}
	if s.bus != nil {
		if err := s.bus.Publish(ctx, TopicSettings); err != nil {
			// the realtime channel and poll still pick the change up
			s.logger.Warn().Err(err).Msg("settings broadcast failed")
		}
	}
	s.settings.Refresh()
	return nil
}

// UpsertProject saves p, assigning an id to new projects. It returns the saved id.
func (s *Service) UpsertProject(ctx context.Context, p Project) (string, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return "", fmt.Errorf("%w: project title is required", errors.ErrInvalidInput)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.backend.Upsert(ctx, TableProjects, p.Row()); err != nil {
		return "", errors.Wrapf(err, "upsert project %s", p.ID)
	}
	return p.ID, nil
}

func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if err := s.backend.Delete(ctx, TableProjects, id); err != nil {
		return errors.Wrapf(err, "delete project %s", id)
	}
	return nil
}

func (s *Service) UpsertEducation(ctx context.Context, e Education) (string, error) {
	e.Institution = strings.TrimSpace(e.Institution)
	if e.Institution == "" {
		return "", fmt.Errorf("%w: institution is required", errors.ErrInvalidInput)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := s.backend.Upsert(ctx, TableEducation, e.Row()); err != nil {
		return "", errors.Wrapf(err, "upsert education %s", e.ID)
	}
	return e.ID, nil
}

func (s *Service) DeleteEducation(ctx context.Context, id string) error {
	if err := s.backend.Delete(ctx, TableEducation, id); err != nil {
		return errors.Wrapf(err, "delete education %s", id)
	}
	return nil
}

func (s *Service) UpsertExperience(ctx context.Context, x Experience) (string, error) {
	x.Company = strings.TrimSpace(x.Company)
	if x.Company == "" {
		return "", fmt.Errorf("%w: company is required", errors.ErrInvalidInput)
	}
	if x.ID == "" {
		x.ID = uuid.NewString()
	}
	if err := s.backend.Upsert(ctx, TableExperience, x.Row()); err != nil {
		return "", errors.Wrapf(err, "upsert experience %s", x.ID)
	}
	return x.ID, nil
}

func (s *Service) DeleteExperience(ctx context.Context, id string) error {
	if err := s.backend.Delete(ctx, TableExperience, id); err != nil {
		return errors.Wrapf(err, "delete experience %s", id)
	}
	return nil
}

func (s *Service) Close() {
	s.settings.Close()
	s.projects.Close()
	s.education.Close()
	s.experience.Close()
}
