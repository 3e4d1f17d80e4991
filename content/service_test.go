package content_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-portfolio/broadcast"
	"github.com/jrsteele09/go-portfolio/content"
	"github.com/jrsteele09/go-portfolio/internal/errors"
	"github.com/jrsteele09/go-portfolio/realtime/memrealtime"
	"github.com/jrsteele09/go-portfolio/storage"
	"github.com/jrsteele09/go-portfolio/storage/memkv"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func newService(t *testing.T, seed bool) (*content.Service, *memrealtime.Client, *memkv.Store) {
	t.Helper()
	ctx := context.Background()
	backend := memrealtime.New()
	backend.CreateTable(content.Tables...)
	if seed {
		require.NoError(t, content.Seed(ctx, backend))
	}
	kv := memkv.New()
	svc := content.NewService(ctx, content.ServiceConfig{
		Backend:      backend,
		Broadcaster:  broadcast.NewHub(),
		Snapshots:    kv,
		PollInterval: time.Hour,
	})
	t.Cleanup(svc.Close)
	return svc, backend, kv
}

func TestService_LoadsSeededContent(t *testing.T) {
	svc, _, kv := newService(t, true)

	require.Eventually(t, func() bool { return svc.Settings().Current().Title == "Jane Doe" }, waitFor, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(svc.Projects().State().Data) == 2 }, waitFor, 5*time.Millisecond)

	projects := svc.Projects().State().Data
	require.Equal(t, "Quiz Builder", projects[0].Title)
	require.Equal(t, []string{"go", "htmx"}, projects[0].TagList())

	require.Eventually(t, func() bool {
		_, ok, _ := kv.Get(context.Background(), storage.KeySettingsSnapshot)
		return ok
	}, waitFor, 5*time.Millisecond)
}

func TestService_MissingSettingsRowShowsDefaults(t *testing.T) {
	svc, _, _ := newService(t, false)

	require.Eventually(t, func() bool { return !svc.Settings().State().Loading }, waitFor, 5*time.Millisecond)
	require.Equal(t, content.DefaultSettings(), svc.Settings().Current())
}

func TestService_UpdateSettings(t *testing.T) {
	svc, _, _ := newService(t, true)
	require.Eventually(t, func() bool { return svc.Settings().Current().Title == "Jane Doe" }, waitFor, 5*time.Millisecond)

	err := svc.UpdateSettings(context.Background(), content.SiteSettings{Title: "  Jane D.  ", Tagline: "New"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return svc.Settings().Current().Title == "Jane D." }, waitFor, 5*time.Millisecond)
	require.Equal(t, content.SettingsID, svc.Settings().Current().ID)

	err = svc.UpdateSettings(context.Background(), content.SiteSettings{Title: " "})
	require.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestService_ProjectLifecycle(t *testing.T) {
	svc, _, _ := newService(t, true)
	ctx := context.Background()
	require.Eventually(t, func() bool { return len(svc.Projects().State().Data) == 2 }, waitFor, 5*time.Millisecond)

	id, err := svc.UpsertProject(ctx, content.Project{Title: "Marking Bot", SortOrder: 0})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Eventually(t, func() bool {
		data := svc.Projects().State().Data
		return len(data) == 3 && data[0].ID == id
	}, waitFor, 5*time.Millisecond)

	require.NoError(t, svc.DeleteProject(ctx, id))
	require.Eventually(t, func() bool { return len(svc.Projects().State().Data) == 2 }, waitFor, 5*time.Millisecond)

	require.ErrorIs(t, svc.DeleteProject(ctx, id), errors.ErrNotFound)

	_, err = svc.UpsertProject(ctx, content.Project{})
	require.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestService_EducationLifecycle(t *testing.T) {
	svc, _, _ := newService(t, true)
	ctx := context.Background()
	require.Eventually(t, func() bool { return len(svc.Education().State().Data) == 1 }, waitFor, 5*time.Millisecond)

	id, err := svc.UpsertEducation(ctx, content.Education{Institution: "  Open University ", Qualification: "MSc", SortOrder: 5})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		data := svc.Education().State().Data
		return len(data) == 2 && data[1].ID == id && data[1].Institution == "Open University"
	}, waitFor, 5*time.Millisecond)

	_, err = svc.UpsertEducation(ctx, content.Education{ID: id, Institution: "Open University", Qualification: "PhD", SortOrder: 5})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		data := svc.Education().State().Data
		return len(data) == 2 && data[1].Qualification == "PhD"
	}, waitFor, 5*time.Millisecond)

	require.NoError(t, svc.DeleteEducation(ctx, id))
	require.Eventually(t, func() bool { return len(svc.Education().State().Data) == 1 }, waitFor, 5*time.Millisecond)
	require.ErrorIs(t, svc.DeleteEducation(ctx, id), errors.ErrNotFound)

	_, err = svc.UpsertEducation(ctx, content.Education{Qualification: "BSc"})
	require.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestService_ExperienceLifecycle(t *testing.T) {
	svc, _, _ := newService(t, true)
	ctx := context.Background()
	require.Eventually(t, func() bool { return len(svc.Experience().State().Data) == 1 }, waitFor, 5*time.Millisecond)

	id, err := svc.UpsertExperience(ctx, content.Experience{Company: "Acme", Role: "Engineer", SortOrder: 9})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Eventually(t, func() bool { return len(svc.Experience().State().Data) == 2 }, waitFor, 5*time.Millisecond)

	require.NoError(t, svc.DeleteExperience(ctx, id))
	require.Eventually(t, func() bool { return len(svc.Experience().State().Data) == 1 }, waitFor, 5*time.Millisecond)
	require.ErrorIs(t, svc.DeleteExperience(ctx, id), errors.ErrNotFound)

	_, err = svc.UpsertExperience(ctx, content.Experience{Role: "CTO"})
	require.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestService_SnapshotSeedsNextStart(t *testing.T) {
	ctx := context.Background()
	backend := memrealtime.New()
	backend.CreateTable(content.Tables...)
	require.NoError(t, content.Seed(ctx, backend))
	kv := memkv.New()

	first := content.NewService(ctx, content.ServiceConfig{Backend: backend, Snapshots: kv, PollInterval: time.Hour})
	require.Eventually(t, func() bool { return first.Settings().Current().Title == "Jane Doe" }, waitFor, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok, _ := kv.Get(ctx, storage.KeySettingsSnapshot)
		return ok
	}, waitFor, 5*time.Millisecond)
	first.Close()

	backend.FailFetch(content.TableSettings, errors.ErrInternal)
	second := content.NewService(ctx, content.ServiceConfig{Backend: backend, Snapshots: kv, PollInterval: time.Hour})
	defer second.Close()

	require.Equal(t, "Jane Doe", second.Settings().Current().Title)
	require.Eventually(t, func() bool { return second.Settings().State().Err != nil }, waitFor, 5*time.Millisecond)
	require.Equal(t, "Jane Doe", second.Settings().Current().Title)
}
