package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/doit/internal/store"
	"github.com/tgienger/doit/internal/ui/views"
)

func newApp(t *testing.T) (*App, *store.Store, *store.MemoryStorage) {
	t.Helper()
	storage := store.NewMemoryStorage()
	st := store.New(storage, store.Options{})
	t.Cleanup(func() { st.Close(context.Background()) })
	app := NewApp(st, storage, nil)
	t.Cleanup(app.Close)
	return app, st, storage
}

func TestAppLoadsStore(t *testing.T) {
	app, st, _ := newApp(t)
	require.True(t, st.Snapshot().Loading)

	msg := app.load()
	app.Update(msg)

	assert.False(t, st.Snapshot().Loading)
	assert.Equal(t, ViewProjects, app.CurrentView())
}

func TestAppRestoresLastProject(t *testing.T) {
	app, st, storage := newApp(t)
	st.Load(context.Background())
	p, err := st.AddProject("Launch", "", "")
	require.NoError(t, err)
	require.NoError(t, storage.Set(context.Background(), lastProjectKey, p.ID))

	app.Update(loadedMsg{})

	assert.Equal(t, ViewTasks, app.CurrentView())
}

func TestAppIgnoresStaleLastProject(t *testing.T) {
	app, st, storage := newApp(t)
	st.Load(context.Background())
	require.NoError(t, storage.Set(context.Background(), lastProjectKey, "deleted"))

	app.Update(loadedMsg{})

	assert.Equal(t, ViewProjects, app.CurrentView())
}

func TestAppNavigation(t *testing.T) {
	app, st, storage := newApp(t)
	st.Load(context.Background())
	p, _ := st.AddProject("Launch", "", "")

	app.Update(views.SelectedProject{ProjectID: p.ID})
	assert.Equal(t, ViewTasks, app.CurrentView())
	id, _, _ := storage.Get(context.Background(), lastProjectKey)
	assert.Equal(t, p.ID, id)

	app.Update(views.BackToProjects{})
	assert.Equal(t, ViewProjects, app.CurrentView())
	_, ok, err := storage.Get(context.Background(), lastProjectKey)
	require.NoError(t, err)
	assert.False(t, ok, "last project should be cleared")

	app.Update(views.ShowStats{})
	assert.Equal(t, ViewStats, app.CurrentView())
	assert.Contains(t, app.View(), "Statistics")
}

func TestAppRefreshesOnStoreChange(t *testing.T) {
	app, st, _ := newApp(t)
	st.Load(context.Background())
	p, _ := st.AddProject("Launch", "", "")
	app.Update(views.SelectedProject{ProjectID: p.ID})

	_, err := st.AddTask(p.ID, "written elsewhere")
	require.NoError(t, err)
	_, cmd := app.Update(views.StoreChanged{})

	assert.NotNil(t, cmd)
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	assert.Contains(t, app.View(), "written elsewhere")
}

func TestAppCloseReleasesPendingWait(t *testing.T) {
	app, st, _ := newApp(t)
	st.Load(context.Background())

	wait := views.WaitForChange(app.changes)
	// drain the load notification
	require.Equal(t, views.StoreChanged{}, wait())

	app.Close()
	assert.Nil(t, wait())
}
