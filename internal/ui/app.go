package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tgienger/doit/internal/store"
	"github.com/tgienger/doit/internal/ui/views"
)

const lastProjectKey = "last_project_id"

// Currently active view
type View int

const (
	ViewProjects View = iota
	ViewTasks
	ViewStats
)

// Prefs persists small UI preferences. Every storage backend fits.
type Prefs interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type loadedMsg struct{}

type App struct {
	store       *store.Store
	prefs       Prefs
	logger      *zap.Logger
	currentView View
	projectList *views.ProjectListView
	taskList    *views.TaskListView
	statsView   *views.StatsView
	changes     <-chan struct{}
	unsubscribe func()
	width       int
	height      int
}

// NewApp creates the application around a store that may still be loading.
func NewApp(st *store.Store, prefs Prefs, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	changes, unsubscribe := st.Subscribe()
	return &App{
		store:       st,
		prefs:       prefs,
		logger:      logger.Named("ui"),
		currentView: ViewProjects,
		projectList: views.NewProjectListView(st),
		changes:     changes,
		unsubscribe: unsubscribe,
	}
}

// Close detaches the app from store notifications.
func (a *App) Close() {
	a.unsubscribe()
}

// CurrentView reports which view is active.
func (a *App) CurrentView() View {
	return a.currentView
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{views.WaitForChange(a.changes)}
	if a.store.Snapshot().Loading {
		cmds = append(cmds, a.load)
	} else {
		cmds = append(cmds, func() tea.Msg { return loadedMsg{} })
	}
	return tea.Batch(cmds...)
}

func (a *App) load() tea.Msg {
	a.store.Load(context.Background())
	return loadedMsg{}
}

// restoreLastProject reopens the project that was open when the app last quit
func (a *App) restoreLastProject() tea.Cmd {
	id, ok, err := a.prefs.Get(context.Background(), lastProjectKey)
	if err != nil {
		a.logger.Warn("read last project", zap.Error(err))
		return nil
	}
	if !ok || id == "" {
		return nil
	}
	if _, found := a.store.Project(id); !found {
		return nil
	}
	return a.openProject(id)
}

func (a *App) openProject(projectID string) tea.Cmd {
	a.currentView = ViewTasks
	a.taskList = views.NewTaskListView(a.store, projectID)
	a.rememberProject(projectID)
	return a.resize()
}

func (a *App) rememberProject(projectID string) {
	if err := a.prefs.Set(context.Background(), lastProjectKey, projectID); err != nil {
		a.logger.Warn("save last project", zap.Error(err))
	}
}

func (a *App) forgetProject() {
	if err := a.prefs.Delete(context.Background(), lastProjectKey); err != nil {
		a.logger.Warn("clear last project", zap.Error(err))
	}
}

// resize replays the window size to a freshly built view
func (a *App) resize() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Always update project list size since it persists
		a.projectList.Update(msg)

	case loadedMsg:
		a.projectList.Refresh()
		return a, a.restoreLastProject()

	case views.StoreChanged:
		// keep listening, then let the active view refresh below
		a.projectList.Refresh()
		next := views.WaitForChange(a.changes)
		_, cmd := a.active().Update(msg)
		return a, tea.Batch(next, cmd)

	case views.SelectedProject:
		return a, a.openProject(msg.ProjectID)

	case views.ShowStats:
		a.currentView = ViewStats
		a.statsView = views.NewStatsView(a.store)
		return a, a.resize()

	case views.BackToProjects:
		a.currentView = ViewProjects
		a.taskList = nil
		a.statsView = nil
		a.forgetProject()
		a.projectList.Refresh()
		return a, a.resize()
	}

	_, cmd := a.active().Update(msg)
	return a, cmd
}

func (a *App) active() tea.Model {
	switch a.currentView {
	case ViewTasks:
		if a.taskList != nil {
			return a.taskList
		}
	case ViewStats:
		if a.statsView != nil {
			return a.statsView
		}
	}
	return a.projectList
}

func (a *App) View() string {
	return a.active().View()
}
