package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/doit/internal/models"
	"github.com/tgienger/doit/internal/stats"
	"github.com/tgienger/doit/internal/store"
	"github.com/tgienger/doit/internal/ui/keys"
	"github.com/tgienger/doit/internal/ui/styles"
)

// StatsView shows aggregate productivity figures
type StatsView struct {
	store   *store.Store
	summary stats.Summary
	styles  *styles.Styles
	keys    keys.KeyMap
	width   int
	height  int
}

func NewStatsView(st *store.Store) *StatsView {
	v := &StatsView{
		store:  st,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
	v.Refresh()
	return v
}

// Refresh recomputes the summary from the store snapshot.
func (v *StatsView) Refresh() {
	v.summary = stats.Compute(v.store.Snapshot().Projects)
}

func (v *StatsView) Init() tea.Cmd {
	return nil
}

func (v *StatsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
	case StoreChanged:
		v.Refresh()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Stats):
			return v, send(BackToProjects{})
		}
	}
	return v, nil
}

func (v *StatsView) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		RenderSummary(v.styles, v.summary),
		v.styles.Help.Render(v.styles.HelpKey.Render("esc")+" back • "+v.styles.HelpKey.Render("q")+" quit"),
	)
	centered := lipgloss.Place(styles.ContentWidth(v.width), v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

// RenderSummary lays out a summary as a panel. The CLI reuses it.
func RenderSummary(s *styles.Styles, sum stats.Summary) string {
	stat := func(value, label string) string {
		return lipgloss.JoinVertical(lipgloss.Left,
			s.StatValue.Render(value),
			s.StatLabel.Render(label),
		)
	}
	gap := "    "

	row1 := lipgloss.JoinHorizontal(lipgloss.Top,
		stat(fmt.Sprintf("%d%%", sum.TaskCompletionRate), "tasks completed"),
		gap,
		stat(fmt.Sprintf("%d", sum.CompletedProjects), fmt.Sprintf("of %d projects done", sum.TotalProjects)),
		gap,
		stat(fmt.Sprintf("%d", sum.PendingTasks()), "tasks pending"),
		gap,
		stat(fmt.Sprintf("%d", sum.ActiveProjects()), "projects active"),
	)

	bar := styles.ProgressBar(models.Progress{Completed: sum.CompletedTasks, Total: sum.TotalTasks}, 30)
	overall := fmt.Sprintf("%s %d/%d tasks • %d%% of projects complete",
		bar, sum.CompletedTasks, sum.TotalTasks, sum.ProjectCompletionRate)

	var prio []string
	for i := len(models.Priorities) - 1; i >= 0; i-- {
		p := models.Priorities[i]
		label := lipgloss.NewStyle().Foreground(styles.PriorityColor(p)).Width(8).Render(string(p))
		prio = append(prio, fmt.Sprintf("%s %d", label, sum.ByPriority[p]))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Statistics"),
		"",
		row1,
		"",
		overall,
		"",
		s.TitleMuted.Render("Projects by priority"),
		lipgloss.JoinVertical(lipgloss.Left, prio...),
	)
	return s.Panel.Render(body)
}
