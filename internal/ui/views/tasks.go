package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/doit/internal/models"
	"github.com/tgienger/doit/internal/store"
	"github.com/tgienger/doit/internal/ui/keys"
	"github.com/tgienger/doit/internal/ui/styles"
)

// TaskListView shows the tasks of one project
type TaskListView struct {
	store   *store.Store
	project models.Project
	missing bool
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	cursor  int
	scrollY int
	status  string

	// Task creation/renaming
	editing   bool
	editingID string // empty for a new task
	editTitle textinput.Model

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	showHelpPopup bool
}

// NewTaskListView creates a task list for the project with the given ID
func NewTaskListView(st *store.Store, projectID string) *TaskListView {
	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 200

	v := &TaskListView{
		store:     st,
		project:   models.Project{ID: projectID},
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		editTitle: editTitle,
	}
	v.Refresh()
	return v
}

// ProjectID identifies the project being shown.
func (v *TaskListView) ProjectID() string {
	return v.project.ID
}

// Refresh re-reads the project from the store.
func (v *TaskListView) Refresh() {
	p, ok := v.store.Project(v.project.ID)
	if !ok {
		v.missing = true
		return
	}
	v.project = p
	v.cursor = clamp(v.cursor, 0, max(len(p.Tasks)-1, 0))
	v.ensureVisible()
}

func (v *TaskListView) Init() tea.Cmd {
	return nil
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.editTitle.Width = clamp(styles.ContentWidth(msg.Width)-10, 20, 60)
		v.ensureVisible()
		return v, nil

	case StoreChanged:
		v.Refresh()
		if v.missing {
			return v, send(BackToProjects{})
		}
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.status = ""
	tasks := v.project.Tasks

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Back):
		return v, send(BackToProjects{})
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
	case key.Matches(msg, v.keys.Toggle), key.Matches(msg, v.keys.Enter):
		if t, ok := v.selected(); ok {
			v.report(v.store.ToggleTaskComplete(v.project.ID, t.ID))
		}
	case key.Matches(msg, v.keys.Priority):
		if t, ok := v.selected(); ok {
			t.Priority = t.Priority.Next()
			v.report(v.store.UpdateTask(v.project.ID, t))
		}
	case key.Matches(msg, v.keys.New):
		v.startEdit(models.Task{})
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Edit):
		if t, ok := v.selected(); ok {
			v.startEdit(t)
			return v, textinput.Blink
		}
	case key.Matches(msg, v.keys.Delete):
		if t, ok := v.selected(); ok {
			v.confirmingDelete = true
			v.deleteTargetID = t.ID
			v.deleteTargetName = t.Title
		}
	case msg.String() == "?":
		v.showHelpPopup = true
	}
	return v, nil
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		v.report(v.store.DeleteTask(v.project.ID, v.deleteTargetID))
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		v.editTitle.Blur()
		return v, nil
	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Save):
		v.saveTask()
		return v, nil
	}

	var cmd tea.Cmd
	v.editTitle, cmd = v.editTitle.Update(msg)
	return v, cmd
}

func (v *TaskListView) startEdit(t models.Task) {
	v.editing = true
	v.editingID = t.ID
	v.editTitle.SetValue(t.Title)
	v.editTitle.CursorEnd()
	v.editTitle.Focus()
}

func (v *TaskListView) saveTask() {
	title := strings.TrimSpace(v.editTitle.Value())
	if title == "" {
		v.status = "title is required"
		return
	}
	v.editing = false
	v.editTitle.Blur()

	if v.editingID == "" {
		if _, err := v.store.AddTask(v.project.ID, title); err != nil {
			v.report(err)
			return
		}
		// new tasks are appended; follow them
		v.cursor = len(v.project.Tasks)
		v.Refresh()
		return
	}

	i := v.project.FindTask(v.editingID)
	if i < 0 {
		return
	}
	t := v.project.Tasks[i]
	t.Title = title
	v.report(v.store.UpdateTask(v.project.ID, t))
}

func (v *TaskListView) selected() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.project.Tasks) {
		return models.Task{}, false
	}
	return v.project.Tasks[v.cursor], true
}

// report shows a store error, if any, and picks up the new state.
func (v *TaskListView) report(err error) {
	if err != nil {
		v.status = err.Error()
	}
	v.Refresh()
}

func (v *TaskListView) visibleRows() int {
	return max(v.height-10, 3)
}

func (v *TaskListView) ensureVisible() {
	rows := v.visibleRows()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	}
	if v.cursor >= v.scrollY+rows {
		v.scrollY = v.cursor - rows + 1
	}
	v.scrollY = max(v.scrollY, 0)
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		v.renderHeader(),
		"",
		v.renderTaskList(),
	)
	if v.editing {
		content = lipgloss.JoinVertical(lipgloss.Left, content, "", v.renderEditor())
	}
	content = lipgloss.JoinVertical(lipgloss.Left, content, v.renderHelp())
	if v.status != "" {
		content += "\n" + lipgloss.NewStyle().Foreground(styles.Current.Error).Render(v.status)
	}
	return styles.CenterView(content, v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	p := v.project
	pr := p.Progress()

	title := s.Title.Render(p.Title)
	status := s.Badge.Foreground(styles.StatusColor(p.Status)).Render(string(p.Status))
	line := lipgloss.JoinHorizontal(lipgloss.Center, title, " ", status)

	progress := fmt.Sprintf("%s %d of %d done (%.0f%%)",
		styles.ProgressBar(pr, 20), pr.Completed, pr.Total, pr.Percent())

	parts := []string{line}
	if p.Description != "" {
		parts = append(parts, s.TitleMuted.Render(p.Description))
	}
	parts = append(parts, progress)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (v *TaskListView) renderTaskList() string {
	tasks := v.project.Tasks
	if len(tasks) == 0 {
		return v.styles.TitleMuted.Render("No tasks yet. Press 'n' to add one.")
	}

	end := min(v.scrollY+v.visibleRows(), len(tasks))
	var rows []string
	for i := v.scrollY; i < end; i++ {
		rows = append(rows, v.renderTaskItem(tasks[i], i == v.cursor))
	}
	return strings.Join(rows, "\n")
}

func (v *TaskListView) renderTaskItem(t models.Task, selected bool) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-4, 20)

	check := "[ ]"
	title := t.Title
	if t.Completed {
		check = lipgloss.NewStyle().Foreground(styles.Current.Success).Render("[x]")
		title = s.TaskDone.Render(title)
	}
	line := check + " " + title
	if t.Priority != models.PriorityNone {
		line += " " + lipgloss.NewStyle().Foreground(styles.PriorityColor(t.Priority)).Render("!"+string(t.Priority))
	}

	if selected {
		return s.ListSelected.Width(width).Render(line)
	}
	return s.ListItem.Width(width).Render(line)
}

func (v *TaskListView) renderEditor() string {
	label := "New task:"
	if v.editingID != "" {
		label = "Rename task:"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		label,
		v.styles.InputFocused.Render(v.editTitle.View()),
		v.styles.TitleMuted.Render("Enter: save • Esc: cancel"),
	)
}

func (v *TaskListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 60 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	k := v.styles.HelpKey
	return v.styles.Help.Render(
		fmt.Sprintf("%s toggle • %s new • %s rename • %s priority • %s del • %s back",
			k.Render("space"), k.Render("n"), k.Render("e"), k.Render("p"), k.Render("d"), k.Render("esc"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles

	helpItems := []string{
		s.HelpKey.Render("space") + "  toggle complete",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("e") + "      rename task",
		s.HelpKey.Render("p") + "      cycle priority",
		s.HelpKey.Render("d") + "      delete task",
		s.HelpKey.Render("esc") + "    back to projects",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)
	return v.place(s.Panel.Render(content))
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q will be removed.", v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	return v.place(content)
}

func (v *TaskListView) place(content string) string {
	centered := lipgloss.Place(styles.ContentWidth(v.width), v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
