package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/doit/internal/models"
	"github.com/tgienger/doit/internal/store"
	"github.com/tgienger/doit/internal/ui/keys"
	"github.com/tgienger/doit/internal/ui/styles"
)

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string       { return i.project.Title }
func (i projectItem) Description() string { return i.project.Description }
func (i projectItem) FilterValue() string { return i.project.Title }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	width := max(d.width-4, 20)
	style := d.styles.ListItem
	if index == m.Index() {
		style = d.styles.ListSelected
	}

	status := lipgloss.NewStyle().Foreground(styles.StatusColor(p.project.Status)).Render(string(p.project.Status))
	prio := ""
	if p.project.Priority != models.PriorityNone {
		prio = lipgloss.NewStyle().Foreground(styles.PriorityColor(p.project.Priority)).Render(string(p.project.Priority))
	}
	title := fmt.Sprintf("%s  %s %s", p.project.Title, status, prio)

	pr := p.project.Progress()
	detail := fmt.Sprintf("%s %d/%d", styles.ProgressBar(pr, 12), pr.Completed, pr.Total)
	if p.project.Description != "" {
		detail += "  " + d.styles.TitleMuted.Render(p.project.Description)
	}

	fmt.Fprintf(w, "%s\n%s", style.Width(width).Render(title), style.Width(width).Render(detail))
}

// ProjectListView lists projects and hosts the create/edit form
type ProjectListView struct {
	store    *store.Store
	list     list.Model
	delegate *projectDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	loaded   bool
	status   string

	// create/edit form
	creating    bool
	editingID   string // empty when creating
	newName     textinput.Model
	newDesc     textinput.Model
	newPriority models.Priority
	focusIdx    int // 0=name, 1=desc, 2=priority, 3=confirm

	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

func NewProjectListView(st *store.Store) *ProjectListView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Project name"
	newName.CharLimit = 100

	newDesc := textinput.New()
	newDesc.Placeholder = "Description (optional)"
	newDesc.CharLimit = 200

	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	v := &ProjectListView{
		store:    st,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
		newDesc:  newDesc,
	}
	v.Refresh()
	return v
}

// Refresh reloads the list from the store snapshot.
func (v *ProjectListView) Refresh() {
	snap := v.store.Snapshot()
	items := make([]list.Item, len(snap.Projects))
	for i, p := range snap.Projects {
		items[i] = projectItem{project: p}
	}
	v.list.SetItems(items)
	v.loaded = !snap.Loading
}

func (v *ProjectListView) Init() tea.Cmd {
	return nil
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case StoreChanged:
		v.Refresh()
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.creating {
			return v.updateForm(msg)
		}
		// while filtering every key belongs to the filter input
		if v.list.FilterState() == list.Filtering {
			break
		}

		v.status = ""
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, nil
		case key.Matches(msg, v.keys.New):
			if !v.loaded {
				return v, nil
			}
			v.openForm(models.Project{Priority: models.PriorityMedium})
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Edit):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.openForm(item.project)
				return v, textinput.Blink
			}
		case key.Matches(msg, v.keys.Stats):
			return v, send(ShowStats{})
		case msg.String() == "?":
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, send(SelectedProject{ProjectID: item.project.ID})
			}
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.confirmingDelete = true
				v.deleteTargetID = item.project.ID
				v.deleteTargetName = item.project.Title
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		if err := v.store.DeleteProject(v.deleteTargetID); err != nil {
			v.status = err.Error()
		}
		v.Refresh()
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *ProjectListView) openForm(p models.Project) {
	v.creating = true
	v.editingID = p.ID
	v.focusIdx = 0
	v.newName.SetValue(p.Title)
	v.newDesc.SetValue(p.Description)
	v.newPriority = p.Priority
	v.updateFocus()
}

func (v *ProjectListView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.submitForm()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 3) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 4
		v.updateFocus()
		return v, nil

	case v.focusIdx == 2 && (msg.String() == " " || msg.String() == "left" || msg.String() == "right"):
		v.newPriority = v.newPriority.Next()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 3 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.submitForm()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newName, cmd = v.newName.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	}
	return v, cmd
}

// submitForm creates or updates the project. Names are trimmed here; the
// store only rejects the empty string.
func (v *ProjectListView) submitForm() tea.Cmd {
	name := strings.TrimSpace(v.newName.Value())
	if name == "" {
		v.status = "name is required"
		return nil
	}
	desc := strings.TrimSpace(v.newDesc.Value())

	if v.editingID != "" {
		p, ok := v.store.Project(v.editingID)
		v.creating = false
		if !ok {
			return nil
		}
		p.Title, p.Description, p.Priority = name, desc, v.newPriority
		if err := v.store.UpdateProject(p); err != nil {
			v.status = err.Error()
		}
		v.Refresh()
		return nil
	}

	project, err := v.store.AddProject(name, desc, v.newPriority)
	if err != nil {
		v.status = err.Error()
		return nil
	}
	v.creating = false
	return send(SelectedProject{ProjectID: project.ID})
}

func (v *ProjectListView) updateFocus() {
	v.newName.Blur()
	v.newDesc.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 1:
		v.newDesc.Focus()
	}
}

// View renders the view
func (v *ProjectListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.creating {
		return v.renderForm()
	}
	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}
	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.renderHelp()
	if v.status != "" {
		content += "\n" + lipgloss.NewStyle().Foreground(styles.Current.Error).Render(v.status)
	}
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
		"",
		s.ButtonPrimary.Render(" New Project "),
	)
	return v.place(content)
}

func (v *ProjectListView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle, descStyle, prioStyle, btnStyle := s.Input, s.Input, s.Input, s.Button
	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		prioStyle = s.InputFocused
	case 3:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)
	heading, button := "New Project", " Create "
	if v.editingID != "" {
		heading, button = "Edit Project", " Save "
	}
	prio := lipgloss.NewStyle().Foreground(styles.PriorityColor(v.newPriority)).Render(string(v.newPriority))

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(heading),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.newDesc.View()),
		"",
		"Priority (space to change):",
		prioStyle.Width(inputWidth).Render(prio),
		"",
		btnStyle.Render(button),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
		lipgloss.NewStyle().Foreground(styles.Current.Error).Render(v.status),
	)
	return v.place(form)
}

func (v *ProjectListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 60 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	k := v.styles.HelpKey
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s edit • %s del • %s stats • %s quit",
			k.Render("↵"), k.Render("n"), k.Render("e"), k.Render("d"), k.Render("s"), k.Render("q"),
		),
	)
}

func (v *ProjectListView) renderHelpPopup() string {
	s := v.styles

	helpItems := []string{
		s.HelpKey.Render("↵") + "      open project",
		s.HelpKey.Render("n") + "      new project",
		s.HelpKey.Render("e") + "      edit project",
		s.HelpKey.Render("d") + "      delete project",
		s.HelpKey.Render("s") + "      statistics",
		s.HelpKey.Render("/") + "      filter",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)
	return v.place(s.Panel.Render(content))
}

func (v *ProjectListView) renderDeleteConfirm() string {
	s := v.styles

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Project?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q and all of its tasks will be removed.", v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	return v.place(content)
}

// place centers content within the content width, then in the terminal.
func (v *ProjectListView) place(content string) string {
	centered := lipgloss.Place(styles.ContentWidth(v.width), v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
