package views

import (
	tea "github.com/charmbracelet/bubbletea"
)

// StoreChanged is delivered after the store reports a mutation or load.
type StoreChanged struct{}

// SelectedProject asks the app to open a project's task list
type SelectedProject struct {
	ProjectID string
}

// BackToProjects signals to go back to the project list
type BackToProjects struct{}

// ShowStats asks the app to open the statistics screen
type ShowStats struct{}

// WaitForChange blocks on a store subscription and turns the next
// notification into a StoreChanged message. Re-issue it after each one.
func WaitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return StoreChanged{}
	}
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
