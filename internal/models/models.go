package models

import (
	"fmt"
	"strings"
	"time"
)

// Priority is an optional importance level for projects and tasks.
// The zero value means no priority was set.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists the settable priorities in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is unset or one of the known levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Next cycles low -> medium -> high -> low. Unset starts at low.
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// ParsePriority parses a priority name, case-insensitively.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return PriorityNone, fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

// Status is the completion state of a project. It is always derived from
// the project's tasks.
type Status string

const (
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Task represents a single unit of work inside a project
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"createdAt"`
	ProjectID string     `json:"projectId"`
	Priority  Priority   `json:"priority,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Project represents a container of tasks
type Project struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	Status      Status     `json:"status"`
	Tasks       []Task     `json:"tasks"`
	Priority    Priority   `json:"priority,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	Color       string     `json:"color,omitempty"`
}

// DeriveStatus returns Completed when there is at least one task and every
// task is completed, InProgress otherwise.
func DeriveStatus(tasks []Task) Status {
	if len(tasks) == 0 {
		return StatusInProgress
	}
	for _, t := range tasks {
		if !t.Completed {
			return StatusInProgress
		}
	}
	return StatusCompleted
}

// RecomputeStatus sets Status from the current task list.
func (p *Project) RecomputeStatus() {
	p.Status = DeriveStatus(p.Tasks)
}

// Progress summarizes task completion for a single project
type Progress struct {
	Completed int
	Total     int
}

// Percent returns the completed share in the range 0-100.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Total) * 100
}

// Progress counts completed tasks.
func (p Project) Progress() Progress {
	pr := Progress{Total: len(p.Tasks)}
	for _, t := range p.Tasks {
		if t.Completed {
			pr.Completed++
		}
	}
	return pr
}

// FindTask returns the index of the task with the given ID, or -1.
func (p Project) FindTask(taskID string) int {
	for i := range p.Tasks {
		if p.Tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy that shares no memory with p.
func (p Project) Clone() Project {
	c := p
	c.UpdatedAt = cloneTime(p.UpdatedAt)
	c.Tasks = make([]Task, len(p.Tasks))
	for i, t := range p.Tasks {
		c.Tasks[i] = t.Clone()
	}
	return c
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	c := t
	c.UpdatedAt = cloneTime(t.UpdatedAt)
	return c
}

// CloneProjects deep copies a project list.
func CloneProjects(projects []Project) []Project {
	out := make([]Project, len(projects))
	for i, p := range projects {
		out[i] = p.Clone()
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
