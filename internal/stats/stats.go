// Package stats computes productivity figures over a project snapshot.
package stats

import "github.com/tgienger/doit/internal/models"

// Summary aggregates completion counts across all projects.
type Summary struct {
	TotalProjects     int
	CompletedProjects int
	TotalTasks        int
	CompletedTasks    int

	// Projects per priority; unset priorities are counted under PriorityNone.
	ByPriority map[models.Priority]int

	// Whole percentages, 0 when there is nothing to divide by.
	TaskCompletionRate    int
	ProjectCompletionRate int
}

// PendingTasks is the number of incomplete tasks.
func (s Summary) PendingTasks() int {
	return s.TotalTasks - s.CompletedTasks
}

// ActiveProjects is the number of projects still in progress.
func (s Summary) ActiveProjects() int {
	return s.TotalProjects - s.CompletedProjects
}

// Compute builds a Summary for projects.
func Compute(projects []models.Project) Summary {
	s := Summary{
		TotalProjects: len(projects),
		ByPriority:    make(map[models.Priority]int),
	}
	for _, p := range projects {
		if p.Status == models.StatusCompleted {
			s.CompletedProjects++
		}
		s.ByPriority[p.Priority]++

		pr := p.Progress()
		s.TotalTasks += pr.Total
		s.CompletedTasks += pr.Completed
	}
	s.TaskCompletionRate = percent(s.CompletedTasks, s.TotalTasks)
	s.ProjectCompletionRate = percent(s.CompletedProjects, s.TotalProjects)
	return s
}

// percent rounds half up.
func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}
