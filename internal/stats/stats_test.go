package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tgienger/doit/internal/models"
)

func project(priority models.Priority, done ...bool) models.Project {
	p := models.Project{Priority: priority, Tasks: []models.Task{}}
	for _, d := range done {
		p.Tasks = append(p.Tasks, models.Task{Completed: d})
	}
	p.RecomputeStatus()
	return p
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil)
	assert.Zero(t, s.TotalProjects)
	assert.Zero(t, s.TaskCompletionRate)
	assert.Zero(t, s.ProjectCompletionRate)
	assert.Zero(t, s.PendingTasks())
}

func TestCompute(t *testing.T) {
	s := Compute([]models.Project{
		project(models.PriorityHigh, true, true),
		project(models.PriorityMedium, true, false, false),
		project(models.PriorityMedium),
		project(models.PriorityNone, false),
	})

	assert.Equal(t, 4, s.TotalProjects)
	assert.Equal(t, 1, s.CompletedProjects)
	assert.Equal(t, 3, s.ActiveProjects())
	assert.Equal(t, 6, s.TotalTasks)
	assert.Equal(t, 3, s.CompletedTasks)
	assert.Equal(t, 3, s.PendingTasks())
	assert.Equal(t, 50, s.TaskCompletionRate)
	assert.Equal(t, 25, s.ProjectCompletionRate)
	assert.Equal(t, 1, s.ByPriority[models.PriorityHigh])
	assert.Equal(t, 2, s.ByPriority[models.PriorityMedium])
	assert.Equal(t, 0, s.ByPriority[models.PriorityLow])
	assert.Equal(t, 1, s.ByPriority[models.PriorityNone])
}

func TestPercentRounding(t *testing.T) {
	tests := []struct {
		part, whole, want int
	}{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{1, 200, 1},
		{1, 201, 0},
		{5, 5, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, percent(tt.part, tt.whole), "%d/%d", tt.part, tt.whole)
	}
}
