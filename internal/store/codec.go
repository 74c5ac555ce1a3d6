package store

import (
	"encoding/json"
	"fmt"

	"github.com/tgienger/doit/internal/models"
)

// Encode serializes the whole collection into the persisted blob.
func Encode(projects []models.Project) (string, error) {
	if projects == nil {
		projects = []models.Project{}
	}
	b, err := json.Marshal(projects)
	if err != nil {
		return "", fmt.Errorf("encode projects: %w", err)
	}
	return string(b), nil
}

// Decode parses a persisted blob. Missing task lists come back empty and
// every project's status is re-derived from its tasks.
func Decode(blob string) ([]models.Project, error) {
	var projects []models.Project
	if err := json.Unmarshal([]byte(blob), &projects); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	for i := range projects {
		if projects[i].Tasks == nil {
			projects[i].Tasks = []models.Task{}
		}
		projects[i].RecomputeStatus()
	}
	return projects, nil
}
