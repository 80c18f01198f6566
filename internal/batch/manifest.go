package batch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Job is one person/garment pair to render. Relative paths in a job file
// are resolved against the file's directory.
type Job struct {
	Person    string `json:"person"`
	Garment   string `json:"garment"`
	Output    string `json:"output,omitempty"`
	Landmarks string `json:"landmarks,omitempty"` // MediaPipe landmark JSON
}

// LoadJobs reads a job file: either a JSON array of jobs or an object with
// a "jobs" array.
func LoadJobs(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("batch: read %s: %w", path, err)
	}

	var jobs []Job
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Jobs []Job `json:"jobs"`
		}
		err = json.Unmarshal(data, &wrapped)
		jobs = wrapped.Jobs
	} else {
		err = json.Unmarshal(data, &jobs)
	}
	if err != nil {
		return nil, fmt.Errorf("batch: parse %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range jobs {
		j := &jobs[i]
		if j.Person == "" || j.Garment == "" {
			return nil, fmt.Errorf("batch: %s: job %d needs person and garment", path, i)
		}
		j.Person = resolve(base, j.Person)
		j.Garment = resolve(base, j.Garment)
		j.Output = resolve(base, j.Output)
		j.Landmarks = resolve(base, j.Landmarks)
	}
	return jobs, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// WriteResults appends results to the JSON history at path, creating it
// when it does not exist yet.
func WriteResults(path string, results []Result) error {
	var history []Result
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &history); err != nil {
			return fmt.Errorf("batch: parse %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("batch: read %s: %w", path, err)
	}
	history = append(history, results...)

	data, err = json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
