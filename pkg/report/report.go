// Package report renders analysis results and persists them to report sinks.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-adtree/pkg/semantics"
)

// Report is the persisted result of analysing one tree file
type Report struct {
	RunID       uuid.UUID         `json:"run_id"`
	ID          uuid.UUID         `json:"id"`
	File        string            `json:"file"`
	GeneratedAt time.Time         `json:"generated_at"`
	Summary     semantics.Summary `json:"summary"`
}

// New wraps a summary in a report belonging to run
func New(run uuid.UUID, file string, summary *semantics.Summary) *Report {
	return &Report{
		RunID:       run,
		ID:          uuid.New(),
		File:        file,
		GeneratedAt: time.Now().UTC().Truncate(time.Microsecond),
		Summary:     *summary,
	}
}

// Name is the report's base name: the tree file name without extension
func (r *Report) Name() string {
	base := filepath.Base(r.File)
	return base[:len(base)-len(filepath.Ext(base))]
}

// WriteJSON encodes the report as indented JSON
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// Marshal returns the compact JSON form stored by sinks
func Marshal(r *Report) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a report produced by Marshal or WriteJSON
func Unmarshal(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}
