package db

import (
	"fmt"
	"time"

	"github.com/banshee-data/altitude.report/internal/altitude"
	"gonum.org/v1/gonum/floats"
)

// ClearanceRun summarizes one relative-altitude computation.
type ClearanceRun struct {
	ID              string
	Source          string
	DrapedSource    string
	FeatureCount    int
	ComputedCount   int
	MeanRelativeAlt float64
	MinRelativeAlt  float64
	CreatedAt       time.Time
}

// NewClearanceRun aggregates clearances computed from featureCount inputs.
// With no clearances the mean and minimum are zero.
func NewClearanceRun(source, draped string, featureCount int, clearances []altitude.Clearance, created time.Time) *ClearanceRun {
	run := &ClearanceRun{
		ID:            NewRunID(),
		Source:        source,
		DrapedSource:  draped,
		FeatureCount:  featureCount,
		ComputedCount: len(clearances),
		CreatedAt:     created,
	}
	if len(clearances) == 0 {
		return run
	}
	rel := make([]float64, len(clearances))
	for i, c := range clearances {
		rel[i] = c.RelativeAltitude
	}
	run.MeanRelativeAlt = floats.Sum(rel) / float64(len(rel))
	run.MinRelativeAlt = floats.Min(rel)
	return run
}

// RecordClearanceRun stores a clearance summary.
func (db *DB) RecordClearanceRun(run *ClearanceRun) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}
	_, err := db.Exec(`
		INSERT INTO clearance_runs (
			run_id, source, draped_source, feature_count, computed_count,
			mean_relative_alt, min_relative_alt, created_unix_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.DrapedSource, run.FeatureCount, run.ComputedCount,
		run.MeanRelativeAlt, run.MinRelativeAlt, run.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert clearance run %s: %w", run.ID, err)
	}
	return nil
}

// ListClearanceRuns returns clearance summaries, newest first.
func (db *DB) ListClearanceRuns(limit int) ([]ClearanceRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`
		SELECT run_id, source, draped_source, feature_count, computed_count,
			mean_relative_alt, min_relative_alt, created_unix_ns
		FROM clearance_runs ORDER BY created_unix_ns DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list clearance runs: %w", err)
	}
	defer rows.Close()

	var runs []ClearanceRun
	for rows.Next() {
		var (
			r       ClearanceRun
			created int64
		)
		if err := rows.Scan(&r.ID, &r.Source, &r.DrapedSource, &r.FeatureCount, &r.ComputedCount,
			&r.MeanRelativeAlt, &r.MinRelativeAlt, &created); err != nil {
			return nil, fmt.Errorf("failed to scan clearance run: %w", err)
		}
		r.CreatedAt = time.Unix(0, created).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
