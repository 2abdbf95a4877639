package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/altitude.report/internal/altitude"
	"github.com/google/uuid"
)

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded grouping analysis.
type Run struct {
	ID            string
	Source        string
	MinAltitude   float64
	BufferSize    float64
	CaptureDir    string
	FeatureCount  int
	Processed     int
	Cancelled     bool
	TotalSegments int
	TotalDistance float64
	StartedAt     time.Time
	FinishedAt    time.Time

	// GroupCount is filled by ListRuns; Groups by GetRun.
	GroupCount int
	Groups     []GroupRecord
}

// GroupRecord is one emitted group of a run.
type GroupRecord struct {
	Index        int
	SegmentCount int
	MinElevation float64
	TotalLength  float64
	ArtifactPath string
	MemberIDs    []int64
	StartX       float64
	StartY       float64
	EndX         float64
	EndY         float64
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// NewRun builds a Run record from an analysis result. Totals come from
// altitude.Summarize so they match the printed summary exactly.
func NewRun(id, source string, minAltitude, bufferSize float64, captureDir string, res altitude.Result, started, finished time.Time) *Run {
	summary := altitude.Summarize(res.Groups)
	run := &Run{
		ID:            id,
		Source:        source,
		MinAltitude:   minAltitude,
		BufferSize:    bufferSize,
		CaptureDir:    captureDir,
		FeatureCount:  res.Total,
		Processed:     res.Processed,
		Cancelled:     res.Cancelled,
		TotalSegments: summary.TotalSegments,
		TotalDistance: summary.TotalDistance,
		StartedAt:     started,
		FinishedAt:    finished,
		GroupCount:    len(res.Groups),
	}
	for _, g := range res.Groups {
		run.Groups = append(run.Groups, GroupRecord{
			Index:        g.Index,
			SegmentCount: g.SegmentCount,
			MinElevation: g.MinElevation,
			TotalLength:  g.TotalLength,
			ArtifactPath: g.ArtifactPath,
			MemberIDs:    g.MemberIDs,
			StartX:       g.Start[0],
			StartY:       g.Start[1],
			EndX:         g.End[0],
			EndY:         g.End[1],
		})
	}
	return run
}

// RecordRun stores a run and its groups in one transaction. An empty ID is
// replaced by NewRunID.
func (db *DB) RecordRun(run *Run) error {
	if run.ID == "" {
		run.ID = NewRunID()
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (
			run_id, source, min_altitude, buffer_size, capture_dir,
			feature_count, processed_count, cancelled, total_segments,
			total_distance, started_unix_ns, finished_unix_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.MinAltitude, run.BufferSize, run.CaptureDir,
		run.FeatureCount, run.Processed, run.Cancelled, run.TotalSegments,
		run.TotalDistance, run.StartedAt.UnixNano(), run.FinishedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	for _, g := range run.Groups {
		members, err := json.Marshal(g.MemberIDs)
		if err != nil {
			return fmt.Errorf("failed to encode members of group %d: %w", g.Index, err)
		}
		_, err = tx.Exec(`
			INSERT INTO run_groups (
				run_id, group_index, segment_count, min_elevation, total_length,
				artifact_path, member_ids, start_x, start_y, end_x, end_y
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, g.Index, g.SegmentCount, g.MinElevation, g.TotalLength,
			g.ArtifactPath, string(members), g.StartX, g.StartY, g.EndX, g.EndY,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group %d of run %s: %w", g.Index, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	return nil
}

const runColumns = `
	r.run_id, r.source, r.min_altitude, r.buffer_size, r.capture_dir,
	r.feature_count, r.processed_count, r.cancelled, r.total_segments,
	r.total_distance, r.started_unix_ns, r.finished_unix_ns,
	(SELECT COUNT(*) FROM run_groups g WHERE g.run_id = r.run_id)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (Run, error) {
	var (
		run               Run
		started, finished int64
	)
	err := s.Scan(
		&run.ID, &run.Source, &run.MinAltitude, &run.BufferSize, &run.CaptureDir,
		&run.FeatureCount, &run.Processed, &run.Cancelled, &run.TotalSegments,
		&run.TotalDistance, &started, &finished, &run.GroupCount,
	)
	if err != nil {
		return Run{}, err
	}
	run.StartedAt = time.Unix(0, started).UTC()
	run.FinishedAt = time.Unix(0, finished).UTC()
	return run, nil
}

// ListRuns returns the most recent runs first, without their groups.
// A non-positive limit returns every run.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`SELECT `+runColumns+` FROM runs r
		ORDER BY r.started_unix_ns DESC, r.run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run with its groups ordered by index.
func (db *DB) GetRun(id string) (*Run, error) {
	run, err := scanRun(db.QueryRow(`SELECT `+runColumns+` FROM runs r WHERE r.run_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	rows, err := db.Query(`
		SELECT group_index, segment_count, min_elevation, total_length,
			artifact_path, member_ids, start_x, start_y, end_x, end_y
		FROM run_groups WHERE run_id = ? ORDER BY group_index`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups of run %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			g       GroupRecord
			members string
		)
		if err := rows.Scan(&g.Index, &g.SegmentCount, &g.MinElevation, &g.TotalLength,
			&g.ArtifactPath, &members, &g.StartX, &g.StartY, &g.EndX, &g.EndY); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		if err := json.Unmarshal([]byte(members), &g.MemberIDs); err != nil {
			return nil, fmt.Errorf("failed to decode members of group %d: %w", g.Index, err)
		}
		run.Groups = append(run.Groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &run, nil
}

// DeleteRun removes a run and, through the foreign key, its groups.
func (db *DB) DeleteRun(id string) error {
	res, err := db.Exec(`DELETE FROM runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
