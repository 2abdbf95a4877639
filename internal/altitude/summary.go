package altitude

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/altitude.report/internal/units"
)

// Summary aggregates emitted groups. Totals are exact sums of the per-group
// values, accumulated in stream order.
type Summary struct {
	TotalSegments int
	TotalDistance float64
	Groups        []EmittedGroup
}

// Summarize totals groups.
func Summarize(groups []EmittedGroup) Summary {
	s := Summary{Groups: groups}
	for _, g := range groups {
		s.TotalSegments += g.SegmentCount
		s.TotalDistance += g.TotalLength
	}
	return s
}

// FormatSummary renders the human-readable result of a run. Groups are
// numbered 1..n in emission order; their capture index shows in the capture
// filename. Lengths and altitudes are shown in unit (meters when unit is
// unknown).
func FormatSummary(s Summary, minAltitude float64, folder, unit string) string {
	minLabel := units.FormatLength(minAltitude, unit, 0)
	if len(s.Groups) == 0 {
		return fmt.Sprintf("No segment below the minimum altitude of %s.\n", minLabel)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d segments in %d group(s) below the minimum altitude of %s. Total distance: %s\n",
		s.TotalSegments, len(s.Groups), minLabel, units.FormatLength(s.TotalDistance, unit, 0))
	for i, g := range s.Groups {
		fmt.Fprintf(&b, "  group %d: %d segment(s), lowest %s, distance %s",
			i+1, g.SegmentCount,
			units.FormatLength(g.MinElevation, unit, 0),
			units.FormatLength(g.TotalLength, unit, 0))
		if g.ArtifactPath != "" {
			fmt.Fprintf(&b, ", capture %s", filepath.Base(g.ArtifactPath))
		}
		b.WriteByte('\n')
	}
	if folder != "" {
		fmt.Fprintf(&b, "Captures saved in: %s\n", folder)
	}
	return b.String()
}
