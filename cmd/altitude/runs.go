package main

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/altitude.report/internal/config"
	"github.com/banshee-data/altitude.report/internal/db"
	"github.com/banshee-data/altitude.report/internal/units"
)

func runRuns(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	configPath := fs.String("config", "", "analysis config JSON")
	dbPath := fs.String("db", config.DefaultDBPath, "SQLite database path")
	limit := fs.Int("limit", 20, "number of runs to list (0 for all)")
	id := fs.String("id", "", "show the groups of one run")
	del := fs.Bool("delete", false, "delete the run given by -id")
	clearance := fs.Bool("clearance", false, "list clearance runs instead")
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if setFlags(fs)["db"] {
		cfg.SetDBPath(*dbPath)
	}
	if err := initLogging(cfg, false); err != nil {
		return err
	}
	database, err := db.NewDB(cfg.GetDBPath())
	if err != nil {
		return fmt.Errorf("failed to open run database: %w", err)
	}
	defer database.Close()

	unit := cfg.GetDisplayUnits()
	switch {
	case *id != "" && *del:
		if err := database.DeleteRun(*id); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Deleted run %s\n", *id)
		return nil
	case *id != "":
		return showRun(stdout, database, *id, unit)
	case *clearance:
		return listClearanceRuns(stdout, database, *limit, unit)
	default:
		return listRuns(stdout, database, *limit, unit)
	}
}

func listRuns(stdout io.Writer, database *db.DB, limit int, unit string) error {
	runs, err := database.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tSOURCE\tMIN ALT\tGROUPS\tSEGMENTS\tDISTANCE\tSTATUS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Source,
			units.FormatLength(r.MinAltitude, unit, 0), r.GroupCount, r.TotalSegments,
			units.FormatLength(r.TotalDistance, unit, 0), runStatus(r))
	}
	return tw.Flush()
}

func runStatus(r db.Run) string {
	if r.Cancelled {
		return fmt.Sprintf("cancelled %d/%d", r.Processed, r.FeatureCount)
	}
	return "complete"
}

func showRun(stdout io.Writer, database *db.DB, id, unit string) error {
	r, err := database.GetRun(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Run %s\n  source: %s\n  minimum altitude: %s\n  buffer: %g\n  captures: %s\n  took: %s (%s)\n",
		r.ID, r.Source, units.FormatLength(r.MinAltitude, unit, 0), r.BufferSize, r.CaptureDir,
		r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond), runStatus(*r))

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tSEGMENTS\tLOWEST\tDISTANCE\tMEMBERS\tCAPTURE")
	for _, g := range r.Groups {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%v\t%s\n",
			g.Index, g.SegmentCount,
			units.FormatLength(g.MinElevation, unit, 0),
			units.FormatLength(g.TotalLength, unit, 0),
			g.MemberIDs, g.ArtifactPath)
	}
	return tw.Flush()
}

func listClearanceRuns(stdout io.Writer, database *db.DB, limit int, unit string) error {
	runs, err := database.ListClearanceRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "No clearance runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tSOURCE\tFEATURES\tMEAN\tLOWEST")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Source,
			r.ComputedCount, r.FeatureCount,
			units.FormatLength(r.MeanRelativeAlt, unit, 1),
			units.FormatLength(r.MinRelativeAlt, unit, 1))
	}
	return tw.Flush()
}
