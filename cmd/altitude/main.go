// Command altitude finds line sections flying below a minimum altitude,
// resamples lines into altitude-colored segments and computes height above
// terrain from draped copies of the lines.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/altitude.report/internal/db"
	"github.com/banshee-data/altitude.report/internal/monitoring"
	"github.com/banshee-data/altitude.report/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout)
	monitoring.Sync()
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("altitude: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) < 1 {
		printUsage(stdout)
		return errors.New("missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "analyze":
		return runAnalyze(ctx, rest, stdout)
	case "segments":
		return runSegments(rest, stdout)
	case "clearance":
		return runClearance(rest, stdout)
	case "runs":
		return runRuns(rest, stdout)
	case "migrate":
		return runMigrate(rest, stdout)
	case "version":
		fmt.Fprintln(stdout, version.String())
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stdout)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// runMigrate accepts the -db flag before or after the action.
func runMigrate(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dbPath := fs.String("db", "", "SQLite database path (default from config)")
	configPath := fs.String("config", "", "analysis config JSON")

	var action []string
	for len(args) > 0 {
		if err := fs.Parse(args); err != nil {
			return err
		}
		args = fs.Args()
		if len(args) > 0 {
			action = append(action, args[0])
			args = args[1:]
		}
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *dbPath != "" {
		cfg.SetDBPath(*dbPath)
	}
	if err := initLogging(cfg, false); err != nil {
		return err
	}
	return db.RunMigrateCommand(action, cfg.GetDBPath(), stdout)
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: altitude <command> [flags]

Commands:
  analyze     group features below the minimum altitude and capture each group
  segments    resample lines into altitude-colored segments
  clearance   compute height above terrain from a draped copy of the lines
  runs        list recorded analysis runs, or show one with -id
  migrate     manage the run database schema (up, down, version, to, force)
  version     print build information

Run 'altitude <command> -h' for the flags of a command.
`)
}
