package main

import (
	"flag"
	"path/filepath"
	"strings"

	"github.com/banshee-data/altitude.report/internal/config"
	"github.com/banshee-data/altitude.report/internal/monitoring"
)

// loadConfig reads path, or returns an empty config (all defaults) when path
// is empty.
func loadConfig(path string) (*config.AnalysisConfig, error) {
	if path == "" {
		return config.EmptyAnalysisConfig(), nil
	}
	return config.LoadAnalysisConfig(path)
}

// setFlags returns the names of the flags given on the command line, so
// that only those override the config file.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// initLogging routes the monitoring loggers through zap: the production
// logger by default, the development logger with debug output when either
// the flag or the config asks for it.
func initLogging(cfg *config.AnalysisConfig, debug bool) error {
	return monitoring.Init(debug || cfg.GetDebug())
}

// sourceName is the file name without directory or extension, used to name
// derived layers.
func sourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// progressLogger logs every tenth of the way through total items.
func progressLogger(label string) func(current, total int) {
	lastDecile := -1
	return func(current, total int) {
		if total <= 0 {
			return
		}
		decile := current * 10 / total
		if decile != lastDecile {
			lastDecile = decile
			monitoring.Logf("%s: %d/%d features (%d%%)", label, current, total, current*100/total)
		}
	}
}
