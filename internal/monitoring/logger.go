// Package monitoring provides the package-level diagnostic loggers used
// across the module. The loggers are plain function values so tests can
// redirect or mute them; Init backs them with a zap SugaredLogger.
package monitoring

import (
	"fmt"
	"log"

	"go.uber.org/zap"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger or Init. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Warnf reports recoverable failures, such as a capture that could not be
// written. Defaults to log.Printf with a prefix.
var Warnf func(format string, v ...interface{}) = func(format string, v ...interface{}) {
	log.Printf("WARN "+format, v...)
}

// Debugf is muted until Init(true) is called.
var Debugf func(format string, v ...interface{}) = func(string, ...interface{}) {}

var sugar *zap.SugaredLogger

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetWarnLogger replaces the warning logger. Passing nil mutes warnings.
func SetWarnLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Warnf = func(string, ...interface{}) {}
		return
	}
	Warnf = f
}

// Init builds a zap logger (development flavour when debug is set) and
// routes Logf, Warnf and Debugf through it.
func Init(debug bool) error {
	var zl *zap.Logger
	var err error
	if debug {
		zl, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zl, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}

	sugar = zl.Sugar()
	Logf = sugar.Infof
	Warnf = sugar.Warnf
	if debug {
		Debugf = sugar.Debugf
	} else {
		Debugf = func(string, ...interface{}) {}
	}
	return nil
}

// Sugared returns the zap logger installed by Init, or a no-op logger.
func Sugared() *zap.SugaredLogger {
	if sugar == nil {
		return zap.NewNop().Sugar()
	}
	return sugar
}

// Sync flushes any buffered log entries.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
