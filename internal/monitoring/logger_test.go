package monitoring

import (
	"fmt"
	"testing"

	"go.uber.org/zap"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	// nil installs a no-op
	called = false
	SetLogger(nil)
	Logf("test message")
	if called {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestSetWarnLogger(t *testing.T) {
	original := Warnf
	defer func() { Warnf = original }()

	var got string
	SetWarnLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Warnf("capture of group %d failed", 3)
	if got != "capture of group 3 failed" {
		t.Errorf("Warnf message = %q", got)
	}

	SetWarnLogger(nil)
	Warnf("muted")
	if got != "capture of group 3 failed" {
		t.Error("muted warn logger should not forward messages")
	}
}

func TestInitRoutesThroughZap(t *testing.T) {
	origLog, origWarn, origDebug := Logf, Warnf, Debugf
	defer func() {
		Logf, Warnf, Debugf = origLog, origWarn, origDebug
		sugar = nil
	}()

	if err := Init(true); err != nil {
		t.Fatalf("Init(true) failed: %v", err)
	}
	if Sugared() == nil {
		t.Fatal("expected a sugared logger after Init")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("logger panicked: %v", r)
		}
	}()
	Logf("info %s", "value")
	Debugf("debug %d", 1)
	Sync()
}

func TestSugaredWithoutInit(t *testing.T) {
	saved := sugar
	sugar = nil
	defer func() { sugar = saved }()

	if Sugared() == nil {
		t.Error("Sugared should fall back to a no-op logger")
	}
}

func TestInitProductionSkipsDebug(t *testing.T) {
	origLog, origWarn, origDebug := Logf, Warnf, Debugf
	defer func() {
		Logf, Warnf, Debugf = origLog, origWarn, origDebug
		sugar = nil
	}()

	if err := Init(false); err != nil {
		t.Fatalf("Init(false) failed: %v", err)
	}
	core := Sugared().Desugar().Core()
	if !core.Enabled(zap.InfoLevel) {
		t.Error("production logger should log at info")
	}
	if core.Enabled(zap.DebugLevel) {
		t.Error("production logger should not log at debug")
	}
	Logf("info %s", "value")
	Warnf("warn %d", 2)
}
