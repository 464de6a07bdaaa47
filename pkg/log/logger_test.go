package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/YuminosukeSato/descent/pkg/errors"
)

func TestTestLoggerLevels(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", ErrorCodeKey, ErrorConvergence)
	testLogger.Error("error message", fmt.Errorf("test error"), EpochKey, 3)

	if buffer.Len() == 0 {
		t.Fatal("Expected log output, got empty string")
	}
	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("%q not found in output", msg)
		}
	}
	if !testLogger.ContainsField("number", 42.0) {
		t.Error("Expected field number=42 not found")
	}
	if !testLogger.ContainsField(ErrAttrKey, "test error") {
		t.Error("leading error should be recorded under the error key")
	}
	if !testLogger.ContainsField(EpochKey, 3.0) {
		t.Error("fields after a leading error should be kept")
	}
}

func TestTestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(ModelNameKey, "GDRegressor", ComponentKey, "descent")
	contextLogger.Info("contextual message", EpochKey, 1)

	if !testLogger.ContainsField(ModelNameKey, "GDRegressor") {
		t.Error("Model name context not found")
	}
	if !testLogger.ContainsField(ComponentKey, "descent") {
		t.Error("Component context not found")
	}
}

func TestTestLoggerEnabled(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelWarn)
	ctx := context.Background()

	tests := []struct {
		level Level
		want  bool
	}{
		{LevelDebug, false},
		{LevelInfo, false},
		{LevelWarn, true},
		{LevelError, true},
	}
	for _, tt := range tests {
		if got := testLogger.Enabled(ctx, tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}

	testLogger.Info("hidden")
	if buffer.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buffer.String())
	}
}

func TestProviderWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewProvider(&buf, LevelInfo)

	logger := p.GetLoggerWithName("observer.progress").With(ModelNameKey, "LinearRegression")
	logger.Debug("filtered")
	logger.Info("epoch finished", EpochKey, 5, TrainCostKey, 0.25)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	want := map[string]interface{}{
		"level":      "info",
		"message":    "epoch finished",
		"component":  "observer.progress",
		ModelNameKey: "LinearRegression",
		EpochKey:     5.0,
		TrainCostKey: 0.25,
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("entry[%q] = %v, want %v", k, entry[k], v)
		}
	}
}

func TestProviderSetLevelAffectsExistingLoggers(t *testing.T) {
	var buf bytes.Buffer
	p := NewProvider(&buf, LevelError)
	logger := p.GetLogger()

	logger.Info("before")
	p.SetLevel(LevelDebug)
	logger.Info("after")

	if strings.Contains(buf.String(), "before") {
		t.Error("message below the initial level should be dropped")
	}
	if !strings.Contains(buf.String(), "after") {
		t.Error("lowering the level should apply to loggers created earlier")
	}
	if !logger.Enabled(context.Background(), LevelDebug) {
		t.Error("Enabled should follow the provider level")
	}
}

func TestProviderErrorField(t *testing.T) {
	var buf bytes.Buffer
	p := NewProvider(&buf, LevelDebug)

	err := errors.NewObserverError("EarlyStop", "EpochEnd", errors.New("boom"))
	p.GetLogger().Error("training failed", err, EpochKey, 7)

	var entry map[string]interface{}
	if jerr := json.Unmarshal(buf.Bytes(), &entry); jerr != nil {
		t.Fatalf("invalid JSON: %v", jerr)
	}
	if !strings.Contains(fmt.Sprint(entry[ErrAttrKey]), "observer EarlyStop failed") {
		t.Errorf("error field = %v", entry[ErrAttrKey])
	}
	if entry[EpochKey] != 7.0 {
		t.Errorf("epoch field = %v", entry[EpochKey])
	}
}

func TestSetupRoutesWarnings(t *testing.T) {
	prev := GetProvider()
	defer SetProvider(prev)
	defer errors.SetZerologWarnFunc(nil)

	var buf bytes.Buffer
	if err := Setup("warn", "json", &buf); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	errors.Warn(errors.NewConvergenceWarning("GradientDescent", 10, "gradient still large"))

	out := buf.String()
	if !strings.Contains(out, "failed to converge after 10 epochs") {
		t.Errorf("warning not logged: %q", out)
	}
	if !strings.Contains(out, "ConvergenceWarning") {
		t.Errorf("warning type not logged: %q", out)
	}
}

func TestSetupRejectsBadInput(t *testing.T) {
	if err := Setup("verbose", "json", &bytes.Buffer{}); !errors.IsConfigurationError(err) {
		t.Errorf("bad level should be a configuration error, got %v", err)
	}
	if err := Setup("info", "xml", &bytes.Buffer{}); !errors.IsConfigurationError(err) {
		t.Errorf("bad format should be a configuration error, got %v", err)
	}
}

func TestConcurrentLogging(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				testLogger.Info("batch", BatchKey, j, "worker", id)
			}
		}(i)
	}
	wg.Wait()

	entries, err := testLogger.GetLogEntries()
	if err != nil {
		t.Fatalf("GetLogEntries: %v", err)
	}
	if len(entries) != 80 {
		t.Errorf("expected 80 entries, got %d", len(entries))
	}
}
