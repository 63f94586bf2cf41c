package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestInitWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, "json"); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}
	defer func() { _ = Init() }()

	Get().Info(context.Background(), "flush finished", Int("pending", 3), Duration("took", 2*time.Second))

	out := buf.String()
	if !strings.Contains(out, `"msg":"flush finished"`) {
		t.Errorf("expected json message, got %q", out)
	}
	if !strings.Contains(out, `"pending":3`) {
		t.Errorf("expected pending field, got %q", out)
	}
	if !strings.Contains(out, `"took":"2s"`) {
		t.Errorf("expected duration field, got %q", out)
	}
}

func TestInitWithWriterRejectsUnknownFormat(t *testing.T) {
	if err := InitWithWriter(&bytes.Buffer{}, "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if err := InitWithWriter(nil, "text"); err == nil {
		t.Fatal("expected error for nil writer")
	}
}

func TestNamedLoggerPrefixesName(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf).Named("store").Named("sync")

	l.Warn(context.Background(), "flush failed", Error(errors.New("boom")))

	out := buf.String()
	if !strings.Contains(out, "logger=store.sync") {
		t.Errorf("expected dotted logger name, got %q", out)
	}
	if !strings.Contains(out, "error=boom") {
		t.Errorf("expected error field, got %q", out)
	}
	if !strings.Contains(out, "logger_test.go") {
		t.Errorf("expected caller source pointing at the test file, got %q", out)
	}
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	for _, lvl := range []string{"debug", "INFO", "warn", "warning", "error", ""} {
		if err := SetLevelString(lvl); err != nil {
			t.Errorf("level %q: unexpected error %v", lvl, err)
		}
	}
	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
	_ = SetLevelString("info")
}

func TestNopAndOrNop(t *testing.T) {
	ctx := context.Background()
	Nop().Error(ctx, "dropped")
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	l := New(&bytes.Buffer{})
	if OrNop(l) != l {
		t.Error("OrNop should return the given logger")
	}
}
