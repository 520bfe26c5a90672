package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dbsmedya/movenrich/internal/config"
)

// observed returns a debug-level Logger whose entries are captured.
func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return fromCore(core), logs
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		wantErr bool
	}{
		{name: "json to stderr", cfg: config.LoggingConfig{Level: "info", Format: "json", Output: "stderr"}},
		{name: "text to stdout", cfg: config.LoggingConfig{Level: "debug", Format: "text", Output: "stdout"}},
		{name: "empty output", cfg: config.LoggingConfig{}},
		{name: "file output", cfg: config.LoggingConfig{Output: filepath.Join(dir, "run.log")}},
		{name: "unwritable file", cfg: config.LoggingConfig{Output: filepath.Join(dir, "missing", "run.log")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(&tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}
			if log == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestNewNop(t *testing.T) {
	nop := NewNop()
	nop.WithStage("noop").Infow("discarded", "n", 1)
	if err := nop.Sync(); err != nil {
		t.Errorf("Sync() on nop logger failed: %v", err)
	}
}

func TestContextFields(t *testing.T) {
	log, logs := observed()

	log.WithRun("3f1c2a9e").WithStage("dedup").Info("stage done")
	log.WithRecord(17, "P-0042").Debugw("unparsable dataFinal", "value", "31/02/2020")
	log.WithRecord(9, "").Warn("odd row")
	log.WithFields(map[string]interface{}{"table": "enriched_movements"}).Info("stored")

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	tests := []struct {
		entry int
		want  map[string]interface{}
	}{
		{0, map[string]interface{}{KeyRun: "3f1c2a9e", KeyStage: "dedup"}},
		{1, map[string]interface{}{KeyLine: int64(17), KeyProcess: "P-0042", "value": "31/02/2020"}},
		{2, map[string]interface{}{KeyLine: int64(9), KeyProcess: ""}},
		{3, map[string]interface{}{"table": "enriched_movements"}},
	}
	for _, tt := range tests {
		got := entries[tt.entry].ContextMap()
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("entry %d: field %q = %v (%T), expected %v", tt.entry, k, got[k], got[k], v)
			}
		}
	}

	if entries[1].Level != zapcore.DebugLevel {
		t.Errorf("expected debug level, got %v", entries[1].Level)
	}
}

func TestChildrenAreIndependent(t *testing.T) {
	log, logs := observed()

	child := log.WithStage("classify")
	if child == log {
		t.Fatal("WithStage() should return a new logger instance")
	}

	log.Info("parent")
	child.Info("child")

	if _, ok := logs.All()[0].ContextMap()[KeyStage]; ok {
		t.Error("parent logger should not carry the child's stage field")
	}
	if logs.FilterField(zapcore.Field{Key: KeyStage, Type: zapcore.StringType, String: "classify"}).Len() != 1 {
		t.Error("expected exactly one entry tagged with the child's stage")
	}
}

func TestJSONFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")

	log, err := New(&config.LoggingConfig{Level: "warn", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	log.Info("below threshold")
	log.WithRun("r1").Warnw("duplicate movement id", "movement_id", 970)
	_ = log.Sync()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line at warn level, got %d: %s", len(lines), content)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "duplicate movement id" {
		t.Errorf("unexpected msg: %v", entry["msg"])
	}
	if entry[KeyRun] != "r1" {
		t.Errorf("expected run field r1, got %v", entry[KeyRun])
	}
	if entry["movement_id"] != float64(970) {
		t.Errorf("expected movement_id 970, got %v", entry["movement_id"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected time key in JSON entry")
	}
}
