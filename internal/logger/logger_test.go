package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewWithWriterJSONOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithModule("webhook").WithField("event_type", "follow").Info("Event processed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log output, got %q: %v", buf.String(), err)
	}

	if entry["message"] != "Event processed" {
		t.Errorf("Expected message field, got %v", entry["message"])
	}
	if entry["module"] != "webhook" {
		t.Errorf("Expected module field, got %v", entry["module"])
	}
	if entry["event_type"] != "follow" {
		t.Errorf("Expected event_type field, got %v", entry["event_type"])
	}
	if entry["level"] != "info" {
		t.Errorf("Expected lowercase level, got %v", entry["level"])
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)

	log.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("Expected info to be filtered at warn level, got %q", buf.String())
	}

	log.Warn("should be kept")
	if !strings.Contains(buf.String(), `"level":"warning"`) {
		t.Errorf("Expected warning level entry, got %q", buf.String())
	}
}

func TestWithUserIDTruncates(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithUserID("U1234567890abcdef").Info("hello")
	if strings.Contains(buf.String(), "U1234567890abcdef") {
		t.Error("Expected full user id to be truncated in logs")
	}
	if !strings.Contains(buf.String(), "U1234567...") {
		t.Errorf("Expected truncated user id, got %q", buf.String())
	}
}

func TestWithError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithError(errors.New("boom")).Error("Request failed")
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("Expected error in output, got %q", buf.String())
	}
}
