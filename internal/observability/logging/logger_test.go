package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLoggerAddsRequestIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, "nimbus-api", "info")

	ctx := WithRequestID(context.Background(), "req-42")
	logger.InfoContext(ctx, "chat_retrieval", "mode", "recent")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if record["request_id"] != "req-42" || record["service"] != "nimbus-api" || record["msg"] != "chat_retrieval" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, "svc", "warn")
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %s", buf.String())
	}
	if parseLevel("DEBUG") != slog.LevelDebug {
		t.Fatalf("expected case-insensitive level parsing")
	}
}
