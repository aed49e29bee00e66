package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestHandler(buf *bytes.Buffer, format logFormat) (*structuredHandler, *asyncWriter) {
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	return newStructuredHandler(handlerConfig{
		level:    slog.LevelDebug,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	}), aw
}

func drain(t *testing.T, aw *asyncWriter, buf *bytes.Buffer) string {
	t.Helper()
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatKV)
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	log := slog.New(handler).With("component", "dialog")
	LogEvent(ctx, log, slog.LevelInfo, "city.lookup",
		slog.Bool("found", true),
		slog.String("city", "москва"),
		slog.String("category", "weather"),
		slog.String("status", "ok"),
	)

	line := drain(t, aw, buf)
	if line == "" {
		t.Fatal("expected log line")
	}
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=dialog", "event=city.lookup", "status=ok", "rid=rid-123"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
	category := strings.Index(line, "category=weather")
	city := strings.Index(line, "city=москва")
	found := strings.Index(line, "found=true")
	if category == -1 || city == -1 || found == -1 || !(category < city && city < found) {
		t.Fatalf("domain keys out of order: %s", line)
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatJSON)
	ctx := WithRID(context.Background(), "rid-json")

	log := slog.New(handler).With("component", "catalog")
	LogEvent(ctx, log, slog.LevelWarn, "catalog.load",
		slog.String("status", "fail"),
		slog.String("source", "file"),
		slog.Bool("degraded", true),
		slog.String("err", "open data/cities_data.json: no such file"),
	)

	line := drain(t, aw, buf)
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	prefixes := []string{`{"ts":`, `"level":"WARN"`, `"component":"catalog"`, `"event":"catalog.load"`, `"status":"fail"`, `"rid":"rid-json"`, `"source":"file"`, `"degraded":true`, `"err":`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatKV)
	rawRID := "123:456:789"
	ctx := WithRID(context.Background(), rawRID)
	log := slog.New(handler).With("component", "tg")
	LogEvent(ctx, log, slog.LevelInfo, "rid.test", slog.String("status", "ok"))

	line := drain(t, aw, buf)
	if !strings.Contains(line, "rid="+CompactRID(rawRID)) {
		t.Fatalf("expected compact rid, got %s", line)
	}
	if strings.Contains(line, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", line)
	}
}

func TestStructuredHandlerCompactRIDJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatJSON)
	rawRID := "12:34:56"
	ctx := WithRID(context.Background(), rawRID)
	log := slog.New(handler).With("component", "tg")
	LogEvent(ctx, log, slog.LevelInfo, "rid.test", slog.String("status", "ok"))

	line := drain(t, aw, buf)
	if !strings.Contains(line, `"rid":"`+CompactRID(rawRID)+`"`) {
		t.Fatalf("expected compact rid in JSON, got %s", line)
	}
	if !strings.Contains(line, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", line)
	}
	if !strings.Contains(line, `"ts_unix_nano"`) {
		t.Fatalf("expected ts_unix_nano to be present in JSON output, got %s", line)
	}
}

func TestStructuredHandlerDurationKeys(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatKV)
	log := slog.New(handler).With("component", "tg.state")
	LogEvent(context.Background(), log, slog.LevelInfo, "sessions.expire",
		slog.Duration("duration", 1500*time.Microsecond),
		slog.Duration("idle_ttl", 30*time.Minute),
		slog.Int("expired", 2),
	)

	line := drain(t, aw, buf)
	for _, want := range []string{"duration_ms=2", "idle_ttl_ms=1800000", "expired=2"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %s", want, line)
		}
	}
}

func TestDurationKey(t *testing.T) {
	cases := map[string]string{
		"duration":         "duration_ms",
		"startup_duration": "startup_duration_ms",
		"backoff":          "backoff_ms",
		"backoff_ms":       "backoff_ms",
	}
	for in, want := range cases {
		if got := durationKey(in); got != want {
			t.Fatalf("durationKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStructuredHandlerGroupsAndMeta(t *testing.T) {
	buf := &bytes.Buffer{}
	handler, aw := newTestHandler(buf, formatKV)
	ctx := WithHandler(WithUpdateMeta(context.Background(), 5, 7, 9), "weather")
	log := slog.New(handler).WithGroup("sender")
	log.InfoContext(ctx, "send.retry", slog.Int("attempts", 2))

	line := drain(t, aw, buf)
	for _, want := range []string{"event=send.retry", "update_id=5", "user_id=7", "chat_id=9", "handler=weather", "sender.attempts=2"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %s", want, line)
		}
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("bad\x00 request\u200b: chat", 11); got != "bad request" {
		t.Fatalf("unexpected sanitized value %q", got)
	}
	if got := SanitizeLimit("anything", 0); got != "" {
		t.Fatalf("zero limit must yield empty string, got %q", got)
	}
}

func TestCompactRID(t *testing.T) {
	if got := CompactRID(BuildRID(36, 35, 1)); got != "10.z.1" {
		t.Fatalf("unexpected compact rid %q", got)
	}
	if got := CompactRID("not-a-rid"); got != "not-a-rid" {
		t.Fatalf("foreign rid changed: %q", got)
	}
}
