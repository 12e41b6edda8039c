package observability

import (
	"errors"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

func TestShouldSkipUptraceLog(t *testing.T) {
	if !shouldSkipUptraceLog("http request", []any{"path", "/healthz"}) {
		t.Fatalf("expected health check log to be skipped")
	}
	if !shouldSkipUptraceLog("http request", []any{"method", "GET", "path", "/v1/realtime"}) {
		t.Fatalf("expected realtime upgrade log to be skipped")
	}
	if shouldSkipUptraceLog("http request", []any{"path", "/v1/matches/live"}) {
		t.Fatalf("did not expect match log to be skipped")
	}
	if shouldSkipUptraceLog("match finished", []any{"path", "/healthz"}) {
		t.Fatalf("did not expect non access log event to be skipped")
	}
}

func TestBuildOTelLogAttributes(t *testing.T) {
	attrs := buildOTelLogAttributes([]any{"match_id", "m-1", "minute", 67, "player_id"})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "match_id" || attrs[0].Value.AsString() != "m-1" {
		t.Fatalf("unexpected match_id attribute")
	}
	if attrs[1].Key != "minute" || attrs[1].Value.AsInt64() != 67 {
		t.Fatalf("unexpected minute attribute")
	}
	if attrs[2].Key != "player_id" || attrs[2].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected player_id attribute")
	}
}

func TestToOTelLogValue(t *testing.T) {
	v := toOTelLogValue(map[string]any{
		"goals_home": 2,
		"finished":   true,
	}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	if items := v.AsMap(); len(items) != 2 {
		t.Fatalf("expected 2 map items, got %d", len(items))
	}

	if got := toOTelLogValue(errors.New("boom"), 0).AsString(); got != "boom" {
		t.Fatalf("unexpected error value: got=%q want=boom", got)
	}
	if got := toOTelLogValue(90*time.Second, 0).AsString(); got != "1m30s" {
		t.Fatalf("unexpected duration value: got=%q want=1m30s", got)
	}
	if got := toOTelLogValue([]string{"m-1", "m-2"}, 0); got.Kind() != otellog.KindSlice {
		t.Fatalf("expected slice value, got %s", got.Kind())
	}

	type state string
	if got := toOTelLogValue(state("LIVE"), 0).AsString(); got != "LIVE" {
		t.Fatalf("unexpected named string value: got=%q want=LIVE", got)
	}
	if got := toOTelLogValue(uint32(7), 0).AsInt64(); got != 7 {
		t.Fatalf("unexpected uint value: got=%d want=7", got)
	}
}

func TestToOTelSeverity(t *testing.T) {
	cases := map[zapcore.Level]otellog.Severity{
		zapcore.DebugLevel: otellog.SeverityDebug,
		zapcore.InfoLevel:  otellog.SeverityInfo,
		zapcore.WarnLevel:  otellog.SeverityWarn,
		zapcore.ErrorLevel: otellog.SeverityError,
	}
	for level, want := range cases {
		if got := toOTelSeverity(level); got != want {
			t.Fatalf("unexpected severity for %s: got=%v want=%v", level, got, want)
		}
	}
}
