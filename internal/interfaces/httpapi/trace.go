package httpapi

import (
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("league-live/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

// path values copied onto handler spans
var spanPathValues = []struct {
	name string
	key  attribute.Key
}{
	{name: "matchID", key: "league.match_id"},
	{name: "tournamentID", key: "league.tournament_id"},
	{name: "teamID", key: "league.team_id"},
	{name: "playerID", key: "league.player_id"},
	{name: "matchday", key: "league.matchday"},
}

func startSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		// filtered routes (health, realtime) have no parent span
		return ctx, noopSpan
	}
	if !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name, opts...)
}

// startHandlerSpan starts a handler span tagged with the route's ids.
func startHandlerSpan(r *http.Request, name string) (context.Context, trace.Span) {
	attrs := pathAttributes(r)
	if len(attrs) == 0 {
		return startSpan(r.Context(), name)
	}
	return startSpan(r.Context(), name, trace.WithAttributes(attrs...))
}

func pathAttributes(r *http.Request) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for _, pv := range spanPathValues {
		if v := r.PathValue(pv.name); v != "" {
			attrs = append(attrs, pv.key.String(v))
		}
	}
	return attrs
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.")
}
