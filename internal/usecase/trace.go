package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("league-live/internal/usecase")
var usecaseNoopSpan = trace.SpanFromContext(context.Background())

// startUsecaseSpan only opens a child span; calls without a traced parent
// (background timers, tests) stay untraced.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" {
		return ctx, usecaseNoopSpan
	}
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, usecaseNoopSpan
	}
	if len(attrs) == 0 {
		return usecaseTracer.Start(ctx, name)
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func matchAttr(matchID string) attribute.KeyValue {
	return attribute.String("league.match_id", matchID)
}

func tournamentAttr(tournamentID string) attribute.KeyValue {
	return attribute.String("league.tournament_id", tournamentID)
}

func playerAttr(playerID string) attribute.KeyValue {
	return attribute.String("league.player_id", playerID)
}
