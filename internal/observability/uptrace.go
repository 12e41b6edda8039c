package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/league-live/internal/config"
	"github.com/riskibarqy/league-live/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

// InitUptrace configures the global OpenTelemetry providers for Uptrace and,
// when logs are enabled, mirrors application logs to it. The returned func
// flushes and detaches everything.
func InitUptrace(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	disabled := func(reason string) (func(context.Context) error, error) {
		logging.SetMirror(nil)
		logger.Info("uptrace disabled", "reason", reason)
		return func(context.Context) error { return nil }, nil
	}
	if !cfg.UptraceEnabled {
		return disabled("UPTRACE_ENABLED=false")
	}
	if strings.TrimSpace(cfg.UptraceDSN) == "" {
		return disabled("UPTRACE_DSN empty")
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(attribute.String("league.store", storeKind(cfg))),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
	)
	if cfg.UptraceLogsEnabled {
		logging.SetMirror(newUptraceLogMirror(cfg.ServiceVersion))
	} else {
		logging.SetMirror(nil)
	}

	logger.Info("uptrace enabled",
		"service_name", cfg.ServiceName,
		"service_version", cfg.ServiceVersion,
		"environment", cfg.AppEnv,
		"logs_enabled", cfg.UptraceLogsEnabled,
	)

	return func(ctx context.Context) error {
		logging.SetMirror(nil)
		return uptrace.Shutdown(ctx)
	}, nil
}

func storeKind(cfg config.Config) string {
	if cfg.DBURL == "" {
		return "memory"
	}
	return "postgres"
}
