package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/league-live/internal/platform/logging"
)

// Config stores runtime configuration for the league server.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	DBURL                      string
	DBDisablePreparedBinary    bool
	CacheEnabled               bool
	CacheTTL                   time.Duration
	CORSAllowedOrigins         []string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	ShutdownTimeout            time.Duration
	PprofEnabled               bool
	PprofAddr                  string
	SwaggerEnabled             bool
	BroadcasterPoolSize        int
	WSSendBuffer               int
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	LogLevel                   logging.Level
}

// LoadDotEnv reads an optional env file. Variables already present in the
// environment win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}

	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}

	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	broadcasterPoolSize, err := getEnvAsInt("BROADCASTER_POOL_SIZE", 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse BROADCASTER_POOL_SIZE: %w", err)
	}
	if broadcasterPoolSize < 1 {
		return Config{}, fmt.Errorf("BROADCASTER_POOL_SIZE must be >= 1")
	}
	wsSendBuffer, err := getEnvAsInt("WS_SEND_BUFFER", 32)
	if err != nil {
		return Config{}, fmt.Errorf("parse WS_SEND_BUFFER: %w", err)
	}
	if wsSendBuffer < 1 {
		return Config{}, fmt.Errorf("WS_SEND_BUFFER must be >= 1")
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "league-live-api"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:       getEnv("APP_HTTP_ADDR", ":8080"),
		// empty keeps everything in memory
		DBURL:                      strings.TrimSpace(os.Getenv("DB_URL")),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		SwaggerEnabled:             swaggerEnabled,
		BroadcasterPoolSize:        broadcasterPoolSize,
		WSSendBuffer:               wsSendBuffer,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		UptraceLogsEnabled:         uptraceLogsEnabled,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	cfg.DBDisablePreparedBinary = dbDisablePreparedBinary

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}
	cfg.CacheEnabled = cacheEnabled
	cfg.CacheTTL = cacheTTL

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := time.ParseDuration(getEnv("APP_SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_SHUTDOWN_TIMEOUT: %w", err)
	}
	if shutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be > 0")
	}

	cfg.ReadTimeout = readTimeout
	cfg.WriteTimeout = writeTimeout
	cfg.ShutdownTimeout = shutdownTimeout
	cfg.LogLevel = parseLogLevel(getEnv("APP_LOG_LEVEL", "info"))

	return cfg, nil
}

// ClientConfig configures the scorekeeper field client.
type ClientConfig struct {
	ServerURL             string
	QueueFile             string
	RequestTimeout        time.Duration
	PingInterval          time.Duration
	PingTimeout           time.Duration
	MaxRetries            int
	BaseDelay             time.Duration
	AttemptTimeout        time.Duration
	FlushConcurrency      int
	CircuitEnabled        bool
	CircuitFailureCount   int
	CircuitOpenTimeout    time.Duration
	CircuitHalfOpenMaxReq int
	LiveUpdatesEnabled    bool
	MatchIDs              []string
	LogLevel              logging.Level
}

func LoadClient() (ClientConfig, error) {
	serverURL := strings.TrimSpace(getEnv("SCOREKEEPER_SERVER_URL", "http://localhost:8080"))
	if serverURL == "" {
		return ClientConfig{}, fmt.Errorf("SCOREKEEPER_SERVER_URL cannot be empty")
	}

	requestTimeout, err := time.ParseDuration(getEnv("SCOREKEEPER_REQUEST_TIMEOUT", "10s"))
	if err != nil {
		return ClientConfig{}, fmt.Errorf("parse SCOREKEEPER_REQUEST_TIMEOUT: %w", err)
	}
	if requestTimeout <= 0 {
		return ClientConfig{}, fmt.Errorf("SCOREKEEPER_REQUEST_TIMEOUT must be > 0")
	}

	pingInterval, err := time.ParseDuration(getEnv("SCOREKEEPER_PING_INTERVAL", "5s"))
	if err != nil {
		return ClientConfig{}, fmt.Errorf("parse SCOREKEEPER_PING_INTERVAL: %w", err)
	}
	if pingInterval <= 0 {
		return ClientConfig{}, fmt.Errorf("SCOREKEEPER_PING_INTERVAL must be > 0")
	}

	pingTimeout, err := time.ParseDuration(getEnv("SCOREKEEPER_PING_TIMEOUT", "3s"))
	if err != nil {
		return ClientConfig{}, fmt.Errorf("parse SCOREKEEPER_PING_TIMEOUT: %w", err)
	}
	if pingTimeout <= 0 {
		return ClientConfig{}, fmt.Errorf("SCOREKEEPER_PING_TIMEOUT must be > 0")
	}

	maxRetries, err := getEnvAsInt("SCOREKEEPER_MAX_RETRIES", 3)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("parse SCOREKEEPER_MAX_RETRIES: %w", err)
	}
	if maxRetries < 1 {
		return ClientConfig{}, fmt.Errorf("SCOREKEEPER_MAX_RETRIES must be >= 1")
	}

	baseDelay, err := time.ParseDuration(getEnv("SCOREKEEPER_BASE_DELAY", "1s"))
	if err != nil {
		return ClientConfig{}, fmt.Errorf("parse SCOREKEEPER_BASE_DELAY: %w", err)
	}
	if baseDelay <= 0 {
		return ClientConfig{}, fmt.Errorf("SCOREKEEPER_BASE_DELAY must be > 0")
	}

	attemptTimeout, err := time.ParseDuration(getEnv("SCOREKEEPER_ATTEMPT_TIMEOUT", "10s"))
	if err != nil {
		return ClientConfig{}, fmt.Errorf("parse SCOREKEEPER_ATTEMPT_TIMEOUT: %w", err)
	}
	if attemptTimeout <= 0 {
		return ClientConfig{}, fmt.Errorf("SCOREKEEPER_ATTEMPT_TIMEOUT must be > 0")
	}

	flushConcurrency, err := getEnvAsInt("SCOREKEEPER_FLUSH_CONCURRENCY", 4)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("parse SCOREKEEPER_FLUSH_CONCURRENCY: %w", err)
	}
	if flushConcurrency < 1 {
		return ClientConfig{}, fmt.Errorf("SCOREKEEPER_FLUSH_CONCURRENCY must be >= 1")
	}

	circuitEnabled, err := strconv.ParseBool(getEnv("SCOREKEEPER_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return ClientConfig{}, fmt.Errorf("parse SCOREKEEPER_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("SCOREKEEPER_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("parse SCOREKEEPER_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if circuitFailureCount < 1 {
		return ClientConfig{}, fmt.Errorf("SCOREKEEPER_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	circuitOpenTimeout, err := time.ParseDuration(getEnv("SCOREKEEPER_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return ClientConfig{}, fmt.Errorf("parse SCOREKEEPER_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if circuitOpenTimeout <= 0 {
		return ClientConfig{}, fmt.Errorf("SCOREKEEPER_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("SCOREKEEPER_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("parse SCOREKEEPER_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if circuitHalfOpenMaxReq < 1 {
		return ClientConfig{}, fmt.Errorf("SCOREKEEPER_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	liveUpdatesEnabled, err := strconv.ParseBool(getEnv("SCOREKEEPER_LIVE_UPDATES", "true"))
	if err != nil {
		return ClientConfig{}, fmt.Errorf("parse SCOREKEEPER_LIVE_UPDATES: %w", err)
	}

	return ClientConfig{
		ServerURL:             serverURL,
		QueueFile:             strings.TrimSpace(getEnv("SCOREKEEPER_QUEUE_FILE", "scorekeeper-queue.json")),
		RequestTimeout:        requestTimeout,
		PingInterval:          pingInterval,
		PingTimeout:           pingTimeout,
		MaxRetries:            maxRetries,
		BaseDelay:             baseDelay,
		AttemptTimeout:        attemptTimeout,
		FlushConcurrency:      flushConcurrency,
		CircuitEnabled:        circuitEnabled,
		CircuitFailureCount:   circuitFailureCount,
		CircuitOpenTimeout:    circuitOpenTimeout,
		CircuitHalfOpenMaxReq: circuitHalfOpenMaxReq,
		LiveUpdatesEnabled:    liveUpdatesEnabled,
		MatchIDs:              splitCSV(getEnv("SCOREKEEPER_MATCH_IDS", "")),
		LogLevel:              parseLogLevel(getEnv("SCOREKEEPER_LOG_LEVEL", "info")),
	}, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
