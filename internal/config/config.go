package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-settlement/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                          string
	ServiceName                     string
	ServiceVersion                  string
	HTTPAddr                        string
	ReadTimeout                     time.Duration
	WriteTimeout                    time.Duration
	LogLevel                        logging.Level
	DBURL                           string
	DBDisablePreparedBinary         bool
	CacheEnabled                    bool
	CacheTTL                        time.Duration
	RedisURL                        string
	RedisTTL                        time.Duration
	BotRuleCacheTTL                 time.Duration
	BotOverrideGroup                string
	ResolverMinuteTolerance         int
	ResolverNamePrefixLength        int
	SettlementInterval              time.Duration
	SettlementBatchSize             int
	SettlementMaxWorkers            int
	SettlementMaxPendingAge         time.Duration
	FeedTimeout                     time.Duration
	FixtureStaleAfter               time.Duration
	FinishedFixtureRetention        time.Duration
	SportMonksEnabled               bool
	SportMonksBaseURL               string
	SportMonksToken                 string
	SportMonksTimeout               time.Duration
	SportMonksMaxRetries            int
	SportMonksRatePerSecond         float64
	SportMonksCircuitEnabled        bool
	SportMonksCircuitFailureCount   int
	SportMonksCircuitOpenTimeout    time.Duration
	SportMonksCircuitHalfOpenMaxReq int
	PushFeedEnabled                 bool
	PushFeedURL                     string
	PushFeedToken                   string
	InternalJobToken                string
	PprofEnabled                    bool
	PprofAddr                       string
	UptraceEnabled                  bool
	UptraceDSN                      string
	PyroscopeEnabled                bool
	PyroscopeServerAddress          string
	PyroscopeAppName                string
	PyroscopeAuthToken              string
	PyroscopeBasicAuthUser          string
	PyroscopeBasicAuthPassword      string
	PyroscopeUploadRate             time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := getEnvAsPositiveDuration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := getEnvAsPositiveDuration("APP_WRITE_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
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

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := getEnvAsPositiveDuration("CACHE_TTL", "60s")
	if err != nil {
		return Config{}, err
	}
	redisTTL, err := getEnvAsPositiveDuration("REDIS_TTL", "24h")
	if err != nil {
		return Config{}, err
	}
	botRuleCacheTTL, err := getEnvAsPositiveDuration("BOT_RULE_CACHE_TTL", "5m")
	if err != nil {
		return Config{}, err
	}

	minuteTolerance, err := getEnvAsInt("RESOLVER_MINUTE_TOLERANCE", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse RESOLVER_MINUTE_TOLERANCE: %w", err)
	}
	if minuteTolerance <= 0 {
		return Config{}, fmt.Errorf("RESOLVER_MINUTE_TOLERANCE must be > 0")
	}
	namePrefixLength, err := getEnvAsInt("RESOLVER_NAME_PREFIX_LENGTH", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse RESOLVER_NAME_PREFIX_LENGTH: %w", err)
	}
	if namePrefixLength <= 0 {
		return Config{}, fmt.Errorf("RESOLVER_NAME_PREFIX_LENGTH must be > 0")
	}

	settlementInterval, err := getEnvAsPositiveDuration("SETTLEMENT_INTERVAL", "30s")
	if err != nil {
		return Config{}, err
	}
	settlementBatchSize, err := getEnvAsInt("SETTLEMENT_BATCH_SIZE", 500)
	if err != nil {
		return Config{}, fmt.Errorf("parse SETTLEMENT_BATCH_SIZE: %w", err)
	}
	if settlementBatchSize <= 0 {
		return Config{}, fmt.Errorf("SETTLEMENT_BATCH_SIZE must be > 0")
	}
	settlementMaxWorkers, err := getEnvAsInt("SETTLEMENT_MAX_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse SETTLEMENT_MAX_WORKERS: %w", err)
	}
	if settlementMaxWorkers <= 0 {
		return Config{}, fmt.Errorf("SETTLEMENT_MAX_WORKERS must be > 0")
	}
	settlementMaxPendingAge, err := getEnvAsPositiveDuration("SETTLEMENT_MAX_PENDING_AGE", "12h")
	if err != nil {
		return Config{}, err
	}
	feedTimeout, err := getEnvAsPositiveDuration("FEED_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	fixtureStaleAfter, err := getEnvAsPositiveDuration("FIXTURE_STALE_AFTER", "3h")
	if err != nil {
		return Config{}, err
	}
	finishedFixtureRetention, err := getEnvAsPositiveDuration("FINISHED_FIXTURE_RETENTION", "30m")
	if err != nil {
		return Config{}, err
	}

	sportMonksEnabled, err := strconv.ParseBool(getEnv("SPORTMONKS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_ENABLED: %w", err)
	}
	sportMonksTimeout, err := getEnvAsPositiveDuration("SPORTMONKS_TIMEOUT", "20s")
	if err != nil {
		return Config{}, err
	}
	sportMonksMaxRetries, err := getEnvAsInt("SPORTMONKS_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_MAX_RETRIES: %w", err)
	}
	if sportMonksMaxRetries < 0 {
		return Config{}, fmt.Errorf("SPORTMONKS_MAX_RETRIES must be >= 0")
	}
	sportMonksRate, err := strconv.ParseFloat(getEnv("SPORTMONKS_RATE_PER_SECOND", "2"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_RATE_PER_SECOND: %w", err)
	}
	if sportMonksRate <= 0 {
		return Config{}, fmt.Errorf("SPORTMONKS_RATE_PER_SECOND must be > 0")
	}
	sportMonksCircuitEnabled, err := strconv.ParseBool(getEnv("SPORTMONKS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_ENABLED: %w", err)
	}
	sportMonksCircuitFailureCount, err := getEnvAsInt("SPORTMONKS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if sportMonksCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("SPORTMONKS_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	sportMonksCircuitOpenTimeout, err := getEnvAsPositiveDuration("SPORTMONKS_CIRCUIT_OPEN_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}
	sportMonksCircuitHalfOpenMaxReq, err := getEnvAsInt("SPORTMONKS_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTMONKS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if sportMonksCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("SPORTMONKS_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	sportMonksToken := strings.TrimSpace(getEnv("SPORTMONKS_TOKEN", ""))
	if sportMonksEnabled && sportMonksToken == "" {
		return Config{}, fmt.Errorf("SPORTMONKS_TOKEN is required when SPORTMONKS_ENABLED=true")
	}

	pushFeedEnabled, err := strconv.ParseBool(getEnv("PUSHFEED_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PUSHFEED_ENABLED: %w", err)
	}
	pushFeedURL := strings.TrimSpace(getEnv("PUSHFEED_URL", ""))
	if pushFeedEnabled && pushFeedURL == "" {
		return Config{}, fmt.Errorf("PUSHFEED_URL is required when PUSHFEED_ENABLED=true")
	}

	cfg := Config{
		AppEnv:                          appEnv,
		ServiceName:                     getEnv("APP_SERVICE_NAME", "prediction-settlement-api"),
		ServiceVersion:                  getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                        getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                     readTimeout,
		WriteTimeout:                    writeTimeout,
		LogLevel:                        logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		DBURL:                           strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:         dbDisablePreparedBinary,
		CacheEnabled:                    cacheEnabled,
		CacheTTL:                        cacheTTL,
		RedisURL:                        strings.TrimSpace(getEnv("REDIS_URL", "")),
		RedisTTL:                        redisTTL,
		BotRuleCacheTTL:                 botRuleCacheTTL,
		BotOverrideGroup:                strings.TrimSpace(getEnv("BOT_OVERRIDE_GROUP", "first-half-goal")),
		ResolverMinuteTolerance:         minuteTolerance,
		ResolverNamePrefixLength:        namePrefixLength,
		SettlementInterval:              settlementInterval,
		SettlementBatchSize:             settlementBatchSize,
		SettlementMaxWorkers:            settlementMaxWorkers,
		SettlementMaxPendingAge:         settlementMaxPendingAge,
		FeedTimeout:                     feedTimeout,
		FixtureStaleAfter:               fixtureStaleAfter,
		FinishedFixtureRetention:        finishedFixtureRetention,
		SportMonksEnabled:               sportMonksEnabled,
		SportMonksBaseURL:               strings.TrimSpace(getEnv("SPORTMONKS_BASE_URL", "https://api.sportmonks.com/v3/football")),
		SportMonksToken:                 sportMonksToken,
		SportMonksTimeout:               sportMonksTimeout,
		SportMonksMaxRetries:            sportMonksMaxRetries,
		SportMonksRatePerSecond:         sportMonksRate,
		SportMonksCircuitEnabled:        sportMonksCircuitEnabled,
		SportMonksCircuitFailureCount:   sportMonksCircuitFailureCount,
		SportMonksCircuitOpenTimeout:    sportMonksCircuitOpenTimeout,
		SportMonksCircuitHalfOpenMaxReq: sportMonksCircuitHalfOpenMaxReq,
		PushFeedEnabled:                 pushFeedEnabled,
		PushFeedURL:                     pushFeedURL,
		PushFeedToken:                   strings.TrimSpace(getEnv("PUSHFEED_TOKEN", "")),
		InternalJobToken:                strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		PprofEnabled:                    pprofEnabled,
		PprofAddr:                       pprofAddr,
		UptraceEnabled:                  uptraceEnabled,
		UptraceDSN:                      uptraceDSN,
		PyroscopeEnabled:                pyroscopeEnabled,
		PyroscopeServerAddress:          pyroscopeServerAddress,
		PyroscopeAuthToken:              strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:          strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:      strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:             pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	return cfg, nil
}

// UsePostgres reports whether storage is backed by Postgres rather than the
// in-memory repositories.
func (c Config) UsePostgres() bool {
	return c.DBURL != ""
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsPositiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(strings.TrimSpace(getEnv(key, fallback)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
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
