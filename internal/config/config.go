package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DashboardPort string
	LogLevel      string

	BackendURL                       string
	BackendTimeoutSeconds            int
	BackendContractValidation        bool
	BackendBreakerEnabled            bool
	BackendBreakerMinRequests        int
	BackendBreakerFailureRatio       float64
	BackendBreakerOpenTimeoutSeconds int
	BackendRetryMaxAttempts          int
	BackendRetryInitialBackoffMS     int
	BackendRetryMaxBackoffMS         int

	UploadTag               string
	UploadMaxBytes          int64
	UploadAllowedExtensions []string
	UploadSpoolPath         string

	DisplayTimezone       string
	DisplayDateLayout     string
	DisplayTopN           int
	RiskElevatedThreshold float64

	NoticeCapacity int

	NATSURL     string
	NATSSubject string

	APIRateLimitRPS   float64
	APIRateLimitBurst int

	HealthPollSeconds int
}

// knownKeys lists every setting accepted from the environment or CONFIG_FILE.
var knownKeys = []string{
	"DASHBOARD_PORT", "LOG_LEVEL",
	"BACKEND_URL", "BACKEND_TIMEOUT_SECONDS", "BACKEND_CONTRACT_VALIDATION",
	"BACKEND_BREAKER_ENABLED", "BACKEND_BREAKER_MIN_REQUESTS", "BACKEND_BREAKER_FAILURE_RATIO",
	"BACKEND_BREAKER_OPEN_TIMEOUT_SECONDS",
	"BACKEND_RETRY_MAX_ATTEMPTS", "BACKEND_RETRY_INITIAL_BACKOFF_MS", "BACKEND_RETRY_MAX_BACKOFF_MS",
	"UPLOAD_TAG", "UPLOAD_MAX_BYTES", "UPLOAD_ALLOWED_EXTENSIONS", "UPLOAD_SPOOL_PATH",
	"DISPLAY_TIMEZONE", "DISPLAY_DATE_LAYOUT", "DISPLAY_TOP_N", "RISK_ELEVATED_THRESHOLD",
	"NOTICE_CAPACITY",
	"NATS_URL", "NATS_SUBJECT",
	"API_RATE_LIMIT_RPS", "API_RATE_LIMIT_BURST",
	"HEALTH_POLL_SECONDS",
}

// Load reads settings from the environment. When CONFIG_FILE names a YAML file, its values
// sit between the environment and the built-in defaults.
func Load() (Config, error) {
	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}
	src := source{file: file}

	return Config{
		DashboardPort: src.str("DASHBOARD_PORT", "8088"),
		LogLevel:      src.str("LOG_LEVEL", "info"),

		BackendURL:                       strings.TrimRight(src.str("BACKEND_URL", "http://localhost:8000"), "/"),
		BackendTimeoutSeconds:            src.integer("BACKEND_TIMEOUT_SECONDS", 30),
		BackendContractValidation:        src.flag("BACKEND_CONTRACT_VALIDATION", false),
		BackendBreakerEnabled:            src.flag("BACKEND_BREAKER_ENABLED", true),
		BackendBreakerMinRequests:        src.integer("BACKEND_BREAKER_MIN_REQUESTS", 5),
		BackendBreakerFailureRatio:       src.number("BACKEND_BREAKER_FAILURE_RATIO", 0.6),
		BackendBreakerOpenTimeoutSeconds: src.integer("BACKEND_BREAKER_OPEN_TIMEOUT_SECONDS", 15),
		BackendRetryMaxAttempts:          src.integer("BACKEND_RETRY_MAX_ATTEMPTS", 1),
		BackendRetryInitialBackoffMS:     src.integer("BACKEND_RETRY_INITIAL_BACKOFF_MS", 100),
		BackendRetryMaxBackoffMS:         src.integer("BACKEND_RETRY_MAX_BACKOFF_MS", 400),

		UploadTag:               src.str("UPLOAD_TAG", "contract"),
		UploadMaxBytes:          int64(src.integer("UPLOAD_MAX_BYTES", 50<<20)),
		UploadAllowedExtensions: splitList(src.str("UPLOAD_ALLOWED_EXTENSIONS", ".pdf,.doc,.docx,.txt,.csv")),
		UploadSpoolPath:         src.str("UPLOAD_SPOOL_PATH", "./data/spool"),

		DisplayTimezone:       src.str("DISPLAY_TIMEZONE", "Local"),
		DisplayDateLayout:     src.str("DISPLAY_DATE_LAYOUT", "2006-01-02"),
		DisplayTopN:           src.integer("DISPLAY_TOP_N", 5),
		RiskElevatedThreshold: src.number("RISK_ELEVATED_THRESHOLD", 0.7),

		NoticeCapacity: src.integer("NOTICE_CAPACITY", 20),

		NATSURL:     src.str("NATS_URL", ""),
		NATSSubject: src.str("NATS_SUBJECT", "ledger.dashboard.notices"),

		APIRateLimitRPS:   src.number("API_RATE_LIMIT_RPS", 10),
		APIRateLimitBurst: src.integer("API_RATE_LIMIT_BURST", 20),

		HealthPollSeconds: src.integer("HEALTH_POLL_SECONDS", 30),
	}, nil
}

func loadFile(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	allowed := make(map[string]struct{}, len(knownKeys))
	for _, key := range knownKeys {
		allowed[key] = struct{}{}
	}
	out := make(map[string]string, len(doc))
	for key, value := range doc {
		norm := strings.ToUpper(strings.TrimSpace(key))
		if _, ok := allowed[norm]; !ok {
			return nil, fmt.Errorf("config file %s: unknown key %q", path, key)
		}
		switch v := value.(type) {
		case nil:
			continue
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, fmt.Sprint(item))
			}
			out[norm] = strings.Join(parts, ",")
		case map[string]any:
			return nil, fmt.Errorf("config file %s: key %q must be a scalar or list", path, key)
		default:
			out[norm] = fmt.Sprint(v)
		}
	}
	return out, nil
}

type source struct {
	file map[string]string
}

func (s source) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return s.file[key]
}

func (s source) str(key, fallback string) string {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	return v
}

func (s source) integer(key string, fallback int) int {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (s source) number(key string, fallback float64) float64 {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func (s source) flag(key string, fallback bool) bool {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, item := range strings.Split(raw, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		if !strings.HasPrefix(item, ".") {
			item = "." + item
		}
		out = append(out, item)
	}
	return out
}
