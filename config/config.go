package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Env      string
	LogLevel string
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Termii   TermiiConfig
	OTP      OTPConfig
	Spin     SpinConfig
	Storage  StorageConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port                string
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	IdleTimeout         time.Duration
	RequestTimeout      time.Duration
	ShutdownTimeout     time.Duration
	MaxBodyBytes        int64
	CORSAllowedOrigins  []string
	TrustedProxies      []string
	HSTS                bool
	SlowRequestMs       int
	SuspiciousThreshold int
}

// DatabaseConfig holds MySQL connection settings
type DatabaseConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Pass            string
	Name            string
	Params          string
	TLS             string
	TLSVerify       bool
	TLSCAPath       string
	TLSClientCert   string
	TLSClientKey    string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectRetries  int
	PingOnConnect   bool
}

// JWTConfig holds token settings for participants and admins
type JWTConfig struct {
	Secret      string
	Issuer      string
	Audience    string
	UserExpiry  time.Duration
	AdminExpiry time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TermiiConfig holds the SMS gateway settings
type TermiiConfig struct {
	APIKey   string
	SenderID string
	BaseURL  string
	Channel  string
	Timeout  time.Duration
}

type OTPConfig struct {
	Length        int
	ExpiryMinutes int
	MaxAttempts   int
	BypassEnabled bool
	BypassCode    string
}

type SpinConfig struct {
	RedemptionPrefix       string
	RedemptionValidityDays int
}

// StorageConfig holds Cloudflare R2 (S3 compatible) settings for prize images
type StorageConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicBaseURL   string
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return strings.ToLower(c.Env) == "development"
}

// StorageEnabled reports whether object storage credentials are present
func (c StorageConfig) StorageEnabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.Bucket != ""
}

// Load reads configuration from the environment (and an optional config file)
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{
		Env:      v.GetString("env"),
		LogLevel: v.GetString("log_level"),
		Server: ServerConfig{
			Port:                v.GetString("server.port"),
			ReadTimeout:         v.GetDuration("server.read_timeout"),
			WriteTimeout:        v.GetDuration("server.write_timeout"),
			IdleTimeout:         v.GetDuration("server.idle_timeout"),
			RequestTimeout:      v.GetDuration("server.request_timeout"),
			ShutdownTimeout:     v.GetDuration("server.shutdown_timeout"),
			MaxBodyBytes:        v.GetInt64("server.max_body_bytes"),
			CORSAllowedOrigins:  splitList(v.GetString("server.cors_allowed_origins")),
			TrustedProxies:      splitList(v.GetString("server.trusted_proxies")),
			HSTS:                v.GetBool("server.hsts"),
			SlowRequestMs:       v.GetInt("server.slow_request_ms"),
			SuspiciousThreshold: v.GetInt("server.suspicious_threshold"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("database.dsn"),
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Pass:            v.GetString("database.pass"),
			Name:            v.GetString("database.name"),
			Params:          v.GetString("database.params"),
			TLS:             v.GetString("database.tls"),
			TLSVerify:       v.GetBool("database.tls_verify"),
			TLSCAPath:       v.GetString("database.tls_ca_path"),
			TLSClientCert:   v.GetString("database.tls_client_cert"),
			TLSClientKey:    v.GetString("database.tls_client_key"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: time.Duration(v.GetInt("database.conn_max_lifetime")) * time.Second,
			ConnectRetries:  v.GetInt("database.connect_retries"),
			PingOnConnect:   v.GetBool("database.ping_on_connect"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("jwt.secret"),
			Issuer:      v.GetString("jwt.issuer"),
			Audience:    v.GetString("jwt.audience"),
			UserExpiry:  v.GetDuration("jwt.user_expiry"),
			AdminExpiry: v.GetDuration("jwt.admin_expiry"),
		},
		Redis: RedisConfig{
			Addr:     strings.ReplaceAll(v.GetString("redis.addr"), " ", ""),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Termii: TermiiConfig{
			APIKey:   v.GetString("termii.api_key"),
			SenderID: v.GetString("termii.sender_id"),
			BaseURL:  v.GetString("termii.base_url"),
			Channel:  v.GetString("termii.channel"),
			Timeout:  v.GetDuration("termii.timeout"),
		},
		OTP: OTPConfig{
			Length:        v.GetInt("otp.length"),
			ExpiryMinutes: v.GetInt("otp.expiry_minutes"),
			MaxAttempts:   v.GetInt("otp.max_attempts"),
			BypassEnabled: v.GetBool("otp.bypass_enabled"),
			BypassCode:    v.GetString("otp.bypass_code"),
		},
		Spin: SpinConfig{
			RedemptionPrefix:       v.GetString("spin.redemption_prefix"),
			RedemptionValidityDays: v.GetInt("spin.redemption_validity_days"),
		},
		Storage: StorageConfig{
			AccountID:       v.GetString("storage.account_id"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			Bucket:          v.GetString("storage.bucket"),
			PublicBaseURL:   v.GetString("storage.public_base_url"),
		},
	}
	return cfg, nil
}

// bind sets a default and maps the key to the flat env var name used in deployments
func bind(v *viper.Viper, key, env string, def interface{}) {
	v.SetDefault(key, def)
	_ = v.BindEnv(key, env)
}

func setDefaults(v *viper.Viper) {
	bind(v, "env", "ENV", "development")
	bind(v, "log_level", "LOG_LEVEL", "info")

	bind(v, "server.port", "PORT", "5000")
	bind(v, "server.read_timeout", "SERVER_READ_TIMEOUT", "15s")
	bind(v, "server.write_timeout", "SERVER_WRITE_TIMEOUT", "15s")
	bind(v, "server.idle_timeout", "SERVER_IDLE_TIMEOUT", "60s")
	bind(v, "server.request_timeout", "REQ_TIMEOUT", "10s")
	bind(v, "server.shutdown_timeout", "SHUTDOWN_TIMEOUT", "30s")
	bind(v, "server.max_body_bytes", "MAX_BODY_BYTES", 1<<20)
	bind(v, "server.cors_allowed_origins", "CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	bind(v, "server.trusted_proxies", "TRUSTED_PROXIES", "")
	bind(v, "server.hsts", "SEC_HSTS", false)
	bind(v, "server.slow_request_ms", "METRIC_SLOW_MS", 800)
	bind(v, "server.suspicious_threshold", "SUSPICIOUS_THRESHOLD", 10)

	bind(v, "database.dsn", "DB_DSN", "")
	bind(v, "database.host", "DB_HOST", "127.0.0.1")
	bind(v, "database.port", "DB_PORT", "3306")
	bind(v, "database.user", "DB_USER", "root")
	bind(v, "database.pass", "DB_PASS", "")
	bind(v, "database.name", "DB_NAME", "poweroil_spin")
	bind(v, "database.params", "DB_PARAMS", "charset=utf8mb4&parseTime=True&loc=Local")
	bind(v, "database.tls", "DB_TLS", "false")
	bind(v, "database.tls_verify", "DB_TLS_VERIFY", false)
	bind(v, "database.tls_ca_path", "DB_TLS_CA_PATH", "")
	bind(v, "database.tls_client_cert", "DB_TLS_CLIENT_CERT", "")
	bind(v, "database.tls_client_key", "DB_TLS_CLIENT_KEY", "")
	bind(v, "database.max_open_conns", "DB_MAX_OPEN_CONNS", 25)
	bind(v, "database.max_idle_conns", "DB_MAX_IDLE_CONNS", 25)
	bind(v, "database.conn_max_lifetime", "DB_CONN_MAX_LIFETIME", 3600)
	bind(v, "database.connect_retries", "DB_CONNECT_RETRIES", 5)
	bind(v, "database.ping_on_connect", "DB_PING_ON_CONNECT", true)

	bind(v, "jwt.secret", "JWT_SECRET", "")
	bind(v, "jwt.issuer", "JWT_ISS", "")
	bind(v, "jwt.audience", "JWT_AUD", "")
	bind(v, "jwt.user_expiry", "JWT_EXPIRES_IN", "24h")
	bind(v, "jwt.admin_expiry", "JWT_ADMIN_EXPIRES_IN", "6h")

	bind(v, "redis.addr", "REDIS_ADDR", "")
	bind(v, "redis.password", "REDIS_PASS", "")
	bind(v, "redis.db", "REDIS_DB", 0)

	bind(v, "termii.api_key", "TERMII_API_KEY", "")
	bind(v, "termii.sender_id", "TERMII_SENDER_ID", "PowerOil")
	bind(v, "termii.base_url", "TERMII_API_URL", "https://v3.api.termii.com/api/sms/send")
	bind(v, "termii.channel", "TERMII_CHANNEL", "dnd")
	bind(v, "termii.timeout", "TERMII_TIMEOUT", "10s")

	bind(v, "otp.length", "OTP_LENGTH", 6)
	bind(v, "otp.expiry_minutes", "OTP_EXPIRY_MINUTES", 10)
	bind(v, "otp.max_attempts", "OTP_MAX_ATTEMPTS", 3)
	bind(v, "otp.bypass_enabled", "OTP_BYPASS_ENABLED", false)
	bind(v, "otp.bypass_code", "OTP_BYPASS_CODE", "123456")

	bind(v, "spin.redemption_prefix", "REDEMPTION_CODE_PREFIX", "PO-")
	bind(v, "spin.redemption_validity_days", "REDEMPTION_VALIDITY_DAYS", 30)

	bind(v, "storage.account_id", "R2_ACCOUNT_ID", "")
	bind(v, "storage.access_key_id", "R2_ACCESS_KEY_ID", "")
	bind(v, "storage.secret_access_key", "R2_SECRET_ACCESS_KEY", "")
	bind(v, "storage.bucket", "R2_BUCKET_NAME", "")
	bind(v, "storage.public_base_url", "R2_PUBLIC_BASE_URL", "")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
