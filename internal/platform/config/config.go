package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix は環境変数による上書きで使用する接頭辞です。
const EnvPrefix = "WORKFORCE"

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Scheduling SchedulingConfig `yaml:"scheduling"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr" split_words:"true"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host" split_words:"true"`
	Port               int           `yaml:"port" split_words:"true"`
	User               string        `yaml:"user" split_words:"true"`
	Password           string        `yaml:"password" split_words:"true"`
	Name               string        `yaml:"name" split_words:"true"`
	SSLMode            string        `yaml:"ssl_mode" split_words:"true"`
	ApplicationName    string        `yaml:"application_name" split_words:"true"`
	IsolationLevel     string        `yaml:"isolation_level" split_words:"true"`
	TxRetries          int           `yaml:"tx_retries" split_words:"true"`
	MaxOpenConns       int           `yaml:"max_open_conns" split_words:"true"`
	MaxIdleConns       int           `yaml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime    time.Duration `yaml:"-" ignored:"true"`
	ConnMaxIdleTime    time.Duration `yaml:"-" ignored:"true"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time" envconfig:"CONN_MAX_IDLE_TIME"`
}

// LogConfig はログ出力に関する設定です。
type LogConfig struct {
	Level  string `yaml:"level" split_words:"true"`
	Format string `yaml:"format" split_words:"true"`
}

// MetricsConfig は Prometheus エンドポイントに関する設定です。
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled" split_words:"true"`
	ListenAddr string `yaml:"listen_addr" split_words:"true"`
}

// SchedulingConfig は日付判定とシフトの既定値に関する設定です。
type SchedulingConfig struct {
	TimeZone          string         `yaml:"time_zone" split_words:"true"`
	DefaultShiftHours int            `yaml:"default_shift_hours" split_words:"true"`
	Location          *time.Location `yaml:"-" ignored:"true"`
}

// DefaultShiftLength は終了時刻が省略されたシフトの長さを返します。
func (s SchedulingConfig) DefaultShiftLength() time.Duration {
	return time.Duration(s.DefaultShiftHours) * time.Hour
}

// Load は指定されたパスから設定ファイルを読み込み、環境変数で上書きします。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	// 未設定の環境変数はファイルの値を上書きしない
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: apply env overrides: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Log.validateAndNormalize(); err != nil {
		return err
	}
	if c.Metrics.Enabled && c.Metrics.ListenAddr == "" {
		return fmt.Errorf("config: metrics.listen_addr must be set when metrics are enabled")
	}
	if err := c.Scheduling.validateAndNormalize(); err != nil {
		return err
	}

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.ApplicationName == "" {
		d.ApplicationName = "workforce"
	}

	d.IsolationLevel = strings.ToLower(strings.TrimSpace(d.IsolationLevel))
	switch d.IsolationLevel {
	case "":
		d.IsolationLevel = "serializable"
	case "serializable", "repeatable read", "read committed":
	default:
		return fmt.Errorf("config: database.isolation_level %q is not supported", d.IsolationLevel)
	}
	if d.TxRetries < 0 {
		return fmt.Errorf("config: database.tx_retries must not be negative")
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (l *LogConfig) validateAndNormalize() error {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	if l.Level == "" {
		l.Level = "info"
	}

	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	switch l.Format {
	case "":
		l.Format = "json"
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format must be json or console, got %q", l.Format)
	}
	return nil
}

func (s *SchedulingConfig) validateAndNormalize() error {
	if s.TimeZone == "" {
		s.TimeZone = "UTC"
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return fmt.Errorf("config: scheduling.time_zone: %w", err)
	}
	s.Location = loc

	if s.DefaultShiftHours == 0 {
		s.DefaultShiftHours = 3
	}
	if s.DefaultShiftHours < 0 || s.DefaultShiftHours >= 24 {
		return fmt.Errorf("config: scheduling.default_shift_hours must be between 1 and 23")
	}
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報は URL エンコードされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
