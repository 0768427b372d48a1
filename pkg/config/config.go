package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the bridge application configuration shared by the
// API server and the migration worker processes.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Juno       JunoConfig       `mapstructure:"juno"`
	Starknet   StarknetConfig   `mapstructure:"starknet"`
	Bridge     BridgeConfig     `mapstructure:"bridge"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Shutdown   ShutdownConfig   `mapstructure:"shutdown"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	FrontendOrigin  string        `mapstructure:"frontend_origin"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// JunoConfig contains origin-chain (Juno LCD) client settings
type JunoConfig struct {
	LCDURL         string        `mapstructure:"lcd_url"`
	AdminAddress   string        `mapstructure:"admin_address"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	TxPageLimit    int           `mapstructure:"tx_page_limit"`
	MaxRetries     uint64        `mapstructure:"max_retries"`
}

// StarknetConfig contains destination-chain (Starknet gateway) client settings
type StarknetConfig struct {
	GatewayURL         string        `mapstructure:"gateway_url"`
	AdminAddress       string        `mapstructure:"admin_address"`
	ChainID            string        `mapstructure:"chain_id"`
	FeeMultiplier      float64       `mapstructure:"fee_multiplier"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	StatusPollInterval time.Duration `mapstructure:"status_poll_interval"`
	StatusPollRetries  int           `mapstructure:"status_poll_retries"`
}

// BridgeConfig contains migration queue processing settings
type BridgeConfig struct {
	BatchSize    int           `mapstructure:"batch_size"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	ReclaimAfter time.Duration `mapstructure:"reclaim_after"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// ShutdownConfig contains graceful shutdown settings
type ShutdownConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// GetConnectionString builds a Postgres connection string from the config
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "bridge")

	// Juno defaults
	viper.SetDefault("juno.request_timeout", "120s")
	viper.SetDefault("juno.tx_page_limit", 60)
	viper.SetDefault("juno.max_retries", 5)

	// Starknet defaults
	viper.SetDefault("starknet.fee_multiplier", 10.0)
	viper.SetDefault("starknet.request_timeout", "30s")
	viper.SetDefault("starknet.status_poll_interval", "5s")
	viper.SetDefault("starknet.status_poll_retries", 30)

	// Bridge defaults
	viper.SetDefault("bridge.batch_size", 10)
	viper.SetDefault("bridge.poll_interval", "60s")
	viper.SetDefault("bridge.reclaim_after", "15m")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")

	// Shutdown defaults
	viper.SetDefault("shutdown.timeout", "30s")
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Juno.LCDURL == "" {
		return fmt.Errorf("juno.lcd_url is required")
	}
	if config.Juno.AdminAddress == "" {
		return fmt.Errorf("juno.admin_address is required")
	}
	if config.Starknet.GatewayURL == "" {
		return fmt.Errorf("starknet.gateway_url is required")
	}
	if config.Starknet.AdminAddress == "" {
		return fmt.Errorf("starknet.admin_address is required")
	}
	if config.Bridge.BatchSize <= 0 {
		return fmt.Errorf("bridge.batch_size must be positive")
	}
	return nil
}
