package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type AssetConfig struct {
	Symbol          string            `yaml:"symbol"`
	Providers       []string          `yaml:"providers"`
	Indicators      []string          `yaml:"indicators"`
	ProviderSymbols map[string]string `yaml:"provider_symbols"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level         string `yaml:"level"`
		Format        string `yaml:"format"`
		Output        string `yaml:"output"`
		TrailCapacity int    `yaml:"trail_capacity"`
	} `yaml:"log"`
	Schedule struct {
		Interval    time.Duration `yaml:"interval"`
		AssetBudget time.Duration `yaml:"asset_budget"`
	} `yaml:"schedule"`
	Providers struct {
		Timeout       time.Duration `yaml:"timeout"`
		RetryAttempts int           `yaml:"retry_attempts"`
		RetryBackoff  time.Duration `yaml:"retry_backoff"`
		CoinGecko     struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"coingecko"`
		Binance struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"binance"`
		TwelveData struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"twelvedata"`
	} `yaml:"providers"`
	Assets     []AssetConfig `yaml:"assets"`
	Indicators struct {
		RSIPeriod        int     `yaml:"rsi_period"`
		MACDFast         int     `yaml:"macd_fast"`
		MACDSlow         int     `yaml:"macd_slow"`
		MACDSignal       int     `yaml:"macd_signal"`
		BollingerPeriod  int     `yaml:"bollinger_period"`
		BollingerStdDev  float64 `yaml:"bollinger_std_dev"`
		MAShortPeriod    int     `yaml:"ma_short_period"`
		MALongPeriod     int     `yaml:"ma_long_period"`
		VolumeWindow     int     `yaml:"volume_window"`
		VolumeSpikeRatio float64 `yaml:"volume_spike_ratio"`
	} `yaml:"indicators"`
	Consensus struct {
		Threshold float64            `yaml:"threshold"`
		Weights   map[string]float64 `yaml:"weights"`
	} `yaml:"consensus"`
	History struct {
		SignalCapacity int `yaml:"signal_capacity"`
		ErrorCapacity  int `yaml:"error_capacity"`
	} `yaml:"history"`
	Alerts struct {
		Telegram struct {
			Enabled  bool   `yaml:"enabled"`
			BotToken string `yaml:"bot_token"`
			ChatID   string `yaml:"chat_id"`
		} `yaml:"telegram"`
		Kafka struct {
			Enabled bool     `yaml:"enabled"`
			Brokers []string `yaml:"brokers"`
			Topic   string   `yaml:"topic"`
		} `yaml:"kafka"`
	} `yaml:"alerts"`
	Cache struct {
		TTL           time.Duration `yaml:"ttl"`
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
	} `yaml:"cache"`
	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides secrets and endpoints
// with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Alerts.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Alerts.Telegram.ChatID = v
	}
	if v := os.Getenv("TWELVEDATA_API_KEY"); v != "" {
		c.Providers.TwelveData.APIKey = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		c.Providers.CoinGecko.APIKey = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Alerts.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}

	return c, nil
}

// applyDefaults fills zero values with the documented defaults.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.Log.TrailCapacity == 0 {
		c.Log.TrailCapacity = 200
	}
	if c.Schedule.Interval == 0 {
		c.Schedule.Interval = 600 * time.Second
	}
	if c.Schedule.AssetBudget == 0 {
		c.Schedule.AssetBudget = 45 * time.Second
	}
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = 30 * time.Second
	}
	if c.Providers.RetryAttempts == 0 {
		c.Providers.RetryAttempts = 2
	}
	if c.Providers.RetryBackoff == 0 {
		c.Providers.RetryBackoff = 2 * time.Second
	}
	if c.Providers.CoinGecko.BaseURL == "" {
		c.Providers.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if c.Providers.Binance.BaseURL == "" {
		c.Providers.Binance.BaseURL = "https://api.binance.com"
	}
	if c.Providers.TwelveData.BaseURL == "" {
		c.Providers.TwelveData.BaseURL = "https://api.twelvedata.com"
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Indicators.MACDFast == 0 {
		c.Indicators.MACDFast = 12
	}
	if c.Indicators.MACDSlow == 0 {
		c.Indicators.MACDSlow = 26
	}
	if c.Indicators.MACDSignal == 0 {
		c.Indicators.MACDSignal = 9
	}
	if c.Indicators.BollingerPeriod == 0 {
		c.Indicators.BollingerPeriod = 20
	}
	if c.Indicators.BollingerStdDev == 0 {
		c.Indicators.BollingerStdDev = 2
	}
	if c.Indicators.MAShortPeriod == 0 {
		c.Indicators.MAShortPeriod = 50
	}
	if c.Indicators.MALongPeriod == 0 {
		c.Indicators.MALongPeriod = 200
	}
	if c.Indicators.VolumeWindow == 0 {
		c.Indicators.VolumeWindow = 20
	}
	if c.Indicators.VolumeSpikeRatio == 0 {
		c.Indicators.VolumeSpikeRatio = 2.0
	}
	if c.Consensus.Threshold == 0 {
		c.Consensus.Threshold = 80
	}
	if c.History.SignalCapacity == 0 {
		c.History.SignalCapacity = 200
	}
	if c.History.ErrorCapacity == 0 {
		c.History.ErrorCapacity = 100
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 60 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Assets) == 0 {
		return fmt.Errorf("assets cannot be empty")
	}
	for i, a := range c.Assets {
		if a.Symbol == "" {
			return fmt.Errorf("assets[%d].symbol is required", i)
		}
		if len(a.Providers) == 0 {
			return fmt.Errorf("assets[%d] (%s): providers cannot be empty", i, a.Symbol)
		}
		if len(a.Indicators) == 0 {
			return fmt.Errorf("assets[%d] (%s): indicators cannot be empty", i, a.Symbol)
		}
	}
	if c.Consensus.Threshold < 0 || c.Consensus.Threshold > 100 {
		return fmt.Errorf("consensus.threshold must be within [0,100], got %v", c.Consensus.Threshold)
	}
	if c.Indicators.MACDFast >= c.Indicators.MACDSlow {
		return fmt.Errorf("indicators.macd_fast must be less than macd_slow")
	}
	if c.Indicators.MAShortPeriod >= c.Indicators.MALongPeriod {
		return fmt.Errorf("indicators.ma_short_period must be less than ma_long_period")
	}
	if c.Alerts.Kafka.Enabled && len(c.Alerts.Kafka.Brokers) == 0 {
		return fmt.Errorf("alerts.kafka.brokers required when kafka alerts enabled")
	}
	if c.Alerts.Telegram.Enabled && (c.Alerts.Telegram.BotToken == "" || c.Alerts.Telegram.ChatID == "") {
		return fmt.Errorf("alerts.telegram.bot_token and chat_id required when telegram alerts enabled")
	}
	return nil
}
