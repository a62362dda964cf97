// Package config loads kiosk settings from defaults, an optional config
// file, KIOSK_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"cinema-kiosk/model"
)

const EnvPrefix = "KIOSK"

type Config struct {
	Hall         string        `mapstructure:"hall" validate:"omitempty,oneof=small large"`
	Rows         int           `mapstructure:"rows"`
	SeatsPerRow  int           `mapstructure:"seats_per_row"`
	RowSeats     []int         `mapstructure:"row_seats"`
	Tickets      int           `mapstructure:"tickets"`
	Price        float64       `mapstructure:"price" validate:"gte=0"`
	Width        float64       `mapstructure:"width" validate:"gte=0"`
	Height       float64       `mapstructure:"height" validate:"gte=0"`
	Curvature    float64       `mapstructure:"curvature" validate:"gte=0,lte=1"`
	Store        string        `mapstructure:"store" validate:"oneof=file redis memory"`
	StoreDir     string        `mapstructure:"store_dir"`
	RedisAddr    string        `mapstructure:"redis_addr" validate:"required_if=Store redis"`
	CatalogURL   string        `mapstructure:"catalog_url" validate:"omitempty,url"`
	AMQPURL      string        `mapstructure:"amqp_url" validate:"omitempty,url"`
	LogLevel     string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFile      string        `mapstructure:"log_file"`
	PaymentDelay time.Duration `mapstructure:"payment_delay" validate:"gte=0"`
}

// New returns a viper instance with the kiosk defaults and environment
// binding applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("hall", "")
	v.SetDefault("rows", model.SmallHall.Rows)
	v.SetDefault("seats_per_row", model.SmallHall.SeatsPerRow)
	v.SetDefault("row_seats", []int{})
	v.SetDefault("tickets", 2)
	v.SetDefault("price", model.SmallHall.Price)
	v.SetDefault("width", 800)
	v.SetDefault("height", 600)
	v.SetDefault("curvature", 0.5)
	v.SetDefault("store", "file")
	v.SetDefault("store_dir", "")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("catalog_url", "")
	v.SetDefault("amqp_url", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("payment_delay", "2s")
}

// RegisterFlags adds the kiosk flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (yaml, json or toml)")
	fs.String("hall", "", "hall preset: small (10x10) or large (15x20)")
	fs.Int("rows", model.SmallHall.Rows, "number of rows")
	fs.Int("seats-per-row", model.SmallHall.SeatsPerRow, "seats in every row")
	fs.IntSlice("row-seats", nil, "seats per row, front row first (overrides --seats-per-row)")
	fs.Int("tickets", 2, "tickets to buy")
	fs.Float64("price", model.SmallHall.Price, "price per seat")
	fs.Float64("width", 800, "canvas width")
	fs.Float64("height", 600, "canvas height")
	fs.Float64("curvature", 0.5, "row curvature between 0 (flat) and 1")
	fs.String("store", "file", "snapshot store: file, redis or memory")
	fs.String("store-dir", "", "directory of the file store")
	fs.String("redis-addr", "localhost:6379", "redis address for --store=redis")
	fs.String("catalog-url", "", "film catalog endpoint")
	fs.String("amqp-url", "", "rabbitmq url for workflow events")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.String("log-file", "", "log file (default under the user cache dir)")
	fs.Duration("payment-delay", 2*time.Second, "simulated payment processing time")
}

// BindFlags binds every registered flag to its config key.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		errs = append(errs, v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f))
	})
	return errors.Join(errs...)
}

// Load reads the optional config file and decodes and validates the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks option values. Seat counts are not checked: a hall with
// non-positive counts renders as an empty chart.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// HallConfig is the hall preset when one is named, otherwise the hall built
// from the row and seat settings.
func (c *Config) HallConfig() model.HallConfig {
	switch c.Hall {
	case model.SmallHall.Name:
		return model.SmallHall
	case model.LargeHall.Name:
		return model.LargeHall
	}
	hall := model.HallConfig{
		Name:        "custom",
		Rows:        c.Rows,
		SeatsPerRow: c.SeatsPerRow,
		Price:       c.Price,
	}
	if len(c.RowSeats) > 0 {
		hall.RowSeats = append([]int(nil), c.RowSeats...)
		hall.Rows = len(c.RowSeats)
	}
	return hall
}
