package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fedexist/empatica-challenge/internal/domain/health"
	"github.com/fedexist/empatica-challenge/internal/pipeline"
)

// Config holds the settings shared by the device-scan and device-check binaries.
type Config struct {
	// BucketPath is the root of the sample bucket, laid out as
	// <bucket>/YYYY/MM/DD/device_NNN.
	BucketPath string `yaml:"bucket_path"`
	// Workers caps the number of devices evaluated concurrently per day.
	// Zero means one worker per device.
	Workers int `yaml:"workers"`
	// SampleRates declares the recording rate of each stream in Hz.
	SampleRates SampleRates `yaml:"sample_rates"`
	// Thresholds parameterizes the malfunction rules.
	Thresholds Thresholds `yaml:"thresholds"`
	// Alerts configures where faulty-device alerts are published.
	Alerts Alerts `yaml:"alerts"`
	// Reports configures where full scan reports are stored.
	Reports Reports `yaml:"reports"`
}

// SampleRates declares the per-stream recording rates in Hz.
type SampleRates struct {
	// OnWrist is the wrist-contact stream rate.
	OnWrist int `yaml:"on_wrist"`
	// Temperature is the temperature stream rate.
	Temperature int `yaml:"temperature"`
	// PPG is the optical pulse stream rate.
	PPG int `yaml:"ppg"`
}

// Thresholds is the YAML form of the rule parameters.
type Thresholds struct {
	// MinTemp is the lowest acceptable worn temperature reading.
	MinTemp float64 `yaml:"min_temp"`
	// MaxTemp is the highest acceptable worn temperature reading.
	MaxTemp float64 `yaml:"max_temp"`
	// TempStdOnMax caps the worn temperature standard deviation.
	TempStdOnMax float64 `yaml:"temp_std_on_max"`
	// PPGStdOnMax caps the worn PPG standard deviation.
	PPGStdOnMax float64 `yaml:"ppg_std_on_max"`
	// TempDecreaseTolerance allows small upward temperature steps while off wrist.
	TempDecreaseTolerance float64 `yaml:"temp_decrease_tolerance"`
	// PPGStdOffMax caps the off-wrist PPG standard deviation.
	PPGStdOffMax float64 `yaml:"ppg_std_off_max"`
}

// Alerts configures the alert sinks. Absent sections disable the sink.
type Alerts struct {
	// Kafka enables publishing alerts to a Kafka topic when set.
	Kafka *KafkaAlerts `yaml:"kafka,omitempty"`
}

// KafkaAlerts holds the Kafka alert sink settings.
type KafkaAlerts struct {
	// Brokers lists the bootstrap broker addresses.
	Brokers []string `yaml:"brokers"`
	// Topic is the destination topic for alerts.
	Topic string `yaml:"topic"`
}

// Reports configures the report stores. Absent sections disable the store.
type Reports struct {
	// Dir is the directory for per-day JSON report files. Empty disables them.
	Dir string `yaml:"dir,omitempty"`
	// Redis enables mirroring reports into a Redis hash per day when set.
	Redis *RedisReports `yaml:"redis,omitempty"`
}

// RedisReports holds the Redis report store settings.
type RedisReports struct {
	// Addr is the Redis server address as host:port.
	Addr string `yaml:"addr"`
	// Password authenticates against the server. Empty means no auth.
	Password string `yaml:"password"`
	// DB selects the logical Redis database.
	DB int `yaml:"db"`
	// TTL expires a day's report hash after the given duration. Zero keeps it forever.
	TTL time.Duration `yaml:"ttl"`
}

const (
	// DefaultConfigFilename is the default filename for checker settings.
	DefaultConfigFilename = "device-checker-settings.yaml"

	// DefaultBucketPath is the default sample bucket root.
	DefaultBucketPath = "raw_bucket"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBucketPathRequired is returned when the bucket path is missing.
	errBucketPathRequired = errors.New("bucket path must be provided")
	// errNonPositiveSampleRate is returned when a stream rate is zero or negative.
	errNonPositiveSampleRate = errors.New("sample rates must be positive")
	// errUnorderedSampleRates is returned when rates are not ordered slowest to fastest.
	errUnorderedSampleRates = errors.New("sample rates must satisfy on_wrist <= temperature <= ppg")
	// errNegativeWorkers is returned when the worker cap is negative.
	errNegativeWorkers = errors.New("workers must be zero or positive")
	// errKafkaBrokersRequired is returned when the Kafka section lists no brokers.
	errKafkaBrokersRequired = errors.New("kafka alerts require at least one broker")
	// errKafkaTopicRequired is returned when the Kafka section has no topic.
	errKafkaTopicRequired = errors.New("kafka alerts require a topic")
	// errRedisAddrRequired is returned when the Redis section has no address.
	errRedisAddrRequired = errors.New("redis reports require an address")
	// errNegativeTTL is returned when the Redis TTL is negative.
	errNegativeTTL = errors.New("redis report TTL must be zero or positive")
)

// Default returns a configuration preloaded with the reference deployment
// values: 1/4/64 Hz streams and the raw-unit thresholds the devices ship
// with. Load unmarshals user settings on top of it, so fields absent from
// the YAML keep these defaults.
func Default() *Config {
	return &Config{
		BucketPath: DefaultBucketPath,
		Workers:    0,
		SampleRates: SampleRates{
			OnWrist:     1,
			Temperature: 4,
			PPG:         64,
		},
		Thresholds: Thresholds{
			MinTemp:               2700.0,
			MaxTemp:               3700.0,
			TempStdOnMax:          200.0,
			PPGStdOnMax:           3000.0,
			TempDecreaseTolerance: 0.0,
			PPGStdOffMax:          500.0,
		},
	}
}

// Load reads configuration from the provided path, overlays it on the
// defaults and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load, except that a missing settings file at
// the default location is not an error: the reference defaults are used
// instead. A file at any other path must exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && (path == "" || path == DefaultConfigFilename) && errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the configuration for required fields and consistency.
// Rate-ratio integrality is left to the pipeline: which stream is fastest is
// a property of the data layout, not of the file format.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.BucketPath == "" {
		return errBucketPathRequired
	}

	if cfg.Workers < 0 {
		return errNegativeWorkers
	}

	rates := cfg.SampleRates
	if rates.OnWrist <= 0 || rates.Temperature <= 0 || rates.PPG <= 0 {
		return errNonPositiveSampleRate
	}

	if rates.OnWrist > rates.Temperature || rates.Temperature > rates.PPG {
		return errUnorderedSampleRates
	}

	if err := cfg.PipelineThresholds().Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}

	if kafka := cfg.Alerts.Kafka; kafka != nil {
		if len(kafka.Brokers) == 0 {
			return errKafkaBrokersRequired
		}

		if kafka.Topic == "" {
			return errKafkaTopicRequired
		}
	}

	if redis := cfg.Reports.Redis; redis != nil {
		if redis.Addr == "" {
			return errRedisAddrRequired
		}

		if redis.TTL < 0 {
			return errNegativeTTL
		}
	}

	return nil
}

// PipelineThresholds converts the YAML thresholds into the pipeline form.
func (c *Config) PipelineThresholds() pipeline.Thresholds {
	return pipeline.Thresholds{
		MinTemp:               c.Thresholds.MinTemp,
		MaxTemp:               c.Thresholds.MaxTemp,
		TempStdOnMax:          c.Thresholds.TempStdOnMax,
		PPGStdOnMax:           c.Thresholds.PPGStdOnMax,
		TempDecreaseTolerance: c.Thresholds.TempDecreaseTolerance,
		PPGStdOffMax:          c.Thresholds.PPGStdOffMax,
	}
}

// StreamTemplate returns a Streams value carrying the configured rates with
// no samples yet. Loaders fill in the values.
func (c *Config) StreamTemplate() health.Streams {
	return health.Streams{
		OnWrist:     health.Stream{Kind: health.KindOnWrist, RateHz: c.SampleRates.OnWrist},
		Temperature: health.Stream{Kind: health.KindTemperature, RateHz: c.SampleRates.Temperature},
		PPG:         health.Stream{Kind: health.KindPPG, RateHz: c.SampleRates.PPG},
	}
}
