package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/nguyentantai21042004/minutes-flow/pkg/retry"
)

type Config struct {
	Paths         PathsConfig         `yaml:"paths" toml:"paths"`
	Intake        IntakeConfig        `yaml:"intake" toml:"intake"`
	Transcription TranscriptionConfig `yaml:"transcription" toml:"transcription"`
	LLM           LLMConfig           `yaml:"llm" toml:"llm"`
	Minutes       MinutesConfig       `yaml:"minutes" toml:"minutes"`
	Retry         RetryConfig         `yaml:"retry" toml:"retry"`
	Watcher       WatcherConfig       `yaml:"watcher" toml:"watcher"`
	Store         StoreConfig         `yaml:"store" toml:"store"`
	Archive       ArchiveConfig       `yaml:"archive" toml:"archive"`
	Recorder      RecorderConfig      `yaml:"recorder" toml:"recorder"`
	Delivery      DeliveryConfig      `yaml:"delivery" toml:"delivery"`
	Logging       LoggingConfig       `yaml:"logging" toml:"logging"`
	Status        StatusConfig        `yaml:"status" toml:"status"`
}

type PathsConfig struct {
	Input  string `yaml:"input" toml:"input"`
	Output string `yaml:"output" toml:"output"`
	Temp   string `yaml:"temp" toml:"temp"`
}

type IntakeConfig struct {
	MaxFileSizeMB     int64         `yaml:"max_file_size_mb" toml:"max_file_size_mb"`
	SampleRate        int           `yaml:"sample_rate" toml:"sample_rate"`
	FFmpegBinary      string        `yaml:"ffmpeg_binary" toml:"ffmpeg_binary"`
	FFprobeBinary     string        `yaml:"ffprobe_binary" toml:"ffprobe_binary"`
	ConversionTimeout time.Duration `yaml:"conversion_timeout" toml:"conversion_timeout"`
	DownloadTimeout   time.Duration `yaml:"download_timeout" toml:"download_timeout"`
}

// MaxFileSize returns the intake limit in bytes.
func (c IntakeConfig) MaxFileSize() int64 {
	return c.MaxFileSizeMB * 1024 * 1024
}

type TranscriptionConfig struct {
	Provider          string        `yaml:"provider" toml:"provider"`
	BaseURL           string        `yaml:"base_url" toml:"base_url"`
	APIKey            string        `yaml:"api_key" toml:"api_key"`
	Model             string        `yaml:"model" toml:"model"`
	Language          string        `yaml:"language" toml:"language"`
	Translate         bool          `yaml:"translate" toml:"translate"`
	MaxRequestBytes   int64         `yaml:"max_request_bytes" toml:"max_request_bytes"`
	ChunkSeconds      float64       `yaml:"chunk_seconds" toml:"chunk_seconds"`
	RequestTimeout    time.Duration `yaml:"request_timeout" toml:"request_timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute" toml:"requests_per_minute"`
}

type LLMConfig struct {
	Provider       string        `yaml:"provider" toml:"provider"`
	Model          string        `yaml:"model" toml:"model"`
	APIKeys        []string      `yaml:"api_keys" toml:"api_keys"`
	RequestTimeout time.Duration `yaml:"request_timeout" toml:"request_timeout"`
}

type MinutesConfig struct {
	Platform     string   `yaml:"platform" toml:"platform"`
	TitlePrefix  string   `yaml:"title_prefix" toml:"title_prefix"`
	Participants []string `yaml:"participants" toml:"participants"`
	Docx         bool     `yaml:"docx" toml:"docx"`
}

// RetryConfig is shared by every remote call. MaxRetries counts retries
// after the first attempt; zero falls back to the default.
type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries" toml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay" toml:"base_delay"`
	MaxDelay   time.Duration `yaml:"max_delay" toml:"max_delay"`
	Jitter     float64       `yaml:"jitter" toml:"jitter"`
}

// Policy converts the section into a retry.Policy.
func (c RetryConfig) Policy() retry.Policy {
	return retry.Policy{
		MaxRetries: c.MaxRetries,
		BaseDelay:  c.BaseDelay,
		MaxDelay:   c.MaxDelay,
		Jitter:     c.Jitter,
	}
}

type WatcherConfig struct {
	Quiescence    time.Duration `yaml:"quiescence" toml:"quiescence"`
	MaxConcurrent int           `yaml:"max_concurrent" toml:"max_concurrent"`
	QueueSize     int           `yaml:"queue_size" toml:"queue_size"`
	SkipExisting  bool          `yaml:"skip_existing" toml:"skip_existing"`
}

type StoreConfig struct {
	Backend       string `yaml:"backend" toml:"backend"`
	SQLitePath    string `yaml:"sqlite_path" toml:"sqlite_path"`
	RedisAddr     string `yaml:"redis_addr" toml:"redis_addr"`
	RedisPassword string `yaml:"redis_password" toml:"redis_password"`
	RedisDB       int    `yaml:"redis_db" toml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix" toml:"redis_prefix"`
}

type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Endpoint  string `yaml:"endpoint" toml:"endpoint"`
	AccessKey string `yaml:"access_key" toml:"access_key"`
	SecretKey string `yaml:"secret_key" toml:"secret_key"`
	Bucket    string `yaml:"bucket" toml:"bucket"`
	Region    string `yaml:"region" toml:"region"`
	Prefix    string `yaml:"prefix" toml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl" toml:"use_ssl"`
}

type RecorderConfig struct {
	InputFormat string        `yaml:"input_format" toml:"input_format"`
	Device      string        `yaml:"device" toml:"device"`
	GracePeriod time.Duration `yaml:"grace_period" toml:"grace_period"`
}

type DeliveryConfig struct {
	NoClipboard bool   `yaml:"no_clipboard" toml:"no_clipboard"`
	SaveToDisk  bool   `yaml:"save_to_disk" toml:"save_to_disk"`
	OutputDir   string `yaml:"output_dir" toml:"output_dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

type StatusConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

func (c *Config) Validate() error {
	if c.Paths.Input == "" {
		c.Paths.Input = "data/input"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}

	if c.Intake.MaxFileSizeMB < 0 {
		return fmt.Errorf("intake.max_file_size_mb must not be negative")
	}
	if c.Intake.MaxFileSizeMB == 0 {
		c.Intake.MaxFileSizeMB = 2048
	}
	if c.Intake.SampleRate == 0 {
		c.Intake.SampleRate = 16000
	}
	if c.Intake.FFmpegBinary == "" {
		c.Intake.FFmpegBinary = "ffmpeg"
	}
	if c.Intake.FFprobeBinary == "" {
		c.Intake.FFprobeBinary = "ffprobe"
	}
	if c.Intake.ConversionTimeout == 0 {
		c.Intake.ConversionTimeout = 30 * time.Minute
	}
	if c.Intake.DownloadTimeout == 0 {
		c.Intake.DownloadTimeout = 10 * time.Minute
	}

	if c.Transcription.Provider == "" {
		c.Transcription.Provider = "openai"
	}
	if c.Transcription.Provider != "openai" {
		return fmt.Errorf("transcription.provider %q is not supported", c.Transcription.Provider)
	}
	if c.Transcription.BaseURL == "" {
		c.Transcription.BaseURL = "https://api.openai.com/v1"
	}
	if c.Transcription.Model == "" {
		c.Transcription.Model = "whisper-1"
	}
	if c.Transcription.MaxRequestBytes < 0 || c.Transcription.ChunkSeconds < 0 {
		return fmt.Errorf("transcription limits must not be negative")
	}
	if c.Transcription.MaxRequestBytes == 0 {
		c.Transcription.MaxRequestBytes = 25 * 1024 * 1024
	}
	if c.Transcription.ChunkSeconds == 0 {
		c.Transcription.ChunkSeconds = 900
	}
	if c.Transcription.RequestTimeout == 0 {
		c.Transcription.RequestTimeout = 5 * time.Minute
	}
	if c.Transcription.RequestsPerMinute == 0 {
		c.Transcription.RequestsPerMinute = 50
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "gemini"
	}
	if c.LLM.Provider != "gemini" {
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-2.5-flash"
	}
	if c.LLM.RequestTimeout == 0 {
		c.LLM.RequestTimeout = 2 * time.Minute
	}

	if c.Minutes.Platform == "" {
		c.Minutes.Platform = "Google Meet"
	}
	if c.Minutes.TitlePrefix == "" {
		c.Minutes.TitlePrefix = "Meet: "
	}

	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative")
	}
	if c.Retry.MaxRetries == 0 {
		c.Retry.MaxRetries = 3
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = time.Second
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = 8 * time.Second
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		return fmt.Errorf("retry.max_delay must be >= retry.base_delay")
	}
	if c.Retry.Jitter < 0 || c.Retry.Jitter > 1 {
		return fmt.Errorf("retry.jitter must be within [0, 1]")
	}

	if c.Watcher.Quiescence == 0 {
		c.Watcher.Quiescence = 10 * time.Second
	}
	if c.Watcher.MaxConcurrent == 0 {
		c.Watcher.MaxConcurrent = 1
	}
	if c.Watcher.QueueSize == 0 {
		c.Watcher.QueueSize = 64
	}
	if c.Watcher.MaxConcurrent < 0 || c.Watcher.QueueSize < 0 {
		return fmt.Errorf("watcher.max_concurrent and watcher.queue_size must be positive")
	}

	if c.Store.Backend == "" {
		c.Store.Backend = "sqlite"
	}
	switch c.Store.Backend {
	case "sqlite":
		if c.Store.SQLitePath == "" {
			c.Store.SQLitePath = "data/jobs.db"
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			c.Store.RedisAddr = "localhost:6379"
		}
		if c.Store.RedisPrefix == "" {
			c.Store.RedisPrefix = "minutes:job:"
		}
	case "memory":
	default:
		return fmt.Errorf("store.backend %q is not supported", c.Store.Backend)
	}

	if c.Archive.Enabled {
		if c.Archive.Endpoint == "" {
			return fmt.Errorf("archive.endpoint is required when archive is enabled")
		}
		if c.Archive.Bucket == "" {
			return fmt.Errorf("archive.bucket is required when archive is enabled")
		}
	}

	if c.Recorder.InputFormat == "" {
		c.Recorder.InputFormat, c.Recorder.Device = defaultCaptureDevice(c.Recorder.Device)
	}
	if c.Recorder.GracePeriod == 0 {
		c.Recorder.GracePeriod = 5 * time.Second
	}

	if c.Delivery.OutputDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Delivery.OutputDir = filepath.Join(home, "minutes-flow")
		} else {
			c.Delivery.OutputDir = "data/recordings"
		}
	}

	c.Logging.Level = strings.ToLower(c.Logging.Level)
	switch c.Logging.Level {
	case "":
		c.Logging.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}

	return nil
}

// defaultCaptureDevice picks the ffmpeg capture input for the host OS.
func defaultCaptureDevice(device string) (string, string) {
	switch runtime.GOOS {
	case "darwin":
		if device == "" {
			device = ":default"
		}
		return "avfoundation", device
	case "windows":
		if device == "" {
			device = "audio=default"
		}
		return "dshow", device
	default:
		if device == "" {
			device = "default"
		}
		return "pulse", device
	}
}
