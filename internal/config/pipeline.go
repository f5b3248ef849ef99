package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvPipelineFlushInterval    = "CHRONICLE_PIPELINE_FLUSH_INTERVAL"
	EnvPipelineBatchSize        = "CHRONICLE_PIPELINE_BATCH_SIZE"
	EnvPipelinePriorityKeywords = "CHRONICLE_PIPELINE_PRIORITY_KEYWORDS"
	EnvPipelineDiscardFloor     = "CHRONICLE_PIPELINE_DISCARD_FLOOR"
	EnvPipelineAutoApprove      = "CHRONICLE_PIPELINE_AUTO_APPROVE"
	EnvPipelineCacheSize        = "CHRONICLE_PIPELINE_CACHE_SIZE"
	EnvPipelineCacheTTL         = "CHRONICLE_PIPELINE_CACHE_TTL"
	EnvPipelineWorkers          = "CHRONICLE_PIPELINE_WORKERS"
	EnvPipelineInferenceTimeout = "CHRONICLE_PIPELINE_INFERENCE_TIMEOUT"
	EnvPipelineProbeInterval    = "CHRONICLE_PIPELINE_PROBE_INTERVAL"
	EnvPipelineRecentLimit      = "CHRONICLE_PIPELINE_RECENT_LIMIT"
	EnvPipelineStaleDays        = "CHRONICLE_PIPELINE_STALE_DAYS"
)

// PipelineConfig holds the intake queue, inference, and suggestion policy
// settings.
type PipelineConfig struct {
	FlushInterval    string   `toml:"flush_interval"`
	BatchSize        int      `toml:"batch_size"`
	PriorityKeywords []string `toml:"priority_keywords"`
	DiscardFloor     float64  `toml:"discard_floor"`
	AutoApprove      float64  `toml:"auto_approve"`
	CacheSize        int      `toml:"cache_size"`
	CacheTTL         string   `toml:"cache_ttl"`
	Workers          int      `toml:"workers"`
	InferenceTimeout string   `toml:"inference_timeout"`
	ProbeInterval    string   `toml:"probe_interval"`
	RecentLimit      int      `toml:"recent_limit"`
	StaleDays        int      `toml:"stale_days"`
}

// FlushIntervalDuration returns FlushInterval as a time.Duration.
func (c *PipelineConfig) FlushIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.FlushInterval)
	return d
}

// CacheTTLDuration returns CacheTTL as a time.Duration.
func (c *PipelineConfig) CacheTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.CacheTTL)
	return d
}

// InferenceTimeoutDuration returns InferenceTimeout as a time.Duration.
func (c *PipelineConfig) InferenceTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.InferenceTimeout)
	return d
}

// ProbeIntervalDuration returns ProbeInterval as a time.Duration.
func (c *PipelineConfig) ProbeIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.ProbeInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.FlushInterval != "" {
		c.FlushInterval = overlay.FlushInterval
	}
	if overlay.BatchSize != 0 {
		c.BatchSize = overlay.BatchSize
	}
	if len(overlay.PriorityKeywords) > 0 {
		c.PriorityKeywords = overlay.PriorityKeywords
	}
	if overlay.DiscardFloor != 0 {
		c.DiscardFloor = overlay.DiscardFloor
	}
	if overlay.AutoApprove != 0 {
		c.AutoApprove = overlay.AutoApprove
	}
	if overlay.CacheSize != 0 {
		c.CacheSize = overlay.CacheSize
	}
	if overlay.CacheTTL != "" {
		c.CacheTTL = overlay.CacheTTL
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.InferenceTimeout != "" {
		c.InferenceTimeout = overlay.InferenceTimeout
	}
	if overlay.ProbeInterval != "" {
		c.ProbeInterval = overlay.ProbeInterval
	}
	if overlay.RecentLimit != 0 {
		c.RecentLimit = overlay.RecentLimit
	}
	if overlay.StaleDays != 0 {
		c.StaleDays = overlay.StaleDays
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.FlushInterval == "" {
		c.FlushInterval = "30s"
	}
	if c.BatchSize == 0 {
		c.BatchSize = 5
	}
	if len(c.PriorityKeywords) == 0 {
		c.PriorityKeywords = []string{"urgent", "escalation", "emergency"}
	}
	if c.DiscardFloor == 0 {
		c.DiscardFloor = 0.5
	}
	if c.AutoApprove == 0 {
		c.AutoApprove = 0.85
	}
	if c.CacheSize == 0 {
		c.CacheSize = 512
	}
	if c.CacheTTL == "" {
		c.CacheTTL = "1h"
	}
	if c.InferenceTimeout == "" {
		c.InferenceTimeout = "30s"
	}
	if c.ProbeInterval == "" {
		c.ProbeInterval = "5s"
	}
	if c.RecentLimit == 0 {
		c.RecentLimit = 10
	}
	if c.StaleDays == 0 {
		c.StaleDays = 30
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineFlushInterval); v != "" {
		c.FlushInterval = v
	}
	if v := os.Getenv(EnvPipelineBatchSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BatchSize = n
		}
	}
	if v := os.Getenv(EnvPipelinePriorityKeywords); v != "" {
		c.PriorityKeywords = splitList(v)
	}
	if v := os.Getenv(EnvPipelineDiscardFloor); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.DiscardFloor = f
		}
	}
	if v := os.Getenv(EnvPipelineAutoApprove); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.AutoApprove = f
		}
	}
	if v := os.Getenv(EnvPipelineCacheSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CacheSize = n
		}
	}
	if v := os.Getenv(EnvPipelineCacheTTL); v != "" {
		c.CacheTTL = v
	}
	if v := os.Getenv(EnvPipelineWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv(EnvPipelineInferenceTimeout); v != "" {
		c.InferenceTimeout = v
	}
	if v := os.Getenv(EnvPipelineProbeInterval); v != "" {
		c.ProbeInterval = v
	}
	if v := os.Getenv(EnvPipelineRecentLimit); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RecentLimit = n
		}
	}
	if v := os.Getenv(EnvPipelineStaleDays); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.StaleDays = n
		}
	}
}

func (c *PipelineConfig) validate() error {
	if _, err := time.ParseDuration(c.FlushInterval); err != nil {
		return fmt.Errorf("invalid flush_interval: %w", err)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("invalid batch_size: %d", c.BatchSize)
	}
	if c.DiscardFloor < 0 || c.DiscardFloor > 1 {
		return fmt.Errorf("invalid discard_floor: %f", c.DiscardFloor)
	}
	if c.AutoApprove < 0 || c.AutoApprove > 1 {
		return fmt.Errorf("invalid auto_approve: %f", c.AutoApprove)
	}
	if c.AutoApprove < c.DiscardFloor {
		return fmt.Errorf(
			"auto_approve %f below discard_floor %f",
			c.AutoApprove, c.DiscardFloor,
		)
	}
	if _, err := time.ParseDuration(c.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache_ttl: %w", err)
	}
	if _, err := time.ParseDuration(c.InferenceTimeout); err != nil {
		return fmt.Errorf("invalid inference_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.ProbeInterval); err != nil {
		return fmt.Errorf("invalid probe_interval: %w", err)
	}
	if c.RecentLimit < 1 {
		return fmt.Errorf("invalid recent_limit: %d", c.RecentLimit)
	}
	if c.StaleDays < 1 {
		return fmt.Errorf("invalid stale_days: %d", c.StaleDays)
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
