package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// PipelineConfig carries the orchestration knobs. The retry fields govern
// every transient-retry loop (TTS synthesis, avatar submission, stitch);
// the stitch attempt count has its own override because a failed stitch
// re-downloads every line video.
type PipelineConfig struct {
	WorkerPoolSize        int
	RetryMaxAttempts      int
	RetryDelay            time.Duration
	RetryBackoffFactor    float64
	AvatarPollInterval    time.Duration
	AvatarMaxPollAttempts int
	StitchMaxAttempts     int
	ReconcileInterval     time.Duration
}

func GetPipelineConfig() (*PipelineConfig, error) {
	cfg := &PipelineConfig{
		WorkerPoolSize:        120,
		RetryMaxAttempts:      3,
		RetryDelay:            5 * time.Second,
		RetryBackoffFactor:    2,
		AvatarPollInterval:    10 * time.Second,
		AvatarMaxPollAttempts: 90,
		StitchMaxAttempts:     2,
		ReconcileInterval:     5 * time.Minute,
	}

	var err error
	if cfg.WorkerPoolSize, err = intEnv("WORKER_POOL_SIZE", cfg.WorkerPoolSize); err != nil {
		return nil, err
	}
	if cfg.RetryMaxAttempts, err = intEnv("RETRY_MAX_ATTEMPTS", cfg.RetryMaxAttempts); err != nil {
		return nil, err
	}
	if cfg.RetryDelay, err = durationEnv("RETRY_DELAY", cfg.RetryDelay); err != nil {
		return nil, err
	}
	if cfg.RetryBackoffFactor, err = floatEnv("RETRY_BACKOFF_FACTOR", cfg.RetryBackoffFactor); err != nil {
		return nil, err
	}
	if cfg.AvatarPollInterval, err = durationEnv("AVATAR_POLL_INTERVAL", cfg.AvatarPollInterval); err != nil {
		return nil, err
	}
	if cfg.AvatarMaxPollAttempts, err = intEnv("AVATAR_MAX_POLL_ATTEMPTS", cfg.AvatarMaxPollAttempts); err != nil {
		return nil, err
	}
	if cfg.StitchMaxAttempts, err = intEnv("STITCH_MAX_ATTEMPTS", cfg.StitchMaxAttempts); err != nil {
		return nil, err
	}
	if cfg.ReconcileInterval, err = durationEnv("RECONCILE_INTERVAL", cfg.ReconcileInterval); err != nil {
		return nil, err
	}

	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return val, nil
}

func floatEnv(name string, fallback float64) (float64, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return val, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return val, nil
}
