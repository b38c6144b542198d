/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// Config holds the settings shared by the lookup service and CLI. Durations
// are kept as strings so config files can say "2s" or "1500ms".
type Config struct {
	ListenAddr     string   `json:"listenAddr"`
	DetailURL      string   `json:"detailUrl"`
	SearchURL      string   `json:"searchUrl"`
	MinInterval    string   `json:"minInterval"`
	RequestTimeout string   `json:"requestTimeout"`
	ArchiveBucket  string   `json:"archiveBucket"`
	CORSOrigins    []string `json:"corsOrigins"`
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:     DefaultListenAddr,
		DetailURL:      DefaultDetailURL,
		SearchURL:      DefaultSearchURL,
		MinInterval:    DefaultMinInterval.String(),
		RequestTimeout: DefaultRequestTimeout.String(),
		CORSOrigins:    []string{"*"},
	}
}

// LoadConfig builds a Config from DefaultConfig(), then the json5 file at
// path and its <name>.local.<ext> sibling (either may be absent, but not
// both), then USCF_* environment variables. An empty path skips the files.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		fileCfg, err := readConfigFiles(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config %v: %w", path, err)
		}
		err = mergo.Merge(&cfg, fileCfg, mergo.WithOverride)
		if err != nil {
			return cfg, fmt.Errorf("merging config %v: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func splitExt(f string) (string, string) {
	ext := filepath.Ext(f)
	return strings.TrimSuffix(f, ext), strings.TrimPrefix(ext, ".")
}

func readConfigFiles(path string) (Config, error) {
	var out Config
	found := false

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(data) > 0 {
		if err := json5.Unmarshal(data, &out); err != nil {
			return out, err
		}
		found = true
	}

	prefix, ext := splitExt(path)
	localPath := fmt.Sprintf("%v.local.%v", prefix, ext)
	data, err = os.ReadFile(localPath)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(data) > 0 {
		var override Config
		if err := json5.Unmarshal(data, &override); err != nil {
			return out, fmt.Errorf("%v: %w", localPath, err)
		}
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, err
		}
		log.Printf("internal.config: merged local overrides from %v",
			localPath)
		found = true
	}

	if !found {
		return out, os.ErrNotExist
	}

	return out, nil
}

func applyEnv(cfg *Config) {
	cfg.ListenAddr = getEnv("USCF_LISTEN_ADDR", cfg.ListenAddr)
	cfg.DetailURL = getEnv("USCF_DETAIL_URL", cfg.DetailURL)
	cfg.SearchURL = getEnv("USCF_SEARCH_URL", cfg.SearchURL)
	cfg.MinInterval = getEnv("USCF_MIN_INTERVAL", cfg.MinInterval)
	cfg.RequestTimeout = getEnv("USCF_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.ArchiveBucket = getEnv("USCF_ARCHIVE_BUCKET", cfg.ArchiveBucket)

	if origins := os.Getenv("USCF_CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (cfg Config) Validate() error {
	if cfg.DetailURL == "" || cfg.SearchURL == "" {
		return fmt.Errorf("detailUrl and searchUrl must be set")
	}
	minInterval, err := time.ParseDuration(cfg.MinInterval)
	if err != nil {
		return fmt.Errorf("invalid minInterval: %w", err)
	}
	if minInterval < 0 {
		return fmt.Errorf("minInterval %v must not be negative", minInterval)
	}
	timeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("invalid requestTimeout: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("requestTimeout %v must be positive", timeout)
	}

	return nil
}

// MinIntervalDuration returns the parsed MinInterval, falling back to the
// default when it does not parse. Call Validate() to surface such errors.
func (cfg Config) MinIntervalDuration() time.Duration {
	d, err := time.ParseDuration(cfg.MinInterval)
	if err != nil {
		return DefaultMinInterval
	}
	return d
}

func (cfg Config) RequestTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		return DefaultRequestTimeout
	}
	return d
}
