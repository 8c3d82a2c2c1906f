// Package config loads Beam's runtime configuration: host lists, stack
// sizes, worker counts, timer resolutions and reconnection backoff
// (spec §2's scheduler/service-client/timer rows all take these as
// tunables).
//
// Grounded on the teacher's api/env.AIS struct - a table of env var
// names keyed by purpose, rather than a single prefix-and-reflect
// scheme - generalized to Beam's BEAM_* variables, since the teacher
// carries no standalone config-file loader of its own to port directly.
// Layering (YAML base, optional JSON patch fragments, then env
// overrides) follows the common "defaults < file < environment"
// ordering the teacher's env vars already imply by existing alongside
// on-disk cluster config.
/*
 * Copyright (c) 2018-2026, Beam Systems. All rights reserved.
 */
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/beamtrade/beam/cmn/cos"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable SPEC_FULL.md's ambient stack names.
type Config struct {
	Hosts               []string      `yaml:"hosts"`
	StackSizeBytes      int           `yaml:"stack_size_bytes"`
	WorkerCount         int           `yaml:"worker_count"`
	TimerResolution     time.Duration `yaml:"timer_resolution"`
	ReconnectBackoff    time.Duration `yaml:"reconnect_backoff"`
	ReconnectMaxBackoff time.Duration `yaml:"reconnect_max_backoff"`
}

// Default returns the configuration used when neither a file nor an
// environment variable supplies a value.
func Default() Config {
	return Config{
		Hosts:               nil,
		StackSizeBytes:      256 * 1024,
		WorkerCount:         4,
		TimerResolution:     10 * time.Millisecond,
		ReconnectBackoff:    100 * time.Millisecond,
		ReconnectMaxBackoff: 30 * time.Second,
	}
}

// Env names the BEAM_* environment variables Load consults, mirroring
// the teacher's api/env.AIS table of named variables rather than a
// single reflective prefix scheme.
var Env = struct {
	Hosts               string
	WorkerCount         string
	StackSizeBytes      string
	TimerResolution     string
	ReconnectBackoff    string
	ReconnectMaxBackoff string
}{
	Hosts:               "BEAM_HOSTS",
	WorkerCount:         "BEAM_WORKER_COUNT",
	StackSizeBytes:      "BEAM_STACK_SIZE_BYTES",
	TimerResolution:     "BEAM_TIMER_RESOLUTION",
	ReconnectBackoff:    "BEAM_RECONNECT_BACKOFF",
	ReconnectMaxBackoff: "BEAM_RECONNECT_MAX_BACKOFF",
}

// Load builds a Config starting from Default, overlaying basePath's
// YAML (if non-empty), then every patch file in patchPaths (a tolerant
// JSON fragment read field-by-field via gjson rather than unmarshaled
// wholesale, so a patch may supply just the one or two fields an
// operator wants to override), then BEAM_* environment variables -
// each layer only overwrites the fields it actually mentions.
func Load(basePath string, patchPaths ...string) (Config, error) {
	cfg := Default()

	if basePath != "" {
		data, err := os.ReadFile(basePath)
		if err != nil {
			return cfg, cos.Wrapf(err, "read config %s", basePath)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, cos.Wrapf(err, "parse config %s", basePath)
		}
	}

	for _, p := range patchPaths {
		data, err := os.ReadFile(p)
		if err != nil {
			return cfg, cos.Wrapf(err, "read config patch %s", p)
		}
		applyJSONPatch(&cfg, data)
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyJSONPatch(cfg *Config, patch []byte) {
	if v := gjson.GetBytes(patch, "hosts"); v.Exists() {
		hosts := make([]string, 0, len(v.Array()))
		for _, h := range v.Array() {
			hosts = append(hosts, h.String())
		}
		cfg.Hosts = hosts
	}
	if v := gjson.GetBytes(patch, "worker_count"); v.Exists() {
		cfg.WorkerCount = int(v.Int())
	}
	if v := gjson.GetBytes(patch, "stack_size_bytes"); v.Exists() {
		cfg.StackSizeBytes = int(v.Int())
	}
	if v := gjson.GetBytes(patch, "timer_resolution"); v.Exists() {
		if d, err := time.ParseDuration(v.String()); err == nil {
			cfg.TimerResolution = d
		}
	}
	if v := gjson.GetBytes(patch, "reconnect_backoff"); v.Exists() {
		if d, err := time.ParseDuration(v.String()); err == nil {
			cfg.ReconnectBackoff = d
		}
	}
	if v := gjson.GetBytes(patch, "reconnect_max_backoff"); v.Exists() {
		if d, err := time.ParseDuration(v.String()); err == nil {
			cfg.ReconnectMaxBackoff = d
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv(Env.Hosts); ok && v != "" {
		cfg.Hosts = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv(Env.WorkerCount); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WorkerCount = n
		}
	}
	if v, ok := os.LookupEnv(Env.StackSizeBytes); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.StackSizeBytes = n
		}
	}
	if v, ok := os.LookupEnv(Env.TimerResolution); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TimerResolution = d
		}
	}
	if v, ok := os.LookupEnv(Env.ReconnectBackoff); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ReconnectBackoff = d
		}
	}
	if v, ok := os.LookupEnv(Env.ReconnectMaxBackoff); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ReconnectMaxBackoff = d
		}
	}
}
