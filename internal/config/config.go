// Package config handles configuration loading for the docking pipeline.
// Values come from an optional YAML file, overridden by DOCKFLOW_* environment
// variables, with sane defaults for everything except the working directory.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values for the application.
type Config struct {
	// WorkDir is the root of the docking workspace. It must contain the
	// proteins/, ligands/ and comparison_ligands/ input directories.
	WorkDir string

	// VinaPath is the docking engine binary.
	VinaPath string

	// VinaSplitPath is the conformer splitter binary.
	VinaSplitPath string

	// Runtime selects how the engine is executed: "exec" or "docker".
	Runtime string

	// DockerImage is the engine image used by the docker runtime.
	DockerImage string

	// BoxMode selects search-box sizing: "fixed" uses BoxSize on every
	// axis, "span" uses the target's atom span plus BoxBuffer.
	BoxMode string

	// BoxSize is the edge length in angstroms for fixed-size boxes.
	BoxSize float64

	// BoxBuffer is added to each axis of the atom span in span mode.
	BoxBuffer float64

	// Exhaustiveness is passed to the engine when > 0.
	Exhaustiveness int

	// CPUPerJob is the engine's worker-thread hint per docking call.
	CPUPerJob int

	// Parallel is the number of concurrent docking jobs.
	Parallel int

	// TopN is how many ranked candidates are printed when a run finishes.
	TopN int

	// ProgressInterval bounds how often best-effort progress is logged.
	ProgressInterval time.Duration

	// MetricsPort serves Prometheus metrics during a run when > 0.
	MetricsPort int

	// OTELEndpoint enables trace export when non-empty.
	OTELEndpoint string
}

// Load reads configuration from the given YAML file (optional) and from
// DOCKFLOW_* environment variables. Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("work_dir", "./dock")
	v.SetDefault("vina_path", "vina")
	v.SetDefault("vina_split_path", "vina_split")
	v.SetDefault("runtime", "exec")
	v.SetDefault("docker_image", "")
	v.SetDefault("box_mode", "fixed")
	v.SetDefault("box_size", 20.0)
	v.SetDefault("box_buffer", 15.0)
	v.SetDefault("exhaustiveness", 0)
	v.SetDefault("cpu_per_job", 1)
	v.SetDefault("parallel", 1)
	v.SetDefault("top_n", 5)
	v.SetDefault("progress_interval", "5s")
	v.SetDefault("metrics_port", 0)
	v.SetDefault("otel_endpoint", "")

	v.SetEnvPrefix("DOCKFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		WorkDir:          v.GetString("work_dir"),
		VinaPath:         v.GetString("vina_path"),
		VinaSplitPath:    v.GetString("vina_split_path"),
		Runtime:          v.GetString("runtime"),
		DockerImage:      v.GetString("docker_image"),
		BoxMode:          v.GetString("box_mode"),
		BoxSize:          v.GetFloat64("box_size"),
		BoxBuffer:        v.GetFloat64("box_buffer"),
		Exhaustiveness:   v.GetInt("exhaustiveness"),
		CPUPerJob:        v.GetInt("cpu_per_job"),
		Parallel:         v.GetInt("parallel"),
		TopN:             v.GetInt("top_n"),
		ProgressInterval: v.GetDuration("progress_interval"),
		MetricsPort:      v.GetInt("metrics_port"),
		OTELEndpoint:     v.GetString("otel_endpoint"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.WorkDir == "" {
		return fmt.Errorf("work_dir is required (env: DOCKFLOW_WORK_DIR)")
	}
	switch c.Runtime {
	case "exec", "docker":
	default:
		return fmt.Errorf("invalid runtime %q: must be exec or docker", c.Runtime)
	}
	if c.Runtime == "docker" && c.DockerImage == "" {
		return fmt.Errorf("docker_image is required when runtime is docker")
	}
	switch c.BoxMode {
	case "fixed", "span":
	default:
		return fmt.Errorf("invalid box_mode %q: must be fixed or span", c.BoxMode)
	}
	if c.BoxSize <= 0 {
		return fmt.Errorf("box_size must be positive, got %v", c.BoxSize)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	if c.TopN < 1 {
		return fmt.Errorf("top_n must be at least 1, got %d", c.TopN)
	}
	return nil
}
