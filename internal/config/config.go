// Package config handles configuration loading and validation for the
// fuzzing core, ported from the original core's compile-time constants
// (config.h's N_FUZZ_INPUTS_w/N_COV_POINTS_w/... defines) into a
// YAML-loaded, validated-once-at-startup struct in the style of the
// teacher's scenario.Parser.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FuzzConfig holds every width and run-level knob the driver loop needs.
// Once loaded and validated it is treated as read-only for the lifetime of
// the process, the Go equivalent of the original's preprocessor constants.
type FuzzConfig struct {
	NFuzzInputs     int `yaml:"n_fuzz_inputs"`
	NCovPoints      int `yaml:"n_cov_points"`
	NAsserts        int `yaml:"n_asserts"`
	NResetTicks     int `yaml:"n_reset_ticks"`
	NMetaResetTicks int `yaml:"n_meta_reset_ticks"`
	NZerosSeed      int `yaml:"n_zeros_seed"`

	MaxExecs    int           `yaml:"max_execs"`
	Timeout     time.Duration `yaml:"timeout"`
	CorpusDir   string        `yaml:"corpus_dir"`
	CrashDir    string        `yaml:"crash_dir"`
	TraceFile   string        `yaml:"trace_file"`
	CovDumpDir  string        `yaml:"cov_dump_dir"`
	WriteCov    bool          `yaml:"write_coverage"`
	RandomSeed  int64         `yaml:"random_seed"`
	EnableTUI   bool          `yaml:"enable_tui"`
	EnableWeb   bool          `yaml:"enable_web"`
	WebAddr     string        `yaml:"web_addr"`
}

// DefaultConfig returns the reference rfuzz/DifuzzRTL widths and a sane
// set of run-level defaults, mirroring the original core's config.h values.
func DefaultConfig() *FuzzConfig {
	return &FuzzConfig{
		NFuzzInputs:     32,
		NCovPoints:      4096,
		NAsserts:        32,
		NResetTicks:     5,
		NMetaResetTicks: 5,
		NZerosSeed:      100,
		MaxExecs:        0,
		Timeout:         0,
		CorpusDir:       "corpus",
		CrashDir:        "crashes",
		CovDumpDir:      "cov-dumps",
		WriteCov:        false,
		RandomSeed:      1,
		WebAddr:         ":8787",
	}
}

// Load reads and parses a FuzzConfig from a YAML file, applying it on top
// of DefaultConfig, mirroring scenario.Parser.ParseFile's read-then-decode
// shape.
func Load(path string) (*FuzzConfig, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every width is positive and every tick count is
// non-negative, mirroring the range assertions the original core's
// testbench constructor performs on its template parameters.
func (c *FuzzConfig) Validate() error {
	if c.NFuzzInputs <= 0 {
		return fmt.Errorf("config: n_fuzz_inputs must be positive, got %d", c.NFuzzInputs)
	}
	if c.NCovPoints <= 0 {
		return fmt.Errorf("config: n_cov_points must be positive, got %d", c.NCovPoints)
	}
	if c.NAsserts <= 0 {
		return fmt.Errorf("config: n_asserts must be positive, got %d", c.NAsserts)
	}
	if c.NResetTicks < 0 || c.NMetaResetTicks < 0 {
		return fmt.Errorf("config: reset tick counts must be non-negative")
	}
	if c.NZerosSeed <= 0 {
		return fmt.Errorf("config: n_zeros_seed must be positive, got %d", c.NZerosSeed)
	}
	return nil
}

// SimTargets names the ELF images the DUT loads, read from the
// SIMSRAMELF/SIMROMELF environment variables consumed by the simulator
// build around the core (spec.md §6) rather than by the core itself.
type SimTargets struct {
	SRAMELF string
	ROMELF  string
}

// LoadSimTargets reads SIMSRAMELF and SIMROMELF from the environment. Both
// are required; a missing variable is a fatal configuration error the
// caller should report on stderr and exit nonzero for, matching the
// original core's behavior around its own missing-ELF checks.
func LoadSimTargets() (SimTargets, error) {
	sram := os.Getenv("SIMSRAMELF")
	rom := os.Getenv("SIMROMELF")
	if sram == "" {
		return SimTargets{}, fmt.Errorf("config: SIMSRAMELF environment variable is not set")
	}
	if rom == "" {
		return SimTargets{}, fmt.Errorf("config: SIMROMELF environment variable is not set")
	}
	return SimTargets{SRAMELF: sram, ROMELF: rom}, nil
}
