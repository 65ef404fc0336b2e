package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}
}

func TestValidateRejectsNonPositiveWidths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NFuzzInputs = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero n_fuzz_inputs")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fuzz.yaml")
	if err := os.WriteFile(path, []byte("n_fuzz_inputs: 64\nn_zeros_seed: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NFuzzInputs != 64 {
		t.Errorf("NFuzzInputs = %d, want 64", cfg.NFuzzInputs)
	}
	if cfg.NZerosSeed != 10 {
		t.Errorf("NZerosSeed = %d, want 10", cfg.NZerosSeed)
	}
	if cfg.NCovPoints != DefaultConfig().NCovPoints {
		t.Errorf("NCovPoints should remain at default when unset in YAML")
	}
}

func TestLoadSimTargetsRequiresBothVars(t *testing.T) {
	os.Unsetenv("SIMSRAMELF")
	os.Unsetenv("SIMROMELF")
	if _, err := LoadSimTargets(); err == nil {
		t.Fatal("expected error when both env vars are unset")
	}
	os.Setenv("SIMSRAMELF", "sram.elf")
	defer os.Unsetenv("SIMSRAMELF")
	if _, err := LoadSimTargets(); err == nil {
		t.Fatal("expected error when SIMROMELF is unset")
	}
	os.Setenv("SIMROMELF", "rom.elf")
	defer os.Unsetenv("SIMROMELF")
	targets, err := LoadSimTargets()
	if err != nil {
		t.Fatal(err)
	}
	if targets.SRAMELF != "sram.elf" || targets.ROMELF != "rom.elf" {
		t.Errorf("unexpected targets: %+v", targets)
	}
}
