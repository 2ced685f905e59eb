// Package config holds the handful of knobs spec.md leaves
// implementation-defined: data memory size, the code segment's base
// address, and how many registers and data memory cells the final report
// prints. It follows the JSON-file convention the
// teacher repo uses for its own timing configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds simulator-wide configuration.
type Config struct {
	// DataMemorySize is the number of integer-addressed data memory
	// cells. Spec §2 suggests 4000 is sufficient for test programs.
	DataMemorySize int `json:"data_memory_size"`

	// CodeBaseAddress is the PC of the first instruction (spec §6).
	CodeBaseAddress int `json:"code_base_address"`

	// RegistersDisplayed is how many general-purpose registers the
	// end-of-run report prints. Spec §9 notes the source only ever
	// printed 16 of 32 and leaves visibility of R16..R31 unclear; this
	// implementation exposes all 32 architecturally (spec §9 resolves
	// the open question that way) but keeps the printed count
	// configurable for parity with the teacher's report format.
	RegistersDisplayed int `json:"registers_displayed"`

	// MemoryCellsDisplayed is how many data memory cells the end-of-run
	// report prints (spec §6: "first 100 cells").
	MemoryCellsDisplayed int `json:"memory_cells_displayed"`
}

// Default returns the configuration spec.md's constants imply.
func Default() *Config {
	return &Config{
		DataMemorySize:       4000,
		CodeBaseAddress:      4000,
		RegistersDisplayed:   16,
		MemoryCellsDisplayed: 100,
	}
}

// Load reads a Config from a JSON file, starting from Default() so an
// incomplete file only overrides the fields it sets.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulator config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse simulator config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize simulator config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write simulator config file: %w", err)
	}
	return nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if c.DataMemorySize <= 0 {
		return fmt.Errorf("data_memory_size must be > 0")
	}
	if c.CodeBaseAddress < 0 {
		return fmt.Errorf("code_base_address must be >= 0")
	}
	if c.RegistersDisplayed <= 0 || c.RegistersDisplayed > 32 {
		return fmt.Errorf("registers_displayed must be between 1 and 32")
	}
	if c.MemoryCellsDisplayed < 0 {
		return fmt.Errorf("memory_cells_displayed must be >= 0")
	}
	return nil
}
