// Package config loads the YAML run configuration of the learncs
// command.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/derrell/LearnCS-sub002/internal/memory"
)

// Memory sets the geometry of the emulated address space in bytes.
type Memory struct {
	Size int `yaml:"size"`
	Data int `yaml:"data"`
	Heap int `yaml:"heap"`
}

// Draw names the files the canvas is written to after a run.
type Draw struct {
	SVG string `yaml:"svg"`
	PNG string `yaml:"png"`
}

// Run is one run configuration.
type Run struct {
	Memory      Memory `yaml:"memory"`
	Breakpoints []int  `yaml:"breakpoints"`
	MaxSteps    int    `yaml:"max_steps"`
	Input       string `yaml:"input"` // file read as program input
	Draw        Draw   `yaml:"draw"`
	Trace       bool   `yaml:"trace"`
	Seed        uint32 `yaml:"seed"`
}

// Default returns the configuration used when no file is given.
func Default() *Run {
	m := memory.DefaultConfig()
	return &Run{
		Memory: Memory{Size: m.Size, Data: m.DataSize, Heap: m.HeapSize},
	}
}

// Load reads the YAML file at path. Fields the file omits keep their
// default values.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse decodes and validates a YAML configuration.
func Parse(data []byte) (*Run, error) {
	r := Default()
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// MemoryConfig returns the memory geometry of r.
func (r *Run) MemoryConfig() memory.Config {
	return memory.Config{Size: r.Memory.Size, DataSize: r.Memory.Data, HeapSize: r.Memory.Heap}
}

// Validate reports the first field that holds an unusable value.
func (r *Run) Validate() error {
	var errs []error
	if err := r.MemoryConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("memory: %w", err))
	}
	for i, line := range r.Breakpoints {
		if line < 1 {
			errs = append(errs, fmt.Errorf("breakpoints[%d]: line %d is not positive", i, line))
		}
	}
	if r.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("max_steps: %d is negative", r.MaxSteps))
	}
	return errors.Join(errs...)
}
