// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package tasksys

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Strategy selects a task system implementation.
type Strategy int

const (
	StrategySerial Strategy = iota
	StrategySpawn
	StrategySpinning
	StrategySleeping
)

var strategyNames = [...]string{
	StrategySerial:   "serial",
	StrategySpawn:    "spawn",
	StrategySpinning: "spinning",
	StrategySleeping: "sleeping",
}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// ParseStrategy returns the strategy with the given name, ignoring case.
func ParseStrategy(name string) (Strategy, error) {
	for i, n := range strategyNames {
		if strings.EqualFold(name, n) {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}

func (s Strategy) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(strategyNames) {
		return nil, fmt.Errorf("unknown strategy %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	v, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s *Strategy) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	return s.UnmarshalText([]byte(name))
}

// Config describes a task system declaratively.
type Config struct {
	Strategy       Strategy `yaml:"strategy"`
	NumThreads     int      `yaml:"num_threads"`
	RatioThreshold int      `yaml:"ratio_threshold"`
	ChunkSize      int      `yaml:"chunk_size"`
}

// DefaultConfig returns a sleeping pool with eight threads and the default
// spawn tuning.
func DefaultConfig() Config {
	return Config{
		Strategy:       StrategySleeping,
		NumThreads:     8,
		RatioThreshold: DefaultRatioThreshold,
		ChunkSize:      DefaultChunkSize,
	}
}

// ParseConfig decodes a YAML document over [DefaultConfig], so omitted
// fields keep their defaults. Unknown fields are rejected. The result is
// validated.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decoding task system config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first field that a constructor would reject.
func (c Config) Validate() error {
	if c.Strategy < 0 || int(c.Strategy) >= len(strategyNames) {
		return fmt.Errorf("invalid task system config: unknown strategy %d", int(c.Strategy))
	}
	if c.NumThreads < 1 {
		return fmt.Errorf("invalid task system config: %w", ErrInvalidThreadCount)
	}
	if c.NumThreads > MaxThreads {
		return fmt.Errorf("invalid task system config: %w", ErrTooManyThreads)
	}
	if c.RatioThreshold < 0 {
		return fmt.Errorf("invalid task system config: %w", errNegativeRatioThreshold)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("invalid task system config: %w", ErrInvalidChunkSize)
	}
	return nil
}

// New validates cfg and constructs the task system it describes. Options
// given explicitly take precedence over the tuning fields of cfg.
func New(cfg Config, opts ...Option) (TaskSystem, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts = append([]Option{
		WithRatioThreshold(cfg.RatioThreshold),
		WithChunkSize(cfg.ChunkSize),
	}, opts...)
	switch cfg.Strategy {
	case StrategySerial:
		return NewSerial(cfg.NumThreads, opts...), nil
	case StrategySpawn:
		return NewSpawn(cfg.NumThreads, opts...), nil
	case StrategySpinning:
		return NewSpinning(cfg.NumThreads, opts...), nil
	default:
		return NewSleeping(cfg.NumThreads, opts...), nil
	}
}
