/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package detector

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"github.com/facebook/vigil/detector/protocol"
)

// Config tunes the failure detector. All fields must be set before the
// first call to Poll and never touched after.
type Config struct {
	// FailureThreshold is how many probe iterations one round runs
	FailureThreshold int `yaml:"failure_threshold"`
	// InitPeriod is the floor of the adaptive response timeout
	InitPeriod time.Duration `yaml:"init_period"`
	// MaxPeriod is the ceiling of the adaptive response timeout
	MaxPeriod time.Duration `yaml:"max_period"`
	// PeriodDelta is the additive step the timeout moves by
	PeriodDelta time.Duration `yaml:"period_delta"`
	// PollInterval is the floor of the inter-iteration sleep
	PollInterval time.Duration `yaml:"poll_interval"`
}

// DefaultConfig returns the detector defaults
func DefaultConfig() *Config {
	return &Config{
		FailureThreshold: 3,
		InitPeriod:       2 * time.Second,
		MaxPeriod:        5 * time.Second,
		PeriodDelta:      1 * time.Second,
		PollInterval:     1 * time.Second,
	}
}

// Validate checks Config sanity
func (c *Config) Validate() error {
	if c.FailureThreshold < 1 {
		return fmt.Errorf("%w: failure_threshold must be at least 1, got %d", protocol.ErrInvalidConfiguration, c.FailureThreshold)
	}
	if c.InitPeriod > c.MaxPeriod {
		return fmt.Errorf("%w: init_period %v exceeds max_period %v", protocol.ErrInvalidConfiguration, c.InitPeriod, c.MaxPeriod)
	}
	if c.PeriodDelta < 0 {
		return fmt.Errorf("%w: period_delta must not be negative", protocol.ErrInvalidConfiguration)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive", protocol.ErrInvalidConfiguration)
	}
	return nil
}

// ReadConfig loads Config from a yaml file
func ReadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	cData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(cData, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
