// Copyright 2018 The klaytn Authors
// This file is part of the klaytn library.
//
// The klaytn library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The klaytn library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the klaytn library. If not, see <http://www.gnu.org/licenses/>.

// Package config loads the signing orchestration core's tunables
// (MAX_RUNNING_TASKS, MAX_ENQUEUED_TASKS, JOB_POLL_INTERVAL_IN_MILLISECONDS,
// MAX_POTENTIAL_SIGNING_SETS_PER_PROPOSAL) as constants from TOML via
// github.com/naoina/toml.
package config

import (
	"os"
	"time"

	"github.com/naoina/toml"
)

// Defaults mirror the magnitudes used by the original dkg-gadget
// (constants::signing_manager in the Rust source).
const (
	DefaultMaxRunningTasks                    = 4
	DefaultMaxEnqueuedTasks                   = 100
	DefaultJobPollIntervalMillis              = 1000
	DefaultMaxPotentialSigningSetsPerProposal = 5
	DefaultAcceptableBlockWindow       uint64 = 5
)

// Config is the signing orchestration core's full set of tunables.
type Config struct {
	// MaxActive bounds WorkManager.active.
	MaxActive int `toml:"MaxRunningTasks"`
	// MaxEnqueued bounds WorkManager.enqueued for non-forced admissions.
	MaxEnqueued int `toml:"MaxEnqueuedTasks"`
	// PollIntervalMillis drives the Interval poll mode's ticker.
	PollIntervalMillis int `toml:"JobPollIntervalMillis"`
	// MaxSigningSetsPerProposal is K in the SsidIndex range [0, K).
	MaxSigningSetsPerProposal uint8 `toml:"MaxPotentialSigningSetsPerProposal"`
	// AcceptableBlockWindow is the sliding window width used by
	// associated-block-id acceptance checks.
	AcceptableBlockWindow uint64 `toml:"AcceptableBlockWindow"`
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		MaxActive:                 DefaultMaxRunningTasks,
		MaxEnqueued:               DefaultMaxEnqueuedTasks,
		PollIntervalMillis:        DefaultJobPollIntervalMillis,
		MaxSigningSetsPerProposal: DefaultMaxPotentialSigningSetsPerProposal,
		AcceptableBlockWindow:     DefaultAcceptableBlockWindow,
	}
}

// PollInterval is PollIntervalMillis as a time.Duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMillis) * time.Millisecond
}

// LoadFile reads and decodes a TOML config file, starting from Default()
// so an omitted field keeps its documented default rather than zeroing out.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects a configuration that would make WorkManager's
// admission invariants unsatisfiable.
func (c Config) Validate() error {
	if c.MaxActive <= 0 {
		return errInvalidConfig("MaxRunningTasks must be positive")
	}
	if c.MaxEnqueued < 0 {
		return errInvalidConfig("MaxEnqueuedTasks must not be negative")
	}
	if c.PollIntervalMillis <= 0 {
		return errInvalidConfig("JobPollIntervalMillis must be positive")
	}
	if c.MaxSigningSetsPerProposal == 0 {
		return errInvalidConfig("MaxPotentialSigningSetsPerProposal must be positive")
	}
	return nil
}

type configError string

func (e configError) Error() string { return string(e) }

func errInvalidConfig(msg string) error { return configError(msg) }
