// Copyright 2025 dacapoday
// SPDX-License-Identifier: Apache-2.0

package value

import "github.com/dacapoday/slot"

// Option configures a Cell at construction.
type Option func(*config)

type config struct {
	noInput bool
	sources []slot.Source
}

// NoInput marks the cell output-only: SetValue is silently ignored.
func NoInput() Option {
	return func(cfg *config) {
		cfg.noInput = true
	}
}

// DependsOn registers the cell as a dependent of each source, so any
// change to a source invalidates the cell.
func DependsOn(sources ...slot.Source) Option {
	return func(cfg *config) {
		cfg.sources = append(cfg.sources, sources...)
	}
}
