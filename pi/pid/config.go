/*
DESCRIPTION
  config.go provides the tunable configuration of the adaptive PID controller,
  the heuristic thresholds used by adaptation and performance analysis, and
  their firmware defaults.

AUTHORS
  AusOcean thermostat developers

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean)

  It is free software: you can redistribute it and/or modify them
  under the terms of the GNU General Public License as published by the
  Free Software Foundation, either version 3 of the License, or (at your
  option) any later version.

  It is distributed in the hope that it will be useful, but WITHOUT
  ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
  FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License
  for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt. If not, see http://www.gnu.org/licenses.
*/

package pid

import (
	"errors"
	"fmt"
	"math"
)

// Gain bounds accepted by the validated setters and by Init.
const (
	MaxKp = 100
	MaxKi = 10
	MaxKd = 10
)

// Gain floors enforced after every adaptation pass. The ceilings are the
// setter bounds above.
const (
	minAdaptedKp = 0.1
	minAdaptedKi = 0.01
	minAdaptedKd = 0.01
)

// Configuration defaults, matching the thermostat firmware.
const (
	defaultKp                 = 2.0
	defaultKi                 = 0.1
	defaultKd                 = 0.5
	defaultOutputMin          = 0
	defaultOutputMax          = 100
	defaultDeadband           = 0.2
	defaultSampleInterval     = 1   // Seconds.
	defaultAdaptationRate     = 0.05
	defaultAdaptationInterval = 60 // Seconds.
)

// Heuristic defaults.
const (
	defaultSetpointChange  = 0.1
	defaultOscillationHigh = 3
	defaultOscillationLow  = 2
	defaultOvershootHigh   = 0.10
	defaultOvershootLow    = 0.05
	defaultSlowRise        = 10.0 // Seconds.
	defaultSettlingBand    = 0.05
)

var (
	// ErrOutOfRange is returned when a setter is given a value outside its
	// accepted bounds. The previous value is retained.
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvalidConfig is returned by Init for an unusable Config.
	ErrInvalidConfig = errors.New("invalid controller config")
)

// Config holds the externally mutable controller configuration.
type Config struct {
	Kp float32 `yaml:"kp"`
	Ki float32 `yaml:"ki"`
	Kd float32 `yaml:"kd"`

	OutputMin float32 `yaml:"output_min"` // Actuator lower bound.
	OutputMax float32 `yaml:"output_max"` // Actuator upper bound.

	// Deadband is the symmetric tolerance around the setpoint within which
	// no control action is taken.
	Deadband float32 `yaml:"deadband"`

	// SampleInterval is the time in seconds between Update calls. The
	// integral and derivative terms always use this value, not wall time.
	SampleInterval float32 `yaml:"sample_interval"`

	AdaptationRate     float32 `yaml:"adaptation_rate"`     // In (0,1].
	Adaptation         bool    `yaml:"adaptation"`          // Enables self-adaptation.
	AdaptationInterval float32 `yaml:"adaptation_interval"` // Seconds between adaptation passes.

	// AutoTune runs the relay auto-tuner once, the first time the history
	// becomes full.
	AutoTune bool `yaml:"auto_tune"`

	Thresholds Thresholds `yaml:"thresholds"`
}

// Thresholds holds the constants used by the adaptation heuristic and the
// performance analyzer. Zero fields are replaced by defaults on Init.
type Thresholds struct {
	// SetpointChange is the setpoint delta that starts a new control episode.
	SetpointChange float32 `yaml:"setpoint_change"`

	// OscillationHigh is the oscillation count above which the loop is
	// considered too lively.
	OscillationHigh int `yaml:"oscillation_high"`

	// OscillationLow is the oscillation count below which the loop is
	// considered calm.
	OscillationLow int `yaml:"oscillation_low"`

	OvershootHigh float32 `yaml:"overshoot_high"` // Fraction of setpoint.
	OvershootLow  float32 `yaml:"overshoot_low"`  // Fraction of setpoint.
	SlowRise      float32 `yaml:"slow_rise"`      // Seconds.
	SettlingBand  float32 `yaml:"settling_band"`  // Fraction of setpoint.
}

// DefaultConfig returns the firmware default configuration.
func DefaultConfig() Config {
	return Config{
		Kp:                 defaultKp,
		Ki:                 defaultKi,
		Kd:                 defaultKd,
		OutputMin:          defaultOutputMin,
		OutputMax:          defaultOutputMax,
		Deadband:           defaultDeadband,
		SampleInterval:     defaultSampleInterval,
		AdaptationRate:     defaultAdaptationRate,
		Adaptation:         true,
		AdaptationInterval: defaultAdaptationInterval,
		AutoTune:           true,
		Thresholds:         DefaultThresholds(),
	}
}

// DefaultThresholds returns the default heuristic thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SetpointChange:  defaultSetpointChange,
		OscillationHigh: defaultOscillationHigh,
		OscillationLow:  defaultOscillationLow,
		OvershootHigh:   defaultOvershootHigh,
		OvershootLow:    defaultOvershootLow,
		SlowRise:        defaultSlowRise,
		SettlingBand:    defaultSettlingBand,
	}
}

// withDefaults fills unset thresholds and intervals, and replaces an
// adaptation rate outside (0,1] with the conservative default.
func (c Config) withDefaults() Config {
	if !(c.AdaptationRate > 0 && c.AdaptationRate <= 1) {
		c.AdaptationRate = defaultAdaptationRate
	}
	if c.AdaptationInterval <= 0 {
		c.AdaptationInterval = defaultAdaptationInterval
	}
	c.Thresholds = c.Thresholds.withDefaults()
	return c
}

func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.SetpointChange <= 0 {
		t.SetpointChange = d.SetpointChange
	}
	if t.OscillationHigh <= 0 {
		t.OscillationHigh = d.OscillationHigh
	}
	if t.OscillationLow <= 0 {
		t.OscillationLow = d.OscillationLow
	}
	if t.OvershootHigh <= 0 {
		t.OvershootHigh = d.OvershootHigh
	}
	if t.OvershootLow <= 0 {
		t.OvershootLow = d.OvershootLow
	}
	if t.SlowRise <= 0 {
		t.SlowRise = d.SlowRise
	}
	if t.SettlingBand <= 0 {
		t.SettlingBand = d.SettlingBand
	}
	return t
}

// Validate checks that c can drive a controller.
func (c Config) Validate() error {
	switch {
	case !inRange(c.Kp, 0, MaxKp):
		return fmt.Errorf("%w: kp %v not in [0,%d]", ErrInvalidConfig, c.Kp, MaxKp)
	case !inRange(c.Ki, 0, MaxKi):
		return fmt.Errorf("%w: ki %v not in [0,%d]", ErrInvalidConfig, c.Ki, MaxKi)
	case !inRange(c.Kd, 0, MaxKd):
		return fmt.Errorf("%w: kd %v not in [0,%d]", ErrInvalidConfig, c.Kd, MaxKd)
	case !finite(c.OutputMin) || !finite(c.OutputMax) || c.OutputMin >= c.OutputMax:
		return fmt.Errorf("%w: output bounds [%v,%v]", ErrInvalidConfig, c.OutputMin, c.OutputMax)
	case !finite(c.Deadband) || c.Deadband < 0:
		return fmt.Errorf("%w: deadband %v", ErrInvalidConfig, c.Deadband)
	case !finite(c.SampleInterval) || c.SampleInterval <= 0:
		return fmt.Errorf("%w: sample interval %v", ErrInvalidConfig, c.SampleInterval)
	}
	return nil
}

// inRange reports whether v is within [lo,hi]. NaN is never in range.
func inRange(v, lo, hi float32) bool { return v >= lo && v <= hi }

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp(v, lo, hi float32) float32 {
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
