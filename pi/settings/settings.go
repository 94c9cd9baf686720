/*
DESCRIPTION
  settings.go provides persistence of thermostat settings as YAML.

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

// Package settings provides loading, saving and remote updating of the
// thermostat settings, including the controller configuration.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ausocean/thermostat/pi/pid"
)

// Default hardware configuration.
const (
	defaultSetpoint    = 21.0    // °C.
	defaultValvePin    = "18"    // GPIO18, hardware PWM0 on a Raspberry Pi.
	defaultValvePeriod = 1000000 // Nanoseconds, i.e. 1 kHz.
)

// Settings holds everything the thermostat persists between runs.
type Settings struct {
	Setpoint   float32    `yaml:"setpoint"`
	Controller pid.Config `yaml:"controller"`
	Hardware   Hardware   `yaml:"hardware"`
}

// Hardware describes the attached sensor and valve.
type Hardware struct {
	ValvePin    string `yaml:"valve_pin"`
	ValvePeriod int    `yaml:"valve_period"` // PWM period in nanoseconds.

	// Sensor is the 1-Wire ID of the DS18B20 to read. If empty the first
	// sensor found is used.
	Sensor string `yaml:"sensor,omitempty"`
}

// Default returns the default settings.
func Default() Settings {
	return Settings{
		Setpoint:   defaultSetpoint,
		Controller: pid.DefaultConfig(),
		Hardware: Hardware{
			ValvePin:    defaultValvePin,
			ValvePeriod: defaultValvePeriod,
		},
	}
}

// Load reads settings from the YAML file at path. Fields missing from the file
// keep their default values. A missing file is reported with an error
// satisfying errors.Is(err, fs.ErrNotExist).
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("could not read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("could not parse settings file %s: %w", path, err)
	}
	if err := s.Controller.Validate(); err != nil {
		return Default(), fmt.Errorf("settings file %s: %w", path, err)
	}
	return s, nil
}

// Save writes s to path. The file is written to a temporary file in the same
// directory and renamed into place, so a reader never sees a partial file.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("could not marshal settings: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary settings file: %w", err)
	}
	_, err = f.Write(data)
	err = errors.Join(err, f.Close())
	if err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("could not write settings: %w", err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("could not replace settings file: %w", err)
	}
	return nil
}

// Capture updates the controller portion of s from the live state of c.
func (s *Settings) Capture(c *pid.Controller) {
	s.Setpoint = c.Setpoint()
	s.Controller = c.Config()
}

// Apply initialises c with the controller settings in s. Runtime state is
// reset.
func Apply(c *pid.Controller, s Settings) error {
	if err := c.Init(s.Controller); err != nil {
		return fmt.Errorf("could not apply controller settings: %w", err)
	}
	c.SetSetpoint(s.Setpoint)
	return nil
}
