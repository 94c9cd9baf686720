/*
DESCRIPTION
  plant.go provides the controlled plant: a DS18B20 temperature sensor and a PWM driven valve.

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

package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/yryz/ds18b20"

	"github.com/ausocean/thermostat/pi/settings"
	"github.com/ausocean/thermostat/pi/valve"
	"github.com/ausocean/utils/logging"
)

// plant is the system under control.
type plant interface {
	// Temperature returns the current room temperature in °C.
	Temperature() (float32, error)

	// Set sets the valve position in percent open.
	Set(pos float32) error

	// Position returns the valve position, used as actuator feedback.
	Position() float32

	Close() error
}

// hardware is a plant using a DS18B20 1-Wire sensor and an embd PWM valve.
type hardware struct {
	*valve.Valve
	sensor string
}

// newHardware opens the sensor and valve described by hw. If no sensor ID is
// given the first DS18B20 found is used.
func newHardware(hw settings.Hardware, l logging.Logger) (*hardware, error) {
	sensor := hw.Sensor
	if sensor == "" {
		sensors, err := ds18b20.Sensors()
		if err != nil {
			return nil, fmt.Errorf("could not list DS18B20 sensors: %w", err)
		}
		if len(sensors) < 1 {
			return nil, errors.New("no DS18B20 sensors connected")
		}
		sensor = sensors[0]
	}
	l.Info("using temperature sensor", "sensor", sensor)

	v, err := valve.NewPWMPin(hw.ValvePin, hw.ValvePeriod, l)
	if err != nil {
		return nil, fmt.Errorf("could not open valve: %w", err)
	}
	return &hardware{Valve: v, sensor: sensor}, nil
}

// Temperature implements plant.
func (h *hardware) Temperature() (float32, error) {
	t, err := ds18b20.Temperature(h.sensor)
	if err != nil {
		return float32(math.NaN()), fmt.Errorf("unable to read temperature: %w", err)
	}
	return float32(t), nil
}
