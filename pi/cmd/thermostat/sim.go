/*
DESCRIPTION
  sim.go provides a simulated room for running the thermostat without hardware.

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
	"github.com/ausocean/thermostat/pi/valve"
	"github.com/ausocean/utils/logging"
)

// Room model defaults.
const (
	simAmbient  = 18.0  // °C.
	simGain     = 0.5   // Equilibrium rise in °C per percent of valve opening.
	simTau      = 300.0 // Thermal time constant in seconds.
	simPWMCycle = 1000000
)

// nopPWM is a PWM output that goes nowhere.
type nopPWM struct{}

func (nopPWM) SetPeriod(int) error { return nil }
func (nopPWM) SetDuty(int) error   { return nil }
func (nopPWM) Close() error        { return nil }

// room is a first order thermal model of a room heated through a valve:
//
//	dT/dt = (gain*pos - (T - ambient)) / tau
//
// The model advances by dt on every Temperature call.
type room struct {
	*valve.Valve
	temp    float32
	ambient float32
	gain    float32
	tau     float32
	dt      float32
}

// newRoom returns a room at ambient temperature with a closed valve, sampled
// every dt seconds.
func newRoom(dt float32, l logging.Logger) (*room, error) {
	v, err := valve.New(nopPWM{}, simPWMCycle, l)
	if err != nil {
		return nil, err
	}
	return &room{
		Valve:   v,
		temp:    simAmbient,
		ambient: simAmbient,
		gain:    simGain,
		tau:     simTau,
		dt:      dt,
	}, nil
}

// Temperature implements plant.
func (r *room) Temperature() (float32, error) {
	r.temp += (r.gain*r.Position() - (r.temp - r.ambient)) / r.tau * r.dt
	return r.temp, nil
}
