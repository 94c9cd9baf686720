/*
DESCRIPTION
  valve.go provides control of a proportional heating valve driven by PWM.

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

// Package valve provides a proportional heating valve actuator driven by a
// PWM signal, where the duty cycle sets the valve opening.
package valve

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/kidoman/embd"

	"github.com/ausocean/utils/logging"
)

// Valve position bounds, percent open.
const (
	Closed = 0
	Open   = 100
)

// PWM is a pulse width modulated output. Times are in nanoseconds.
// embd.PWMPin satisfies PWM.
type PWM interface {
	SetPeriod(ns int) error
	SetDuty(ns int) error
	Close() error
}

// Valve is a proportional valve. It is safe for concurrent use.
type Valve struct {
	mu     sync.Mutex
	pwm    PWM
	period int
	pos    float32
	log    logging.Logger
	close  func() error
}

// New returns a closed Valve driven by p with the given PWM period in
// nanoseconds.
func New(p PWM, period int, l logging.Logger) (*Valve, error) {
	if period <= 0 {
		return nil, fmt.Errorf("invalid PWM period: %d", period)
	}
	err := p.SetPeriod(period)
	if err != nil {
		return nil, fmt.Errorf("could not set PWM period: %w", err)
	}
	v := &Valve{pwm: p, period: period, log: l}
	err = v.Set(Closed)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// NewPWMPin returns a Valve on the embd PWM pin identified by key, e.g. "18"
// or "P1_12". The host driver must be registered by importing
// github.com/kidoman/embd/host/all or a specific host.
func NewPWMPin(key string, period int, l logging.Logger) (*Valve, error) {
	err := embd.InitGPIO()
	if err != nil {
		return nil, fmt.Errorf("could not init GPIO: %w", err)
	}
	p, err := embd.NewPWMPin(key)
	if err != nil {
		embd.CloseGPIO()
		return nil, fmt.Errorf("could not open PWM pin %s: %w", key, err)
	}
	v, err := New(p, period, l)
	if err != nil {
		p.Close()
		embd.CloseGPIO()
		return nil, err
	}
	v.close = embd.CloseGPIO
	return v, nil
}

// Set moves the valve to pos percent open, clamped to [Closed,Open].
// Non-finite positions are rejected and the valve is left where it is.
func (v *Valve) Set(pos float32) error {
	if math.IsNaN(float64(pos)) || math.IsInf(float64(pos), 0) {
		return fmt.Errorf("invalid valve position: %v", pos)
	}
	if pos < Closed {
		pos = Closed
	} else if pos > Open {
		pos = Open
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	duty := int(math.Round(float64(pos) / Open * float64(v.period)))
	err := v.pwm.SetDuty(duty)
	if err != nil {
		return fmt.Errorf("could not set PWM duty: %w", err)
	}
	if pos != v.pos {
		v.log.Debug("valve moved", "position", pos, "duty", duty)
	}
	v.pos = pos
	return nil
}

// Position returns the last position successfully set.
func (v *Valve) Position() float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pos
}

// Close closes the valve and releases the PWM output.
func (v *Valve) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	err := v.pwm.SetDuty(0)
	if err != nil {
		err = fmt.Errorf("could not close valve: %w", err)
	}
	v.pos = Closed
	err = errors.Join(err, v.pwm.Close())
	if v.close != nil {
		err = errors.Join(err, v.close())
	}
	return err
}
