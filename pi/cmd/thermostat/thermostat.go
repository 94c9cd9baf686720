/*
DESCRIPTION
  thermostat.go provides the control loop tying the controller to the plant.

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
	"fmt"
	"time"

	"github.com/ausocean/thermostat/pi/pid"
	"github.com/ausocean/thermostat/pi/settings"
	"github.com/ausocean/utils/logging"
)

// Loop intervals.
const (
	reportInterval = 5 * time.Minute
	saveInterval   = 5 * time.Minute // Minimum time between saves of adapted gains.
)

// thermostat runs the controller against a plant and persists adapted gains.
type thermostat struct {
	c        *pid.Controller
	p        plant
	s        settings.Settings
	path     string // Settings file.
	plotPath string
	log      logging.Logger

	saved      pid.Gains
	held       pid.Gains // Last out of range gains warned about.
	lastSave   time.Time
	lastReport time.Time
}

func newThermostat(s settings.Settings, path string, p plant, l logging.Logger, now time.Time) (*thermostat, error) {
	c, err := pid.New(s.Controller, s.Setpoint, l)
	if err != nil {
		return nil, fmt.Errorf("could not create controller: %w", err)
	}
	return &thermostat{
		c:          c,
		p:          p,
		s:          s,
		path:       path,
		log:        l,
		saved:      c.Gains(),
		lastSave:   now,
		lastReport: now,
	}, nil
}

// step performs one control cycle: read, update and actuate.
func (t *thermostat) step(now time.Time) pid.Result {
	temp, err := t.p.Temperature()
	if err != nil {
		t.log.Warning("could not read temperature", "error", err)
	}
	res := t.c.Update(temp, t.p.Position())
	err = t.p.Set(res.Command)
	if err != nil {
		t.log.Error("could not set valve", "error", err)
	}
	t.log.Debug("control step", "temperature", temp, "setpoint", t.c.Setpoint(), "command", res.Command, "error", res.Error)

	if now.Sub(t.lastReport) >= reportInterval {
		t.report()
		t.lastReport = now
	}
	t.persist(now)
	return res
}

// report logs a performance report of the recorded history and optionally
// plots it.
func (t *thermostat) report() {
	dt := t.c.Config().SampleInterval
	r := t.c.AnalyzePerformance(dt)
	t.log.Info("performance report", r.Params()...)
	if t.plotPath == "" {
		return
	}
	err := pid.PlotHistory(t.c.History(), dt, "Room temperature", t.plotPath)
	if err != nil {
		t.log.Warning("could not plot history", "error", err)
	}
}

// persist saves the settings if the gains have changed, at most once per
// saveInterval. Gains outside the accepted bounds are held back.
func (t *thermostat) persist(now time.Time) {
	g := t.c.Gains()
	if g == t.saved || now.Sub(t.lastSave) < saveInterval {
		return
	}

	// Auto-tuned gains are unclamped until the next adaptation pass.
	err := t.c.Config().Validate()
	if err != nil {
		if g != t.held {
			t.log.Warning("not saving out of range gains", "kp", g.Kp, "ki", g.Ki, "kd", g.Kd, "error", err)
			t.held = g
		}
		return
	}
	t.s.Capture(t.c)
	err = settings.Save(t.path, t.s)
	if err != nil {
		t.log.Warning("could not save settings", "error", err)
		return
	}
	t.log.Info("saved gains", "kp", g.Kp, "ki", g.Ki, "kd", g.Kd)
	t.saved = g
	t.lastSave = now
}

// reload re-reads the settings file and reinitialises the controller. The
// hardware settings are not reapplied.
func (t *thermostat) reload() error {
	s, err := settings.Load(t.path)
	if err != nil {
		return err
	}
	s.Hardware = t.s.Hardware
	err = settings.Apply(t.c, s)
	if err != nil {
		return err
	}
	t.s = s
	t.saved = t.c.Gains()
	t.log.Info("settings reloaded", "path", t.path)
	return nil
}
