/*
DESCRIPTION
  controller.go provides an adaptive PID controller for driving a heating
  valve towards a temperature setpoint. The control law uses a deadband,
  integral anti-windup and derivative on measurement. Running statistics are
  collected for periodic self-adaptation of the gains, and recent samples are
  kept for auto-tuning and performance analysis.

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

// Package pid provides an adaptive PID control engine with self-adaptation,
// relay auto-tuning and offline performance analysis.
package pid

import (
	"fmt"

	"github.com/ausocean/utils/logging"
)

// Unavailable marks a time valued quantity that has not been observed.
const Unavailable = -1

// Result holds the outcome of a single Update.
type Result struct {
	Command    float32 // Actuator command, within the output bounds.
	Error      float32 // Setpoint minus measurement.
	Integral   float32 // Integral accumulator after this update.
	Derivative float32 // Derivative term, on measurement.
}

// State is a snapshot of the controller runtime state.
type State struct {
	Integral        float32
	PrevError       float32
	PrevMeasurement float32

	EpisodeTime     float32 // Seconds since the last setpoint change.
	AdaptationTimer float32 // Seconds since the last adaptation pass.

	Oscillations int     // Error sign changes since the last adaptation.
	ErrorSum     float32 // Sum of absolute error since the last adaptation.
	Samples      int     // Samples in ErrorSum.
	MaxOvershoot float32 // Fraction of setpoint, since crossing it.
	Crossed      bool    // Measurement has crossed the setpoint this episode.
	RiseTime     float32 // EpisodeTime at first crossing, or Unavailable.
}

// Controller is an adaptive PID controller. A Controller is not safe for
// concurrent use; callers sharing one between goroutines must serialise
// access.
type Controller struct {
	cfg Config
	log logging.Logger

	setpoint     float32
	lastSetpoint float32 // Setpoint of the current episode.

	st         State
	errSign    int  // Sign of the last non-zero error.
	primed     bool // PrevMeasurement holds a real sample.
	derivative float32
	output     float32

	hist  History
	tuned bool // Auto-tune has been attempted.
	tunes bool // Auto-tune changed the gains.
}

// New returns a new Controller with configuration cfg and an initial
// setpoint.
func New(cfg Config, setpoint float32, log logging.Logger) (*Controller, error) {
	c := &Controller{log: log, setpoint: setpoint}
	err := c.Init(cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Init validates and stores cfg, resets the runtime state and clears the
// history. The setpoint is retained.
func (c *Controller) Init(cfg Config) error {
	cfg = cfg.withDefaults()
	err := cfg.Validate()
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.lastSetpoint = 0
	c.resetEpisode()
	c.st.Integral = clamp(0, cfg.OutputMin, cfg.OutputMax)
	c.st.PrevError = 0
	c.st.PrevMeasurement = 0
	c.st.AdaptationTimer = 0
	c.primed = false
	c.derivative = 0
	c.output = 0
	c.hist.Clear()
	c.tuned, c.tunes = false, false

	c.log.Info("pid controller initialised", "kp", cfg.Kp, "ki", cfg.Ki, "kd", cfg.Kd, "setpoint", c.setpoint)
	return nil
}

// resetEpisode resets the statistics of a control episode.
func (c *Controller) resetEpisode() {
	c.st.EpisodeTime = 0
	c.st.MaxOvershoot = 0
	c.st.Oscillations = 0
	c.st.Crossed = false
	c.st.RiseTime = Unavailable
	c.st.ErrorSum = 0
	c.st.Samples = 0
	c.errSign = 0
}

// Update performs one control step with the given measurement and actuator
// feedback and returns the resulting command. It must be called every
// Config.SampleInterval seconds.
//
// A non-finite measurement holds the actuator at its feedback position and
// leaves the controller state untouched.
func (c *Controller) Update(measurement, feedback float32) Result {
	if !finite(measurement) {
		cmd := c.hold(feedback)
		c.log.Debug("holding command for non-finite measurement", "command", cmd)
		return Result{Command: cmd, Integral: c.st.Integral, Derivative: c.derivative}
	}

	sp := c.setpoint
	if abs(sp-c.lastSetpoint) > c.cfg.Thresholds.SetpointChange {
		c.lastSetpoint = sp
		c.resetEpisode()
	} else {
		c.st.EpisodeTime += c.cfg.SampleInterval
		c.st.AdaptationTimer += c.cfg.SampleInterval
	}

	res := c.step(measurement, feedback, sp)
	c.output = res.Command
	c.derivative = res.Derivative

	c.hist.Append(measurement, sp)
	if c.cfg.AutoTune && !c.tuned && c.hist.Full() {
		c.tuned = true
		c.tunes = c.AutoTune()
	}
	return res
}

// hold returns feedback as the command, or the last command if feedback is
// itself non-finite.
func (c *Controller) hold(feedback float32) float32 {
	if finite(feedback) {
		c.output = feedback
	}
	return c.output
}

// step evaluates the control law for a finite measurement.
func (c *Controller) step(measurement, feedback, sp float32) Result {
	e := sp - measurement
	if e >= -c.cfg.Deadband && e <= c.cfg.Deadband {
		return Result{Command: c.hold(feedback), Error: e, Integral: c.st.Integral}
	}

	dt := c.cfg.SampleInterval
	c.st.Integral = clamp(c.st.Integral+e*dt, c.cfg.OutputMin, c.cfg.OutputMax)

	if !c.primed {
		c.st.PrevMeasurement = measurement
		c.primed = true
	}
	d := -(measurement - c.st.PrevMeasurement) / dt

	raw := c.cfg.Kp*e + c.cfg.Ki*c.st.Integral + c.cfg.Kd*d
	res := Result{
		Command:    clamp(raw, c.cfg.OutputMin, c.cfg.OutputMax),
		Error:      e,
		Integral:   c.st.Integral,
		Derivative: d,
	}

	if c.cfg.Adaptation {
		c.track(measurement, sp, e)
	}

	c.st.PrevError = e
	c.st.PrevMeasurement = measurement
	return res
}

// track updates the adaptation statistics and adapts the gains once per
// adaptation interval.
func (c *Controller) track(measurement, sp, e float32) {
	c.st.ErrorSum += abs(e)
	c.st.Samples++

	sign := signOf(e)
	if (c.errSign < 0 && sign > 0) || (c.errSign > 0 && sign < 0) {
		c.st.Oscillations++
	}
	if sign != 0 {
		c.errSign = sign
	}

	prev := c.st.PrevMeasurement
	if !c.st.Crossed && ((prev < sp && measurement >= sp) || (prev > sp && measurement <= sp)) {
		c.st.Crossed = true
		c.st.RiseTime = c.st.EpisodeTime
	}
	if c.st.Crossed && sp != 0 {
		if o := abs(e) / abs(sp); o > c.st.MaxOvershoot {
			c.st.MaxOvershoot = o
		}
	}

	if c.st.AdaptationTimer >= c.cfg.AdaptationInterval {
		c.adapt()
		c.st.AdaptationTimer = 0
	}
}

// adapt applies one adaptation pass and resets the interval statistics.
func (c *Controller) adapt() {
	n := c.st.Samples
	if n == 0 {
		n = 1
	}
	obs := Observation{
		Oscillations: c.st.Oscillations,
		Overshoot:    c.st.MaxOvershoot,
		MeanAbsError: c.st.ErrorSum / float32(n),
		RiseTime:     c.st.RiseTime,
	}
	g := Adapt(c.Gains(), obs, c.cfg.AdaptationRate, c.cfg.Deadband, c.cfg.Thresholds)
	c.cfg.Kp, c.cfg.Ki, c.cfg.Kd = g.Kp, g.Ki, g.Kd
	c.log.Debug("adapted gains", "oscillations", obs.Oscillations, "overshoot", obs.Overshoot,
		"meanError", obs.MeanAbsError, "kp", g.Kp, "ki", g.Ki, "kd", g.Kd)

	c.st.Oscillations = 0
	c.st.ErrorSum = 0
	c.st.Samples = 0
}

func signOf(v float32) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// SetSetpoint sets the setpoint used by the next Update. A change larger
// than the setpoint change threshold starts a new episode on that Update.
func (c *Controller) SetSetpoint(v float32) { c.setpoint = v }

// Setpoint returns the current setpoint.
func (c *Controller) Setpoint() float32 { return c.setpoint }

// SetKp sets the proportional gain, which must be in [0,MaxKp].
func (c *Controller) SetKp(v float32) error {
	return c.setGain("kp", &c.cfg.Kp, v, MaxKp)
}

// SetKi sets the integral gain, which must be in [0,MaxKi].
func (c *Controller) SetKi(v float32) error {
	return c.setGain("ki", &c.cfg.Ki, v, MaxKi)
}

// SetKd sets the derivative gain, which must be in [0,MaxKd].
func (c *Controller) SetKd(v float32) error {
	return c.setGain("kd", &c.cfg.Kd, v, MaxKd)
}

func (c *Controller) setGain(name string, g *float32, v, hi float32) error {
	if !inRange(v, 0, hi) {
		c.log.Warning("rejected gain", "gain", name, "value", v)
		return fmt.Errorf("%s %v not in [0,%v]: %w", name, v, hi, ErrOutOfRange)
	}
	*g = v
	c.log.Debug("gain updated", "gain", name, "value", v)
	return nil
}

// SetDeadband sets the deadband, which must be finite and non-negative.
func (c *Controller) SetDeadband(v float32) error {
	if !finite(v) || v < 0 {
		return fmt.Errorf("deadband %v: %w", v, ErrOutOfRange)
	}
	c.cfg.Deadband = v
	return nil
}

// SetAdaptation enables or disables self-adaptation.
func (c *Controller) SetAdaptation(enabled bool) { c.cfg.Adaptation = enabled }

// SetAdaptationRate sets the adaptation rate, which must be in (0,1].
func (c *Controller) SetAdaptationRate(v float32) error {
	if !(v > 0 && v <= 1) {
		return fmt.Errorf("adaptation rate %v: %w", v, ErrOutOfRange)
	}
	c.cfg.AdaptationRate = v
	return nil
}

// Gains returns the current gains.
func (c *Controller) Gains() Gains {
	return Gains{Kp: c.cfg.Kp, Ki: c.cfg.Ki, Kd: c.cfg.Kd}
}

// Config returns the current configuration, including adapted gains.
func (c *Controller) Config() Config { return c.cfg }

// Output returns the last command.
func (c *Controller) Output() float32 { return c.output }

// State returns a snapshot of the runtime state.
func (c *Controller) State() State { return c.st }

// History returns the controller's sample history. The History must not be
// modified by the caller.
func (c *Controller) History() *History { return &c.hist }

// ClearHistory empties the sample history.
func (c *Controller) ClearHistory() { c.hist.Clear() }

// AutoTune runs the relay auto-tuner over the current history and, if
// sufficient oscillation was observed, replaces the gains. It reports whether
// the gains were replaced. Tuned gains are not clamped to the adaptation
// bounds.
func (c *Controller) AutoTune() bool {
	m, _ := c.hist.Snapshot()
	g, ok := AutoTune(m, c.cfg.SampleInterval)
	if !ok {
		c.log.Debug("auto-tune found insufficient oscillation", "samples", len(m))
		return false
	}
	c.cfg.Kp, c.cfg.Ki, c.cfg.Kd = g.Kp, g.Ki, g.Kd
	c.log.Info("auto-tuned gains", "kp", g.Kp, "ki", g.Ki, "kd", g.Kd)
	return true
}

// AutoTuned reports whether the automatic first-fill auto-tune has run and
// whether it changed the gains.
func (c *Controller) AutoTuned() (ran, changed bool) { return c.tuned, c.tunes }

// AnalyzePerformance analyses the current history with sample interval dt.
func (c *Controller) AnalyzePerformance(dt float32) Report {
	m, sp := c.hist.Snapshot()
	return analyze(m, sp, dt, c.cfg.Thresholds)
}
