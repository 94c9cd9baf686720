/*
DESCRIPTION
  adapt.go provides the rule based gain adaptation heuristic.

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

// Gains holds a set of PID gains.
type Gains struct {
	Kp, Ki, Kd float32
}

// Observation holds the loop behaviour seen over an adaptation interval.
type Observation struct {
	Oscillations int     // Error sign changes.
	Overshoot    float32 // Maximum overshoot as a fraction of setpoint.
	MeanAbsError float32
	RiseTime     float32 // Seconds, or Unavailable.
}

// Adapt returns g nudged by multiplicative corrections derived from obs.
// The rules are applied in order and are not mutually exclusive:
//   - too many oscillations: reduce Kp and Ki, increase Kd.
//   - high overshoot: reduce Kp, increase Kd.
//   - persistent error while calm: increase Ki.
//   - slow rise while calm and without overshoot: increase Kp.
//
// The result is clamped to the adaptation bounds.
func Adapt(g Gains, obs Observation, rate, deadband float32, th Thresholds) Gains {
	if obs.Oscillations > th.OscillationHigh {
		g.Kp *= 1 - 0.5*rate
		g.Kd *= 1 + rate
		g.Ki *= 1 - 0.3*rate
	}

	if obs.Overshoot > th.OvershootHigh {
		g.Kp *= 1 - 0.7*rate
		g.Kd *= 1 + 0.5*rate
	}

	calm := obs.Oscillations < th.OscillationLow
	if obs.MeanAbsError > deadband && calm {
		g.Ki *= 1 + rate
	}

	if obs.RiseTime > th.SlowRise && calm && obs.Overshoot < th.OvershootLow {
		g.Kp *= 1 + 0.5*rate
	}

	g.Kp = clamp(g.Kp, minAdaptedKp, MaxKp)
	g.Ki = clamp(g.Ki, minAdaptedKi, MaxKi)
	g.Kd = clamp(g.Kd, minAdaptedKd, MaxKd)
	return g
}
