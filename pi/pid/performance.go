/*
DESCRIPTION
  performance.go provides offline analysis of recorded control history,
  producing classical control quality metrics.

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

import "gonum.org/v1/gonum/stat"

// steadyStateWindow is the number of trailing samples averaged for the
// steady-state error.
const steadyStateWindow = 10

// Report holds control performance metrics. Times are in seconds.
type Report struct {
	RiseTime         float32 // Time of first setpoint crossing, or Unavailable.
	SettlingTime     float32 // Start of the final in-band run, or Unavailable.
	Overshoot        float32 // Maximum overshoot after rise, percent of setpoint.
	SteadyStateError float32 // Mean absolute error over the trailing samples.
	Oscillations     int     // Full cycles of the measurement.
	ErrorStdDev      float32 // Standard deviation of absolute error.
}

// Params returns r as logging key/value pairs.
func (r Report) Params() []interface{} {
	return []interface{}{
		"riseTime", r.RiseTime,
		"settlingTime", r.SettlingTime,
		"overshoot", r.Overshoot,
		"steadyStateError", r.SteadyStateError,
		"oscillations", r.Oscillations,
		"errorStdDev", r.ErrorStdDev,
	}
}

// Analyze computes a Report from chronological measurement and setpoint
// samples taken every dt seconds, using the default thresholds. Fewer than two
// samples give a zero Report.
func Analyze(measurements, setpoints []float32, dt float32) Report {
	return analyze(measurements, setpoints, dt, DefaultThresholds())
}

func analyze(m, sp []float32, dt float32, th Thresholds) Report {
	n := len(m)
	if len(sp) < n {
		n = len(sp)
	}
	if n < 2 {
		return Report{}
	}

	final := abs(sp[n-1])
	band := th.SettlingBand * final

	var (
		rise, settle = -1, -1
		crossed      bool
		oscillations int
		prevSlope    float32
		overshoot    float32
	)
	for i := 1; i < n; i++ {
		// A setpoint step restarts settling and overshoot tracking.
		if abs(sp[i]-sp[i-1]) > th.SetpointChange {
			settle = -1
			crossed = false
			continue
		}
		e := abs(sp[i] - m[i])

		if rise < 0 && ((m[i-1] < sp[i-1] && m[i] >= sp[i]) || (m[i-1] > sp[i-1] && m[i] <= sp[i])) {
			rise = i
		}

		if e <= band {
			if settle < 0 {
				settle = i
			}
		} else {
			settle = -1
		}

		slope := m[i] - m[i-1]
		if i > 1 && ((prevSlope < 0 && slope > 0) || (prevSlope > 0 && slope < 0)) {
			oscillations++
		}
		prevSlope = slope

		if rise >= 0 && !crossed &&
			((sp[i] > m[i-1] && sp[i] <= m[i]) || (sp[i] < m[i-1] && sp[i] >= m[i])) {
			crossed = true
		}
		if crossed && final != 0 {
			if o := e / final; o > overshoot {
				overshoot = o
			}
		}
	}

	errs := make([]float64, n)
	for i := range errs {
		errs[i] = float64(abs(sp[i] - m[i]))
	}
	k := steadyStateWindow
	if n < k {
		k = n
	}

	r := Report{
		RiseTime:         Unavailable,
		SettlingTime:     Unavailable,
		Overshoot:        overshoot * 100,
		SteadyStateError: float32(stat.Mean(errs[n-k:], nil)),
		Oscillations:     oscillations / 2,
		ErrorStdDev:      float32(stat.StdDev(errs, nil)),
	}
	if rise > 0 {
		r.RiseTime = float32(rise) * dt
	}
	if settle > 0 {
		r.SettlingTime = float32(settle) * dt
	}
	return r
}
