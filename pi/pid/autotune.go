/*
DESCRIPTION
  autotune.go provides a relay method (simplified Ziegler-Nichols) gain
  estimator operating on recorded measurement history.

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
	"math"

	"gonum.org/v1/gonum/floats"
)

// Auto-tune consts.
const (
	maxPeaks      = 10  // Peaks used for period estimation.
	peakThreshold = 0.5 // Fraction of the range a peak must rise above the minimum.
)

// Ziegler-Nichols PID mapping and HVAC derating.
const (
	znKp     = 0.6
	znTi     = 0.5
	znTd     = 0.125
	derateKp = 0.5
	derateKi = 0.3
	derateKd = 0.7
)

// AutoTune estimates gains from a chronological series of measurements taken
// every dt seconds. The ultimate period is the mean spacing of up to maxPeaks
// local maxima in the upper half of the observed range, and the ultimate gain
// is derived from the peak to peak amplitude. The classic Ziegler-Nichols
// mapping is then derated for slow thermal plants.
//
// ok is false, and g zero, if fewer than two peaks are found.
func AutoTune(measurements []float32, dt float32) (g Gains, ok bool) {
	if len(measurements) < 3 {
		return Gains{}, false
	}

	m := make([]float64, len(measurements))
	for i, v := range measurements {
		m[i] = float64(v)
	}
	lo, hi := float32(floats.Min(m)), float32(floats.Max(m))
	threshold := lo + (hi-lo)*peakThreshold

	var peaks [maxPeaks]int
	n := 0
	for i := 1; i < len(measurements)-1 && n < maxPeaks; i++ {
		v := measurements[i]
		if v > measurements[i-1] && v > measurements[i+1] && v > threshold {
			peaks[n] = i
			n++
		}
	}
	if n < 2 {
		return Gains{}, false
	}

	var span int
	for i := 1; i < n; i++ {
		span += peaks[i] - peaks[i-1]
	}
	tu := float32(span) / float32(n-1) * dt
	amplitude := hi - lo
	ku := 4 / (math.Pi * amplitude)

	kp := znKp * ku
	ki := kp / (znTi * tu)
	kd := kp * znTd * tu
	return Gains{Kp: kp * derateKp, Ki: ki * derateKi, Kd: kd * derateKd}, true
}
