/*
DESCRIPTION
  history.go provides a fixed capacity ring buffer of measurement and
  setpoint samples used by the auto-tuner and the performance analyzer.

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

// HistorySize is the number of samples held by a History, i.e. five minutes
// at one second intervals.
const HistorySize = 300

// History holds the most recent HistorySize measurement and setpoint samples.
// Once full, the oldest samples are overwritten. The zero value is an empty
// History ready for use.
type History struct {
	measurements [HistorySize]float32
	setpoints    [HistorySize]float32
	head         int // Next write position.
	n            int // Number of valid samples, saturating at HistorySize.
}

// Append adds a measurement and its setpoint, overwriting the oldest sample
// when full. Append never allocates.
func (h *History) Append(measurement, setpoint float32) {
	h.measurements[h.head] = measurement
	h.setpoints[h.head] = setpoint
	h.head = (h.head + 1) % HistorySize
	if h.n < HistorySize {
		h.n++
	}
}

// Len returns the number of samples held.
func (h *History) Len() int { return h.n }

// Full reports whether the History holds HistorySize samples.
func (h *History) Full() bool { return h.n == HistorySize }

// oldest returns the buffer index of the oldest sample.
func (h *History) oldest() int {
	if h.n == HistorySize {
		return h.head
	}
	return 0
}

// At returns the i'th sample in oldest to newest order. i must be in
// [0, Len()).
func (h *History) At(i int) (measurement, setpoint float32) {
	j := (h.oldest() + i) % HistorySize
	return h.measurements[j], h.setpoints[j]
}

// Read copies samples in oldest to newest order into m and sp and returns the
// number of samples copied, limited by the shorter of the two slices.
func (h *History) Read(m, sp []float32) int {
	n := h.n
	if len(m) < n {
		n = len(m)
	}
	if len(sp) < n {
		n = len(sp)
	}
	for i := 0; i < n; i++ {
		m[i], sp[i] = h.At(i)
	}
	return n
}

// Snapshot returns copies of the held samples in oldest to newest order.
func (h *History) Snapshot() (measurements, setpoints []float32) {
	measurements = make([]float32, h.n)
	setpoints = make([]float32, h.n)
	h.Read(measurements, setpoints)
	return measurements, setpoints
}

// Clear empties the History.
func (h *History) Clear() {
	h.head, h.n = 0, 0
}
