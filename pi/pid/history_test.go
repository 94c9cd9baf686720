/*
DESCRIPTION
  history_test.go provides testing of functionality in history.go.

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

import "testing"

func TestHistoryWraparound(t *testing.T) {
	var h History
	for i := 1; i <= HistorySize+1; i++ {
		h.Append(float32(i), float32(-i))
	}

	if h.Len() != HistorySize || !h.Full() {
		t.Fatalf("unexpected length. Got: %d, Want: %d", h.Len(), HistorySize)
	}

	m, sp := h.Snapshot()
	if len(m) != HistorySize || len(sp) != HistorySize {
		t.Fatalf("unexpected snapshot lengths: %d, %d", len(m), len(sp))
	}
	if m[0] != 2 || sp[0] != -2 {
		t.Errorf("unexpected oldest sample. Got: (%v, %v), Want: (2, -2)", m[0], sp[0])
	}
	if last := m[HistorySize-1]; last != HistorySize+1 {
		t.Errorf("unexpected newest sample. Got: %v, Want: %v", last, HistorySize+1)
	}
	for i := 1; i < len(m); i++ {
		if m[i] != m[i-1]+1 {
			t.Fatalf("samples out of order at %d: %v after %v", i, m[i], m[i-1])
		}
	}
}

func TestHistoryPartial(t *testing.T) {
	var h History
	for i := 0; i < 5; i++ {
		h.Append(float32(i), 22)
	}
	if h.Len() != 5 || h.Full() {
		t.Fatalf("unexpected length: %d", h.Len())
	}
	for i := 0; i < 5; i++ {
		m, sp := h.At(i)
		if m != float32(i) || sp != 22 {
			t.Errorf("unexpected sample %d. Got: (%v, %v), Want: (%v, 22)", i, m, sp, i)
		}
	}

	m := make([]float32, 3)
	sp := make([]float32, 10)
	if n := h.Read(m, sp); n != 3 || m[2] != 2 {
		t.Errorf("unexpected short read. Got: %d %v", n, m)
	}

	h.Clear()
	if h.Len() != 0 {
		t.Errorf("history not cleared, len: %d", h.Len())
	}
	h.Append(7, 8)
	if m, _ := h.At(0); m != 7 {
		t.Errorf("unexpected sample after clear. Got: %v, Want: 7", m)
	}
}

func TestHistoryAppendDoesNotAllocate(t *testing.T) {
	var h History
	allocs := testing.AllocsPerRun(1000, func() { h.Append(1, 2) })
	if allocs != 0 {
		t.Errorf("unexpected allocations per append: %v", allocs)
	}
}
