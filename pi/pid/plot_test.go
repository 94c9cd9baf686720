/*
DESCRIPTION
  plot_test.go provides testing of functionality in plot.go.

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
	"os"
	"path/filepath"
	"testing"
)

func TestPlotHistory(t *testing.T) {
	var h History
	for _, v := range sinusoid(120, 21, 0.5, 30) {
		h.Append(v, 21)
	}

	path := filepath.Join(t.TempDir(), "history.png")
	err := PlotHistory(&h, 1, "History", path)
	if err != nil {
		t.Fatalf("could not plot history: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("could not stat plot: %v", err)
	}
	if fi.Size() == 0 {
		t.Error("plot file is empty")
	}

	if err := PlotHistory(&History{}, 1, "Empty", path); err == nil {
		t.Error("expected error plotting empty history")
	}
}
