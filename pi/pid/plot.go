/*
DESCRIPTION
  plot.go provides plotting of controller history for diagnostics.

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
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot dimensions.
const (
	plotWidth  = 20 * vg.Centimeter
	plotHeight = 10 * vg.Centimeter
)

// PlotHistory plots the measurements and setpoints held by h against time,
// using sample interval dt, and saves the plot to path. The image format is
// chosen by the path extension, e.g. ".png" or ".svg".
func PlotHistory(h *History, dt float32, title, path string) error {
	if h.Len() == 0 {
		return errors.New("no history to plot")
	}
	m, sp := h.Snapshot()

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Temperature (°C)"
	err := plotutil.AddLines(p,
		"Measurement", plotterXY(m, dt),
		"Setpoint", plotterXY(sp, dt),
	)
	if err != nil {
		return fmt.Errorf("could not draw plot contents: %w", err)
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("could not save plot: %w", err)
	}
	return nil
}

// plotterXY provides a plotter.XYs of the samples in y spaced dt apart.
func plotterXY(y []float32, dt float32) plotter.XYs {
	xy := make(plotter.XYs, len(y))
	for i := range y {
		xy[i].X = float64(i) * float64(dt)
		xy[i].Y = float64(y[i])
	}
	return xy
}
