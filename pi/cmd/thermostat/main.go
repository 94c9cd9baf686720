/*
DESCRIPTION
  thermostat is an adaptive PID room thermostat. The room temperature is read
  from a DS18B20 sensor and a heating valve is driven by PWM. Controller gains
  adapt to observed performance and are persisted to a settings file.

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

// thermostat is an adaptive PID room thermostat. The room temperature is read
// from a DS18B20 sensor and a heating valve is driven by PWM. Controller gains
// adapt to observed performance and are persisted to a settings file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/kidoman/embd/host/all"

	"github.com/ausocean/thermostat/pi/settings"
	"github.com/ausocean/thermostat/pi/smartlogger"
	"github.com/ausocean/utils/filemap"
	"github.com/ausocean/utils/logging"
)

// Defaults.
const (
	progName          = "thermostat"
	defaultConfigPath = "/etc/thermostat.yaml"
	defaultLogPath    = "/var/log/thermostat"
	logSuppress       = false
	archiveInterval   = 24 * time.Hour
)

func main() {
	var (
		configPath = flag.String("config", defaultConfigPath, "Settings file")
		logPath    = flag.String("logs", defaultLogPath, "Log directory")
		useHW      = flag.Bool("hardware", true, "Use the attached sensor and valve, otherwise simulate a room")
		debug      = flag.Bool("debug", false, "Log at debug level")
		hwFlag     = flag.String("hw", "", "Hardware overrides, e.g. valve=18,period=1000000,sensor=28-0316a2795aff")
		varsFlag   = flag.String("vars", "", varsUsage())
		plotPath   = flag.String("plot", "", "Plot history to this file (.png or .svg) with each report")
	)
	flag.Parse()

	logLevel := int8(logging.Info)
	if *debug {
		logLevel = int8(logging.Debug)
	}
	sl := smartlogger.New(*logPath, progName)
	sl.SetKeepLogs(true)
	log := logging.New(logLevel, io.MultiWriter(sl, os.Stderr), logSuppress)
	log.Info("starting thermostat", "config", *configPath, "hardware", *useHW)

	s, err := settings.Load(*configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Info("no settings file, using defaults", "path", *configPath)
		err = settings.Save(*configPath, s)
		if err != nil {
			log.Warning("could not save default settings", "error", err)
		}
	case err != nil:
		log.Fatal("could not load settings", "error", err)
	}
	applyHW(&s.Hardware, *hwFlag, log)

	var p plant
	if *useHW {
		p, err = newHardware(s.Hardware, log)
	} else {
		p, err = newRoom(s.Controller.SampleInterval, log)
	}
	if err != nil {
		log.Fatal("could not initialise plant", "error", err)
	}
	defer p.Close()

	t, err := newThermostat(s, *configPath, p, log, time.Now())
	if err != nil {
		log.Fatal("could not initialise thermostat", "error", err)
	}
	t.plotPath = *plotPath

	err = settings.Update(t.c, settings.ParseVars(*varsFlag))
	if err != nil {
		log.Warning("could not apply variables", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	run(ctx, t, sl, log)
	log.Info("thermostat stopped")
}

// varsUsage returns the -vars flag usage, listing the known variables and
// their types.
func varsUsage() string {
	types := settings.Types()
	var b strings.Builder
	b.WriteString("Controller variables applied at start up, e.g. Kp=2.5,Adaptation=false. Known variables:")
	for _, name := range slices.Sorted(maps.Keys(types)) {
		fmt.Fprintf(&b, " %s (%s)", name, types[name])
	}
	return b.String()
}

// applyHW overrides hw with the comma separated key=value pairs in s. Keys are
// valve, period and sensor.
func applyHW(hw *settings.Hardware, s string, l logging.Logger) {
	if s == "" {
		return
	}
	m := filemap.Split(s, ",", "=")
	if v, ok := m["valve"]; ok {
		hw.ValvePin = v
	}
	if v, ok := m["period"]; ok {
		p, err := strconv.Atoi(v)
		if err != nil {
			l.Warning("invalid PWM period", "period", v, "error", err)
		} else {
			hw.ValvePeriod = p
		}
	}
	if v, ok := m["sensor"]; ok {
		hw.Sensor = v
	}
}

// run steps the thermostat every sample interval until ctx is done. SIGHUP
// reloads the settings file.
func run(ctx context.Context, t *thermostat, sl *smartlogger.Smartlogger, l logging.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	interval := func() time.Duration {
		return time.Duration(float64(t.c.Config().SampleInterval) * float64(time.Second))
	}
	ticker := time.NewTicker(interval())
	defer ticker.Stop()
	archive := time.NewTicker(archiveInterval)
	defer archive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			err := t.reload()
			if err != nil {
				l.Warning("could not reload settings", "error", err)
				continue
			}
			ticker.Reset(interval())
		case <-archive.C:
			err := sl.Rotate()
			if err != nil {
				l.Warning("could not rotate log", "error", err)
			}
			err = sl.Archive()
			if err != nil {
				l.Warning("could not archive logs", "error", err)
			}
		case now := <-ticker.C:
			t.step(now)
		}
	}
}
