/*
DESCRIPTION
  thermostat_test.go provides testing of the control loop against a simulated room.

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
	"errors"
	"io/fs"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ausocean/thermostat/pi/pid"
	"github.com/ausocean/thermostat/pi/settings"
	"github.com/ausocean/utils/logging"
)

// testSettings returns default settings with the gains held fixed.
func testSettings() settings.Settings {
	s := settings.Default()
	s.Controller.Adaptation = false
	s.Controller.AutoTune = false
	return s
}

func newTestThermostat(t *testing.T, s settings.Settings, now time.Time) (*thermostat, *room) {
	t.Helper()
	l := (*logging.TestLogger)(t)
	r, err := newRoom(s.Controller.SampleInterval, l)
	if err != nil {
		t.Fatalf("could not create room: %v", err)
	}
	th, err := newThermostat(s, filepath.Join(t.TempDir(), "thermostat.yaml"), r, l, now)
	if err != nil {
		t.Fatalf("could not create thermostat: %v", err)
	}
	return th, r
}

func TestRoom(t *testing.T) {
	r, err := newRoom(1, (*logging.TestLogger)(t))
	if err != nil {
		t.Fatalf("could not create room: %v", err)
	}

	for i := 0; i < 100; i++ {
		r.Temperature()
	}
	if temp, _ := r.Temperature(); temp != simAmbient {
		t.Errorf("closed room drifted. Got: %v, Want: %v", temp, simAmbient)
	}

	if err := r.Set(100); err != nil {
		t.Fatal(err)
	}
	var temp float32
	for i := 0; i < 3000; i++ {
		temp, _ = r.Temperature()
	}
	const want = simAmbient + simGain*100
	if math.Abs(float64(temp-want)) > 0.5 {
		t.Errorf("unexpected open valve temperature. Got: %v, Want: %v", temp, want)
	}
}

func TestClosedLoop(t *testing.T) {
	s := testSettings()
	s.Setpoint = 21
	now := time.Now()
	th, r := newTestThermostat(t, s, now)

	for i := 0; i < 3600; i++ {
		now = now.Add(time.Second)
		th.step(now)
	}

	if math.Abs(float64(r.temp-s.Setpoint)) > 1 {
		t.Errorf("room did not reach setpoint. Got: %v, Want: %v", r.temp, s.Setpoint)
	}
	if pos := r.Position(); pos <= 0 || pos >= 100 {
		t.Errorf("unexpected settled valve position: %v", pos)
	}
	rep := th.c.AnalyzePerformance(1)
	if rep.SteadyStateError > 1 {
		t.Errorf("unexpected steady-state error: %v", rep.SteadyStateError)
	}
}

// brokenSensor is a room whose sensor always fails.
type brokenSensor struct{ *room }

func (brokenSensor) Temperature() (float32, error) {
	return float32(math.NaN()), errors.New("sensor unplugged")
}

func TestStepHoldsOnSensorFailure(t *testing.T) {
	s := testSettings()
	now := time.Now()
	th, r := newTestThermostat(t, s, now)
	if err := r.Set(35); err != nil {
		t.Fatal(err)
	}
	th.p = brokenSensor{r}

	res := th.step(now.Add(time.Second))
	if res.Command != 35 || r.Position() != 35 {
		t.Errorf("valve not held. Command: %v, Position: %v, Want: 35", res.Command, r.Position())
	}
	if th.c.History().Len() != 0 {
		t.Errorf("failed reading recorded in history")
	}
}

func TestPersistRateLimited(t *testing.T) {
	s := testSettings()
	start := time.Now()
	th, _ := newTestThermostat(t, s, start)

	load := func() float32 {
		t.Helper()
		got, err := settings.Load(th.path)
		if err != nil {
			return -1
		}
		return got.Controller.Kp
	}

	if err := th.c.SetKp(3); err != nil {
		t.Fatal(err)
	}
	th.persist(start.Add(time.Minute))
	if kp := load(); kp != -1 {
		t.Errorf("settings saved too soon, kp: %v", kp)
	}
	th.persist(start.Add(saveInterval))
	if kp := load(); kp != 3 {
		t.Errorf("unexpected saved kp. Got: %v, Want: 3", kp)
	}

	if err := th.c.SetKp(4); err != nil {
		t.Fatal(err)
	}
	th.persist(start.Add(saveInterval + time.Minute))
	if kp := load(); kp != 3 {
		t.Errorf("settings saved too soon. Got: %v, Want: 3", kp)
	}
	th.persist(start.Add(2 * saveInterval))
	if kp := load(); kp != 4 {
		t.Errorf("unexpected saved kp. Got: %v, Want: 4", kp)
	}
}

// swingingRoom is a room whose temperature follows a fixed sinusoid, as when
// driven into sustained oscillation.
type swingingRoom struct {
	*room
	n int
}

func (r *swingingRoom) Temperature() (float32, error) {
	temp := float32(20 + 0.125*math.Sin(2*math.Pi*float64(r.n)/60))
	r.n++
	return temp, nil
}

func TestAutoTunedGainsSavedOnlyWhenLoadable(t *testing.T) {
	s := testSettings()
	s.Setpoint = 21
	s.Controller.AutoTune = true
	start := time.Now()
	th, r := newTestThermostat(t, s, start)
	th.p = &swingingRoom{room: r}

	now := start
	for i := 0; i < 300; i++ {
		now = now.Add(time.Second)
		th.step(now)
	}
	if ran, changed := th.c.AutoTuned(); !ran || !changed {
		t.Fatalf("auto-tune did not change gains. ran: %v, changed: %v", ran, changed)
	}
	if kd := th.c.Gains().Kd; kd <= 10 {
		t.Fatalf("expected auto-tuned kd above bounds, got: %v", kd)
	}
	if _, err := settings.Load(th.path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("out of range gains were saved, load error: %v", err)
	}

	// An adaptation pass brings the gains within bounds, after which they
	// are saved and load cleanly.
	th.c.SetAdaptation(true)
	for i := 0; i < 60; i++ {
		now = now.Add(time.Second)
		th.step(now)
	}
	got, err := settings.Load(th.path)
	if err != nil {
		t.Fatalf("could not load saved settings: %v", err)
	}
	if got.Controller.Kd != 10 {
		t.Errorf("unexpected saved kd. Got: %v, Want: 10", got.Controller.Kd)
	}
	c, err := pid.New(pid.DefaultConfig(), 0, (*logging.TestLogger)(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := settings.Apply(c, got); err != nil {
		t.Errorf("could not apply saved settings: %v", err)
	}
}

func TestReload(t *testing.T) {
	s := testSettings()
	th, _ := newTestThermostat(t, s, time.Now())

	want := testSettings()
	want.Setpoint = 23
	want.Controller.Kp = 5
	want.Hardware.ValvePin = "12"
	if err := settings.Save(th.path, want); err != nil {
		t.Fatal(err)
	}
	if err := th.reload(); err != nil {
		t.Fatalf("could not reload: %v", err)
	}
	if th.c.Setpoint() != 23 || th.c.Gains().Kp != 5 {
		t.Errorf("settings not applied. Setpoint: %v, gains: %+v", th.c.Setpoint(), th.c.Gains())
	}
	if th.s.Hardware.ValvePin != s.Hardware.ValvePin {
		t.Errorf("hardware settings changed on reload. Got: %v, Want: %v", th.s.Hardware.ValvePin, s.Hardware.ValvePin)
	}

	th.path = filepath.Join(t.TempDir(), "missing.yaml")
	if err := th.reload(); err == nil {
		t.Error("expected error reloading missing file")
	}
	if th.c.Gains().Kp != 5 {
		t.Errorf("failed reload changed gains: %+v", th.c.Gains())
	}
}

func TestApplyHW(t *testing.T) {
	tests := []struct {
		in   string
		want settings.Hardware
	}{
		{
			in:   "",
			want: settings.Default().Hardware,
		},
		{
			in:   "valve=13,period=20000000,sensor=28-0316a2795aff",
			want: settings.Hardware{ValvePin: "13", ValvePeriod: 20000000, Sensor: "28-0316a2795aff"},
		},
		{
			in:   "period=fast",
			want: settings.Default().Hardware,
		},
	}

	for i, test := range tests {
		hw := settings.Default().Hardware
		applyHW(&hw, test.in, (*logging.TestLogger)(t))
		if hw != test.want {
			t.Errorf("unexpected hardware for test %d.\nGot: %+v\nWant: %+v", i, hw, test.want)
		}
	}
}

func TestVarsUsage(t *testing.T) {
	u := varsUsage()
	for _, want := range []string{"Kp (float)", "Setpoint (float)", "Adaptation (bool)"} {
		if !strings.Contains(u, want) {
			t.Errorf("usage missing %q: %s", want, u)
		}
	}
}
