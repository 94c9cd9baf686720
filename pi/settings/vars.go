/*
DESCRIPTION
  vars.go provides updating of a controller from key=value variables.

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

package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ausocean/utils/filemap"

	"github.com/ausocean/thermostat/pi/pid"
)

// Variables that may be used to tune a running controller.
var variables = []struct {
	name   string
	typ    string
	update func(c *pid.Controller, v string) error
}{
	{
		name:   "Kp",
		typ:    "float",
		update: floatVar("Kp", func(c *pid.Controller, f float32) error { return c.SetKp(f) }),
	},
	{
		name:   "Ki",
		typ:    "float",
		update: floatVar("Ki", func(c *pid.Controller, f float32) error { return c.SetKi(f) }),
	},
	{
		name:   "Kd",
		typ:    "float",
		update: floatVar("Kd", func(c *pid.Controller, f float32) error { return c.SetKd(f) }),
	},
	{
		name: "Setpoint",
		typ:  "float",
		update: floatVar("Setpoint", func(c *pid.Controller, f float32) error {
			c.SetSetpoint(f)
			return nil
		}),
	},
	{
		name:   "Deadband",
		typ:    "float",
		update: floatVar("Deadband", func(c *pid.Controller, f float32) error { return c.SetDeadband(f) }),
	},
	{
		name:   "AdaptationRate",
		typ:    "float",
		update: floatVar("AdaptationRate", func(c *pid.Controller, f float32) error { return c.SetAdaptationRate(f) }),
	},
	{
		name: "Adaptation",
		typ:  "bool",
		update: func(c *pid.Controller, v string) error {
			switch strings.ToLower(v) {
			case "true":
				c.SetAdaptation(true)
			case "false":
				c.SetAdaptation(false)
			default:
				return fmt.Errorf("invalid Adaptation value: %s", v)
			}
			return nil
		},
	},
}

func floatVar(name string, set func(*pid.Controller, float32) error) func(*pid.Controller, string) error {
	return func(c *pid.Controller, v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
		if err != nil {
			return fmt.Errorf("could not convert %s variable value to float: %w", name, err)
		}
		if err := set(c, float32(f)); err != nil {
			return fmt.Errorf("could not set %s: %w", name, err)
		}
		return nil
	}
}

// Types returns the variable names understood by Update mapped to their type.
func Types() map[string]string {
	m := make(map[string]string, len(variables))
	for _, v := range variables {
		m[v.name] = v.typ
	}
	return m
}

// ParseVars parses a comma separated list of name=value pairs, e.g.
// "Kp=2.5,Adaptation=false".
func ParseVars(s string) map[string]string {
	if strings.TrimSpace(s) == "" {
		return map[string]string{}
	}
	return filemap.Split(s, ",", "=")
}

// Update applies the known variables in vars to c. Every variable is tried;
// the returned error joins all failures. Rejected values leave the controller
// unchanged. Unknown names are ignored.
func Update(c *pid.Controller, vars map[string]string) error {
	var errs []error
	for _, v := range variables {
		value, ok := vars[v.name]
		if !ok {
			continue
		}
		if err := v.update(c, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
