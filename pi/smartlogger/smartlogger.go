/*
DESCRIPTION
  smartlogger.go provides log file rotation with archiving of rotated files.

AUTHORS
  Jack Richardson <richardson.jack@outlook.com>
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

// Package smartlogger provides a rotating log file writer. Rotated files can
// be archived into a backups directory or discarded.
package smartlogger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log rotation limits.
const (
	maxSize    = 500 // Megabytes.
	maxBackups = 10
	maxAge     = 28 // Days.
)

// backupDir is the directory, relative to the log directory, that archived
// logs are moved to.
const backupDir = "backups"

// Smartlogger writes to a rotating log file <path>/<name>.log.
type Smartlogger struct {
	path      string
	name      string
	LogRoller lumberjack.Logger
	keepLogs  bool
}

// New returns a Smartlogger writing to name.log in the directory path.
func New(path, name string) *Smartlogger {
	return &Smartlogger{
		path: path,
		name: name,
		LogRoller: lumberjack.Logger{
			Filename:   filepath.Join(path, name+".log"),
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			MaxAge:     maxAge,
		},
	}
}

// Write implements io.Writer.
func (s *Smartlogger) Write(p []byte) (int, error) {
	return s.LogRoller.Write(p)
}

// Rotate closes the current log file and dates it, followed by opening a new
// log file.
func (s *Smartlogger) Rotate() error {
	return s.LogRoller.Rotate()
}

// SetKeepLogs sets whether Archive keeps rotated logs in the backups directory
// or deletes them.
func (s *Smartlogger) SetKeepLogs(kl bool) {
	s.keepLogs = kl
}

// Archive moves all rotated log files into the backups directory, or deletes
// them if logs are not being kept. The current log file is untouched; call
// Rotate first if the most recent messages are to be archived. Files that
// fail are left in place for the next call.
func (s *Smartlogger) Archive() error {
	logFiles, err := filepath.Glob(filepath.Join(s.path, s.name+"-*.log"))
	if err != nil {
		return fmt.Errorf("can't glob matching log files: %w", err)
	}
	if len(logFiles) == 0 {
		return nil
	}

	backups := filepath.Join(s.path, backupDir)
	if s.keepLogs {
		err = os.MkdirAll(backups, os.ModePerm)
		if err != nil {
			return fmt.Errorf("can't create backup directory: %w", err)
		}
	}

	var errs []error
	for _, ff := range logFiles {
		lf := filepath.Base(ff)
		if !s.keepLogs {
			if err := os.Remove(ff); err != nil {
				errs = append(errs, fmt.Errorf("can't delete log file %s: %w", lf, err))
			}
			continue
		}
		if err := os.Rename(ff, filepath.Join(backups, lf)); err != nil {
			errs = append(errs, fmt.Errorf("can't move log file %s: %w", lf, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes the current log file.
func (s *Smartlogger) Close() error {
	return s.LogRoller.Close()
}
