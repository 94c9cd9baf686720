/*
DESCRIPTION
  smartlogger_test.go provides testing of functionality in smartlogger.go.

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

package smartlogger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/andreyvit/diff"
)

const name = "thermostat"

// writeTo writes n numbered lines with the given prefix and returns them.
func writeTo(t *testing.T, sl *Smartlogger, prefix string, n int) string {
	var want strings.Builder
	for i := 0; i < n; i++ {
		line := fmt.Sprintf("%s log %d\n", prefix, i)
		if _, err := sl.Write([]byte(line)); err != nil {
			t.Fatalf("could not write log: %v", err)
		}
		want.WriteString(line)
	}
	return want.String()
}

// rotate rotates the log, waiting long enough for lumberjack to give the
// rotated file a distinct timestamp.
func rotate(t *testing.T, sl *Smartlogger) {
	if err := sl.Rotate(); err != nil {
		t.Fatalf("could not rotate log: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
}

// readAll returns the concatenated contents of the files matching pattern,
// in name order.
func readAll(t *testing.T, pattern string) string {
	files, err := filepath.Glob(pattern)
	if err != nil {
		t.Fatalf("can't glob matching log files: %v", err)
	}
	sort.Strings(files)
	var res strings.Builder
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("can't read log file %s: %v", f, err)
		}
		res.Write(b)
	}
	return res.String()
}

func TestArchiveKeepLogs(t *testing.T) {
	dir := t.TempDir()
	sl := New(dir, name)
	defer sl.Close()
	sl.SetKeepLogs(true)

	want := writeTo(t, sl, "first", 5)
	time.Sleep(10 * time.Millisecond)
	rotate(t, sl)
	want += writeTo(t, sl, "second", 5)
	rotate(t, sl)
	current := writeTo(t, sl, "current", 3)

	if err := sl.Archive(); err != nil {
		t.Fatalf("could not archive logs: %v", err)
	}

	got := readAll(t, filepath.Join(dir, backupDir, name+"-*.log"))
	if got != want {
		t.Errorf("archived logs not as expected:\n%v", diff.LineDiff(want, got))
	}
	if left := readAll(t, filepath.Join(dir, name+"-*.log")); left != "" {
		t.Errorf("rotated logs left after archive:\n%v", left)
	}
	if got := readAll(t, filepath.Join(dir, name+".log")); got != current {
		t.Errorf("current log not as expected:\n%v", diff.LineDiff(current, got))
	}
}

func TestArchiveDiscard(t *testing.T) {
	dir := t.TempDir()
	sl := New(dir, name)
	defer sl.Close()

	writeTo(t, sl, "old", 5)
	time.Sleep(10 * time.Millisecond)
	rotate(t, sl)
	writeTo(t, sl, "new", 1)

	if err := sl.Archive(); err != nil {
		t.Fatalf("could not archive logs: %v", err)
	}
	files, err := filepath.Glob(filepath.Join(dir, name+"-*.log"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("rotated logs not deleted: %v", files)
	}
	if _, err := os.Stat(filepath.Join(dir, backupDir)); !os.IsNotExist(err) {
		t.Errorf("unexpected backup directory, stat error: %v", err)
	}

	// Nothing to do is not an error.
	if err := sl.Archive(); err != nil {
		t.Errorf("unexpected error archiving no logs: %v", err)
	}
}
