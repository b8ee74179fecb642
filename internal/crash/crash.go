/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic in the CLI into a report file and exit code 2.
package crash

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	applog "svgstitch/internal/log"
	"svgstitch/internal/telemetry"
	"svgstitch/internal/version"
)

// ReportsDirName is the subdirectory of the data directory holding crash reports.
const ReportsDirName = "crash-reports"

// exitFn is replaced in tests.
var exitFn = os.Exit

// Recover captures a panic, logs it with its stack, writes a report under
// the directory returned by dataDir (the temp dir when nil or empty) and
// exits with code 2. args are the command line that was running. dataDir is
// resolved only after a panic, so it may depend on configuration loaded later.
//
// Usage: defer crash.Recover(dirFn, os.Args)
func Recover(dataDir func() string, args []string) {
	r := recover()
	if r == nil {
		return
	}
	dir := ""
	if dataDir != nil {
		dir = dataDir()
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	path, report, err := writeReport(dir, args, r, stack)
	if err != nil {
		l.Error("crash report not written", slog.Any("err", err))
	}
	if client := telemetry.Default(); client != nil {
		client.UploadCrash(report)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		client.Flush(ctx)
		cancel()
	}

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", path)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

func writeReport(dataDir string, args []string, panicVal any, stack []byte) (string, []byte, error) {
	dir := os.TempDir()
	if dataDir != "" {
		dir = filepath.Join(dataDir, ReportsDirName)
	}
	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "svgstitch crash report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if len(args) > 0 {
		_, _ = fmt.Fprintf(&buf, "Command: %s\n", strings.Join(args, " "))
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", stack)

	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405.000")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, buf.Bytes(), err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, buf.Bytes(), err
	}
	return path, buf.Bytes(), nil
}
