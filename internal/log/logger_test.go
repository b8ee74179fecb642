/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// resetDefault points the global logger at a discarded buffer once the test ends.
func resetDefault(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { Init(Options{Level: "info", Output: &bytes.Buffer{}}) })
}

func lastJSON(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var last string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines in %q", data)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", last, err)
	}
	return m
}

func TestFromEnv_ReadsSvgstitchVariables(t *testing.T) {
	file := filepath.Join(t.TempDir(), "svgstitch.log")
	t.Setenv(EnvLevel, "debug")
	t.Setenv(EnvFormat, "json")
	t.Setenv(EnvSource, "TRUE")
	t.Setenv(EnvFile, file)

	opts := FromEnv()
	if opts.Level != "debug" || opts.Format != "json" || !opts.AddSource || opts.File != file {
		t.Fatalf("FromEnv = %+v", opts)
	}
	if opts.Output != nil {
		t.Fatalf("env never picks a console writer")
	}

	for _, k := range []string{EnvLevel, EnvFormat, EnvSource, EnvFile} {
		if !strings.HasPrefix(k, "SVGSTITCH_LOG_") {
			t.Fatalf("%s is outside the SVGSTITCH_LOG_ namespace", k)
		}
		t.Setenv(k, "")
	}
	if def := FromEnv(); def.Level != "info" || def.Format != "console" || def.AddSource || def.File != "" {
		t.Fatalf("defaults = %+v", def)
	}
}

func TestInit_JobReachesConsoleAndFile(t *testing.T) {
	resetDefault(t)
	file := filepath.Join(t.TempDir(), "convert.log")
	var console bytes.Buffer
	Init(Options{Level: "info", Format: "json", File: file, Output: &console})

	ctx := WithJob(context.Background(), "c0ffee")
	WithOperation(WithComponent("export"), "write").InfoContext(ctx, "wrote output", slog.String("format", "pes"))
	WithComponent("export").DebugContext(ctx, "below the configured level")

	onConsole := lastJSON(t, console.Bytes())
	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read rotated log: %v", err)
	}
	inFile := lastJSON(t, b)

	for name, m := range map[string]map[string]any{"console": onConsole, "file": inFile} {
		if m["job"] != "c0ffee" || m["component"] != "export" || m["op"] != "write" || m["format"] != "pes" {
			t.Fatalf("%s record = %v", name, m)
		}
		if m["app"] != "svgstitch" || m["msg"] != "wrote output" {
			t.Fatalf("%s static attrs = %v", name, m)
		}
		if _, ok := m["ver"].(string); !ok {
			t.Fatalf("%s record lacks ver", name)
		}
	}
	if strings.Contains(console.String(), "below the configured level") {
		t.Fatalf("debug record leaked at info level")
	}
}

func TestInit_ConsoleWritesPrettyLines(t *testing.T) {
	resetDefault(t)
	var console bytes.Buffer
	Init(Options{Level: "warn", Output: &console})

	ctx := WithJob(context.Background(), "j1")
	L().InfoContext(ctx, "dropped")
	L().WarnContext(ctx, "raster capped", slog.Int("side", 8192))

	out := console.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info passed a warn logger: %q", out)
	}
	for _, want := range []string{" WRN raster capped", "app=svgstitch", "side=8192", "job=j1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("console output missing %q: %q", want, out)
		}
	}
	if slog.Default() != L() {
		t.Fatalf("Init should install the logger as slog default")
	}
}

func TestJobFrom(t *testing.T) {
	if _, ok := JobFrom(nil); ok {
		t.Fatalf("nil context carries no job")
	}
	if _, ok := JobFrom(WithJob(context.Background(), "")); ok {
		t.Fatalf("empty id is not a job")
	}
	if id, ok := JobFrom(WithJob(context.Background(), "42")); !ok || id != "42" {
		t.Fatalf("JobFrom = %q, %v", id, ok)
	}
}
