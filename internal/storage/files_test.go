/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"svgstitch/internal/domain"
	"svgstitch/internal/vector"
)

func TestWriteFileAtomic_BackupAndLatest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "out.dst")
	if err := WriteFileAtomic(path, []byte("v1"), true); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := LatestBackup(path); err == nil {
		t.Fatalf("expected no backup after first write")
	}
	if err := WriteFileAtomic(path, []byte("v2"), true); err != nil {
		t.Fatalf("second write: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "v2" {
		t.Fatalf("content = %q", got)
	}
	bpath, err := LatestBackup(path)
	if err != nil {
		t.Fatalf("latest backup: %v", err)
	}
	old, _ := os.ReadFile(bpath)
	if string(old) != "v1" {
		t.Fatalf("backup content = %q", old)
	}
	// no temp files left behind
	ents, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range ents {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left: %s", e.Name())
		}
	}
	if err := WriteFileAtomic("  ", nil, false); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestManifestRecoversFromBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "design.json")
	var p vector.Path
	p.AddRect(0, 0, 10, 10, 0, 0)
	d := &domain.Design{Name: "box", Shapes: []domain.Shape{{ID: "r", Path: p,
		Attributes: domain.Attributes{Fill: domain.NewPaint("red", nil)}}}}

	if err := SaveManifest(path, d); err != nil {
		t.Fatalf("save: %v", err)
	}
	d.Name = "box v2"
	if err := SaveManifest(path, d); err != nil {
		t.Fatalf("save again: %v", err)
	}
	got, err := OpenManifest(path, nil)
	if err != nil || got.Name != "box v2" {
		t.Fatalf("open: %v %+v", err, got)
	}

	if err := os.WriteFile(path, []byte(`{"shapes":[{"d":""}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = OpenManifest(path, nil)
	if err != nil {
		t.Fatalf("open with backup: %v", err)
	}
	if got.Name != "box" || len(got.Shapes) != 1 || got.Width != 10 {
		t.Fatalf("recovered = %+v", got)
	}
}
