/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Preview kinds stored in the cache.
const (
	PreviewKindStitches = "stitches"
	PreviewKindSource   = "source"
)

// EnvPreviewsMaxBytes caps the total size of cached previews.
const EnvPreviewsMaxBytes = "SVGSTITCH_PREVIEWS_MAX_BYTES"

// PreviewKey derives a cache key from the source bytes and anything else
// that changes the rendering (options, version).
func PreviewKey(source []byte, parts ...string) string {
	h := sha256.New()
	h.Write(source)
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// GetPreview returns the cached blob for the key or nil, and updates
// last_access.
func (s *Store) GetPreview(ctx context.Context, key, kind string, sizePx int) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM previews WHERE key=? AND kind=? AND size_px=?`, key, kind, sizePx).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query preview: %w", err)
	}
	now := time.Now().UTC().Format(tsLayout)
	_, _ = s.db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE key=? AND kind=? AND size_px=?`, now, key, kind, sizePx)
	return blob, nil
}

// PutPreview upserts a preview blob and enforces the cache size cap via LRU eviction.
func (s *Store) PutPreview(ctx context.Context, key, kind string, sizePx int, blob []byte) error {
	if kind != PreviewKindStitches && kind != PreviewKindSource {
		return fmt.Errorf("invalid kind: %s", kind)
	}
	now := time.Now().UTC().Format(tsLayout)
	_, err := s.db.ExecContext(ctx, `INSERT INTO previews(key, kind, size_px, blob, size, updated_at, last_access)
		VALUES(?,?,?,?,?,?,?)
		ON CONFLICT(key, kind, size_px) DO UPDATE SET blob=excluded.blob, size=excluded.size,
		updated_at=excluded.updated_at, last_access=excluded.last_access`,
		key, kind, sizePx, blob, len(blob), now, now)
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	if capBytes := MaxPreviewsBytesFromEnv(); capBytes > 0 {
		return s.EvictPreviewsToFit(ctx, capBytes)
	}
	return nil
}

// GetOrCreatePreview fetches a preview or generates and stores it using the
// provided generator. The bool reports a cache hit.
func (s *Store) GetOrCreatePreview(ctx context.Context, key, kind string, sizePx int, gen func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	if b, err := s.GetPreview(ctx, key, kind, sizePx); err != nil {
		return nil, false, err
	} else if b != nil {
		return b, true, nil
	}
	if gen == nil {
		return nil, false, nil
	}
	data, err := gen(ctx)
	if err != nil {
		return nil, false, err
	}
	if data == nil {
		return nil, false, nil
	}
	if err := s.PutPreview(ctx, key, kind, sizePx, data); err != nil {
		return nil, false, err
	}
	return data, false, nil
}

// EvictPreviewsToFit deletes least-recently-used rows until total size <= capBytes.
func (s *Store) EvictPreviewsToFit(ctx context.Context, capBytes int64) error {
	total, err := s.TotalPreviewBytes(ctx)
	if err != nil {
		return err
	}
	if total <= capBytes {
		return nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, size FROM previews ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	toDelete := make([]any, 0, 32)
	cur := total
	for rows.Next() {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		toDelete = append(toDelete, id)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// Important: close the rows cursor before attempting to write
	if err := rows.Close(); err != nil {
		return err
	}
	if len(toDelete) == 0 {
		return nil
	}
	q := `DELETE FROM previews WHERE id IN (` + strings.TrimSuffix(strings.Repeat("?,", len(toDelete)), ",") + `)`
	if _, err := s.db.ExecContext(ctx, q, toDelete...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	s.log.Debug("evicted previews", "count", len(toDelete), "cap", capBytes)
	return nil
}

// TotalPreviewBytes returns total bytes tracked by previews.size
func (s *Store) TotalPreviewBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum previews size: %w", err)
	}
	return total, nil
}

// MaxPreviewsBytesFromEnv reads SVGSTITCH_PREVIEWS_MAX_BYTES, defaulting to 64MB if unset.
func MaxPreviewsBytesFromEnv() int64 {
	const def = 64 * 1024 * 1024
	v := os.Getenv(EnvPreviewsMaxBytes)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
