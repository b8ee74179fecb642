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
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// tsLayout has a fixed width so that timestamps sort as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z"

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Conversion is one run of the converter as kept in the history.
type Conversion struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Source    string        `json:"source"`
	Output    string        `json:"output,omitempty"`
	Format    string        `json:"format,omitempty"`
	Strategy  string        `json:"strategy,omitempty"`
	Shapes    int           `json:"shapes"`
	Stitches  int           `json:"stitches"`
	Colors    int           `json:"colors"`
	Width     float64       `json:"width"`
	Height    float64       `json:"height"`
	Status    string        `json:"status"`
	Error     string        `json:"error,omitempty"`
}

// NewConversionID returns a time-ordered identifier for a conversion.
func NewConversionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// language=SQL
// dialect=SQLite
const upsertConversionSQL = `INSERT INTO conversions(id, started_at, duration_ms, source, output, format, strategy,
	shapes, stitches, colors, width, height, status, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET duration_ms=excluded.duration_ms, output=excluded.output,
	format=excluded.format, strategy=excluded.strategy, shapes=excluded.shapes, stitches=excluded.stitches,
	colors=excluded.colors, width=excluded.width, height=excluded.height, status=excluded.status, error=excluded.error`

const conversionColumns = `id, started_at, duration_ms, source, output, format, strategy,
	shapes, stitches, colors, width, height, status, error`

// language=SQL
// dialect=SQLite
const pruneConversionsSQL = `DELETE FROM conversions WHERE id NOT IN (
	SELECT id FROM conversions ORDER BY started_at DESC LIMIT ?
)`

// RecordConversion inserts c, or updates it when the ID is already known.
// An empty ID is filled in.
func (s *Store) RecordConversion(ctx context.Context, c *Conversion) error {
	if c.ID == "" {
		c.ID = NewConversionID()
	}
	if c.StartedAt.IsZero() {
		c.StartedAt = time.Now()
	}
	if c.Status == "" {
		c.Status = StatusOK
	}
	_, err := s.db.ExecContext(ctx, upsertConversionSQL,
		c.ID, c.StartedAt.UTC().Format(tsLayout), c.Duration.Milliseconds(), c.Source,
		c.Output, c.Format, c.Strategy, c.Shapes, c.Stitches, c.Colors, c.Width, c.Height,
		c.Status, c.Error)
	if err != nil {
		return fmt.Errorf("record conversion: %w", err)
	}
	return nil
}

// GetConversion returns the conversion with the given ID or ErrNotFound.
func (s *Store) GetConversion(ctx context.Context, id string) (Conversion, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+conversionColumns+` FROM conversions WHERE id=?`, id)
	c, err := scanConversion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Conversion{}, fmt.Errorf("conversion %s: %w", id, ErrNotFound)
	}
	return c, err
}

// RecentConversions lists the newest conversions first. A non-empty source
// restricts the list to one input file.
func (s *Store) RecentConversions(ctx context.Context, source string, limit int) ([]Conversion, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT ` + conversionColumns + ` FROM conversions`
	args := []any{}
	if source != "" {
		q += ` WHERE source=?`
		args = append(args, source)
	}
	q += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Conversion
	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// PruneConversions keeps only the newest keepLast rows and returns how many
// were deleted.
func (s *Store) PruneConversions(ctx context.Context, keepLast int) (int64, error) {
	if keepLast < 0 {
		keepLast = 0
	}
	res, err := s.db.ExecContext(ctx, pruneConversionsSQL, keepLast)
	if err != nil {
		return 0, fmt.Errorf("prune conversions: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversion(r scanner) (Conversion, error) {
	var (
		c              Conversion
		started        string
		ms             int64
		output, format sql.NullString
		strategy, msg  sql.NullString
	)
	if err := r.Scan(&c.ID, &started, &ms, &c.Source, &output, &format, &strategy,
		&c.Shapes, &c.Stitches, &c.Colors, &c.Width, &c.Height, &c.Status, &msg); err != nil {
		return c, err
	}
	t, err := time.Parse(tsLayout, started)
	if err != nil {
		return c, fmt.Errorf("parse started_at %q: %w", started, err)
	}
	c.StartedAt = t
	c.Duration = time.Duration(ms) * time.Millisecond
	c.Output, c.Format, c.Strategy, c.Error = output.String, format.String, strategy.String, msg.String
	return c, nil
}
