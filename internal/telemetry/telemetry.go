/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package telemetry sends opt-in anonymous conversion events and crash reports.
// Nothing is sent unless SVGSTITCH_TELEMETRY_OPT_IN is set and an endpoint is configured.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	applog "svgstitch/internal/log"
	"svgstitch/internal/version"
)

const (
	EnvOptIn     = "SVGSTITCH_TELEMETRY_OPT_IN"
	EnvEventsURL = "SVGSTITCH_TELEMETRY_URL"
	EnvCrashURL  = "SVGSTITCH_CRASH_UPLOAD_URL"
	EnvTimeoutMS = "SVGSTITCH_TELEMETRY_TIMEOUT_MS"
)

// Config holds the endpoints. Empty URLs make the matching call a no-op.
type Config struct {
	OptIn     bool
	EventsURL string
	CrashURL  string
	Timeout   time.Duration
}

func FromEnv() Config {
	cfg := Config{
		OptIn:     parseBool(os.Getenv(EnvOptIn)),
		EventsURL: strings.TrimSpace(os.Getenv(EnvEventsURL)),
		CrashURL:  strings.TrimSpace(os.Getenv(EnvCrashURL)),
		Timeout:   1500 * time.Millisecond,
	}
	if ms := strings.TrimSpace(os.Getenv(EnvTimeoutMS)); ms != "" {
		if v, err := time.ParseDuration(ms + "ms"); err == nil && v > 0 {
			cfg.Timeout = v
		}
	}
	return cfg
}

func parseBool(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// Conversion describes one finished conversion. It carries counts only,
// never file names or paths.
type Conversion struct {
	Format   string        `json:"format"`
	Strategy string        `json:"strategy"`
	Shapes   int           `json:"shapes"`
	Stitches int           `json:"stitches"`
	Colors   int           `json:"colors"`
	Duration time.Duration `json:"duration_ns"`
	Failed   bool          `json:"failed"`
}

type envelope struct {
	Name    string `json:"name"`
	TS      string `json:"ts"`
	Version string `json:"version"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
	Data    any    `json:"data,omitempty"`
}

// Client queues events on a bounded channel and posts them from one
// goroutine. Failures are logged at debug level and dropped.
type Client struct {
	cfg     Config
	log     *slog.Logger
	cli     *http.Client
	q       chan envelope
	pending sync.WaitGroup
	once    sync.Once
	done    chan struct{}
}

// New starts a client. Close releases its goroutine.
func New(cfg Config) *Client {
	c := &Client{
		cfg:  cfg,
		log:  applog.WithComponent("telemetry"),
		cli:  &http.Client{Timeout: cfg.Timeout},
		q:    make(chan envelope, 64),
		done: make(chan struct{}),
	}
	go c.loop()
	return c
}

// Enabled reports whether events will be sent.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Event queues a named event. A full queue drops it.
func (c *Client) Event(name string, data any) {
	if !c.Enabled() || name == "" {
		return
	}
	ev := envelope{
		Name:    name,
		TS:      time.Now().UTC().Format(time.RFC3339Nano),
		Version: version.String(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		Data:    data,
	}
	c.pending.Add(1)
	select {
	case c.q <- ev:
	default:
		c.pending.Done()
	}
}

// Converted queues a "conversion" event.
func (c *Client) Converted(cv Conversion) { c.Event("conversion", cv) }

// Flush waits until queued events and uploads are sent or ctx is done.
func (c *Client) Flush(ctx context.Context) {
	if c == nil {
		return
	}
	drained := make(chan struct{})
	go func() {
		c.pending.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
	}
}

// Close stops the sender goroutine. Queued events are discarded.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() { close(c.done) })
}

func (c *Client) loop() {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.q:
			buf, err := json.Marshal(ev)
			if err == nil {
				err = c.post(c.cfg.EventsURL, "application/json", buf)
			}
			if err != nil {
				c.log.Debug("telemetry send failed", slog.String("event", ev.Name), slog.Any("err", err))
			}
			c.pending.Done()
		}
	}
}

func (c *Client) post(url, contentType string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout+time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.cli.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: status %d", url, resp.StatusCode)
	}
	return nil
}

// UploadCrash posts a crash report in the background when opted in.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	c.pending.Add(1)
	go func(b []byte) {
		defer c.pending.Done()
		if err := c.post(c.cfg.CrashURL, "text/plain; charset=utf-8", b); err != nil {
			c.log.Debug("crash upload failed", slog.Any("err", err))
		}
	}(append([]byte(nil), report...))
}

var (
	defaultOnce   sync.Once
	defaultClient *Client
)

// Default returns the process-wide client configured from the environment.
func Default() *Client {
	defaultOnce.Do(func() { defaultClient = New(FromEnv()) })
	return defaultClient
}
