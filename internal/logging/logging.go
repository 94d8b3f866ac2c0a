// Package logging wires up zerolog and keeps a ring buffer of recent
// log lines for the /api/logs endpoint, replacing the queue/log_store
// pair the original controller used.
package logging

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Severity mirrors the donor diagnostics vocabulary. Nothing in this
// package tags ring-buffer lines with it; each line carries zerolog's
// own level field.
type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// RingBuffer retains the last Max log lines for text/plain retrieval.
type RingBuffer struct {
	mu  sync.Mutex
	max int
	buf []string
}

func NewRingBuffer(max int) *RingBuffer {
	if max <= 0 {
		max = 5000
	}
	return &RingBuffer{max: max}
}

func (r *RingBuffer) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	line := strings.TrimRight(string(p), "\n")
	r.buf = append(r.buf, line)
	if len(r.buf) > r.max {
		r.buf = r.buf[len(r.buf)-r.max:]
	}
	return len(p), nil
}

func (r *RingBuffer) Dump() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.buf, "\n")
}

// Setup configures the global zerolog logger with a console writer and
// a ring buffer tee, returning the ring buffer for the HTTP surface.
func Setup(level string, ringMax int) *RingBuffer {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	ring := NewRingBuffer(ringMax)
	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	multi := zerolog.MultiLevelWriter(console, ring)
	log.Logger = zerolog.New(multi).With().Timestamp().Logger().Level(lvl)
	return ring
}
