// Package scan reads decoded QR payloads from an external decoder.
//
// Capturing frames and decoding QR codes is left to a separate program, such
// as `zbarcam --raw /dev/video0`, whose text output is fed to a LineSource.
package scan

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	DefaultRetries  = 100
	DefaultInterval = 200 * time.Millisecond
)

// zbarPrefix is the symbology prefix zbar tools print without --raw.
const zbarPrefix = "QR-Code:"

// ErrNoPayload is returned when no payload was decoded before the retries ran
// out or the source ended.
var ErrNoPayload = errors.New("no payload decoded")

// Source produces batches of decoded QR payloads.
type Source interface {
	// Decode returns the payloads of one scan cycle. An empty batch means
	// nothing was decoded yet. io.EOF means the source has ended.
	Decode() ([]string, error)
}

type line struct {
	text string
	err  error
}

// LineSource reads payloads from text, one per line. A batch ends at a blank
// line, at the end of the input, or when no line arrives within Timeout.
type LineSource struct {
	// Timeout is how long Decode waits for the next line. An empty batch is
	// returned when nothing arrives in time. Zero waits forever.
	Timeout time.Duration

	lines  chan line
	quit   chan struct{}
	once   sync.Once
	closer io.Closer
	err    error
}

// NewLineSource creates a LineSource reading from r. Lines are read in the
// background until r ends or the source is closed.
func NewLineSource(r io.Reader) *LineSource {
	s := &LineSource{
		Timeout: DefaultInterval,
		lines:   make(chan line),
		quit:    make(chan struct{}),
	}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	go s.read(r)
	return s
}

// Open creates a LineSource for a file, FIFO or character device path. "-"
// reads from stdin.
func Open(path string) (*LineSource, error) {
	if path == "-" {
		s := NewLineSource(os.Stdin)
		s.closer = nil
		return s, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return NewLineSource(f), nil
}

func (s *LineSource) read(r io.Reader) {
	defer close(s.lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case s.lines <- line{text: scanner.Text()}:
		case <-s.quit:
			return
		}
	}
	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	select {
	case s.lines <- line{err: err}:
	case <-s.quit:
	}
}

// next waits for the next line. timedOut is set when Timeout passed first.
func (s *LineSource) next() (l line, timedOut bool) {
	var ok bool
	if s.Timeout <= 0 {
		l, ok = <-s.lines
	} else {
		timer := time.NewTimer(s.Timeout)
		defer timer.Stop()
		select {
		case l, ok = <-s.lines:
		case <-timer.C:
			return line{}, true
		}
	}
	if !ok {
		// The reader stopped after Close.
		l.err = io.EOF
	}
	return l, false
}

// Decode reads the next batch. It returns an empty batch if no line arrived
// within Timeout, and io.EOF once the input has ended.
func (s *LineSource) Decode() ([]string, error) {
	select {
	case <-s.quit:
		s.err = io.EOF
	default:
	}
	if s.err != nil {
		return nil, s.err
	}

	var batch []string
	for {
		l, timedOut := s.next()
		if timedOut {
			return batch, nil
		}
		if l.err != nil {
			s.err = l.err
			if len(batch) > 0 && errors.Is(l.err, io.EOF) {
				return batch, nil
			}
			return batch, l.err
		}

		// Trailing spaces can be part of the passphrase.
		text := strings.TrimLeft(strings.TrimSuffix(l.text, "\r"), " \t")
		if strings.TrimSpace(text) == "" {
			if len(batch) > 0 {
				return batch, nil
			}
			continue
		}
		batch = append(batch, strings.TrimPrefix(text, zbarPrefix))
	}
}

// Close stops the background reader and closes the underlying reader, if it
// can be closed.
func (s *LineSource) Close() error {
	s.once.Do(func() { close(s.quit) })
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Scanner polls a Source until it yields payloads.
type Scanner struct {
	Source   Source
	Retries  int
	Interval time.Duration
	Logger   *slog.Logger
}

// Scan returns the first non-empty batch. It makes at most Retries attempts,
// sleeping Interval between empty ones.
func (s *Scanner) Scan(ctx context.Context) ([]string, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	retries := s.Retries
	if retries <= 0 {
		retries = 1
	}

	for attempt := 1; attempt <= retries; attempt++ {
		batch, err := s.Source.Decode()
		if len(batch) > 0 {
			if err != nil && !errors.Is(err, io.EOF) {
				logger.Warn("partial batch read", "error", err)
			}
			return batch, nil
		}
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("source ended after %d attempts: %w", attempt, ErrNoPayload)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode: %w", err)
		}
		logger.Debug("nothing decoded", "attempt", attempt)

		if attempt == retries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.Interval):
		}
	}
	return nil, fmt.Errorf("exceeded %d attempts: %w", retries, ErrNoPayload)
}
