// Package buildlog delivers add-to-build payloads to observable sinks.
package buildlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"doorsmith/internal/config"
	"doorsmith/internal/customize"
	"doorsmith/internal/logging"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sink receives build payloads.
type Sink interface {
	Emit(ctx context.Context, p customize.Payload) error
}

// LogSink writes each payload as one structured log entry.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink. A nil logger discards entries.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(_ context.Context, p customize.Payload) error {
	s.logger.Info("Add to Build payload",
		zap.String("build_id", p.BuildID),
		zap.Int("id", p.ID),
		zap.String("title", p.Title),
		zap.Float64("basePrice", p.BasePrice),
		zap.String("imageUrl", p.ImageURL),
		zap.Time("timestamp", p.Timestamp),
		zap.Any("dimensions", p.Dimensions),
		zap.String("material", p.Material),
		zap.String("color", p.Color),
		zap.Strings("hardware", p.Hardware),
		zap.String("summary", p.Summary),
	)
	return nil
}

// FileSink appends each payload as one JSON line. Nothing reads the file
// back; it is an event log for other tools to tail.
type FileSink struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// NewFileSink creates a sink for path. The file is opened on first Emit.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Emit(_ context.Context, p customize.Payload) error {
	line, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode build payload: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
			return fmt.Errorf("failed to create build log directory: %w", err)
		}
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open build log: %w", err)
		}
		s.f = f
	}
	if _, err := s.f.Write(line); err != nil {
		return fmt.Errorf("failed to write build log: %w", err)
	}
	return nil
}

// Close closes the underlying file if it was opened.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

// Multi emits to every sink concurrently and joins their errors.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, p customize.Payload) error {
	errs := make([]error, len(m))
	var g errgroup.Group
	for i, sink := range m {
		g.Go(func() error {
			errs[i] = sink.Emit(ctx, p)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Sinks is the configured sink set for a session.
type Sinks struct {
	Multi
	Bus  *Bus
	file *FileSink
}

// Open builds the sink set from config: the log sink always, the bus always,
// and the file sink when a log file is configured.
func Open(cfg config.BuildConfig, logger *zap.Logger) *Sinks {
	s := &Sinks{Bus: NewBus(cfg.BusBuffer)}
	s.Multi = Multi{NewLogSink(logger), s.Bus}
	if cfg.LogFile != "" {
		s.file = NewFileSink(cfg.LogFile)
		s.Multi = append(s.Multi, s.file)
		logging.Build("Build payloads also appended to %s", cfg.LogFile)
	}
	return s
}

// Emit sends p to every sink, logging failures to the build category.
func (s *Sinks) Emit(ctx context.Context, p customize.Payload) error {
	err := s.Multi.Emit(ctx, p)
	if err != nil {
		logging.BuildError("Emitting build %s failed: %v", p.BuildID, err)
	} else {
		logging.Build("Emitted build %s for product #%d", p.BuildID, p.ID)
	}
	return err
}

// Close stops the bus and closes the file sink.
func (s *Sinks) Close() error {
	s.Bus.Close()
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
