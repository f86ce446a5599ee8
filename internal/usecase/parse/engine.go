// Package parse turns DJNML markup into entity.Document values.
//
// Extraction runs as a fixed sequence of isolated steps. A step that cannot
// read its section is recorded as a field miss and leaves its fields unset;
// the remaining steps still run. The only fatal outcomes are a missing input
// file, input that is not markup at all, and a coding symbol the registry
// does not know.
package parse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"djnml-feed/internal/domain/codes"
	"djnml-feed/internal/domain/entity"
	"djnml-feed/internal/observability/tracing"
)

// Engine parses DJNML documents. It holds no per-parse state and is safe
// for concurrent use.
type Engine struct {
	trees    TreeParser
	langs    LanguageDetector
	times    TimeParser
	registry *codes.Registry
	metrics  MetricsRecorder
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguageDetector enables language identification of the body text.
func WithLanguageDetector(d LanguageDetector) Option {
	return func(e *Engine) { e.langs = d }
}

// WithMetrics replaces the default Prometheus recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets the logger used for field misses. Without it the logger
// carried by the parse context is used, see logging.WithLogger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine wires an engine. A nil registry means codes.Default().
func NewEngine(trees TreeParser, times TimeParser, registry *codes.Registry, opts ...Option) *Engine {
	if registry == nil {
		registry = codes.Default()
	}
	e := &Engine{
		trees:    trees,
		times:    times,
		registry: registry,
		metrics:  PrometheusMetrics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Report is a parsed document together with the steps that yielded nothing.
type Report struct {
	Document *entity.Document
	Misses   []*FieldMissError
}

// Parse reads one document from r.
func (e *Engine) Parse(ctx context.Context, r io.Reader) (*entity.Document, error) {
	rep, err := e.ParseReport(ctx, r)
	if err != nil {
		return nil, err
	}
	return rep.Document, nil
}

// ParseReport is Parse that also returns the recorded field misses.
func (e *Engine) ParseReport(ctx context.Context, r io.Reader) (rep *Report, err error) {
	ctx, span := tracing.StartSpan(ctx, "djnml.parse")
	start := time.Now()
	defer func() {
		status := StatusSuccess
		switch {
		case errors.Is(err, codes.ErrInvalidCode):
			status = StatusInvalidCode
			e.metrics.RecordInvalidCode()
		case err != nil:
			status = StatusMalformed
		}
		e.metrics.RecordParse(status, time.Since(start))
		if rep != nil {
			span.SetAttributes(attribute.Int("djnml.field_misses", len(rep.Misses)))
		}
		tracing.EndSpan(span, err)
	}()

	root, err := e.trees.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	x := &extraction{ctx: ctx, engine: e, root: root}
	doc, err := x.document()
	if err != nil {
		return nil, err
	}
	return &Report{Document: doc, Misses: x.misses}, nil
}

// LoadFile opens and parses path. A missing path yields entity.ErrNotFound.
func (e *Engine) LoadFile(ctx context.Context, path string) (*entity.Document, error) {
	rep, err := e.LoadFileReport(ctx, path)
	if err != nil {
		return nil, err
	}
	return rep.Document, nil
}

// LoadFileReport is LoadFile that also returns the recorded field misses.
func (e *Engine) LoadFileReport(ctx context.Context, path string) (*Report, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e.metrics.RecordParse(StatusNotFound, 0)
			return nil, fmt.Errorf("%s: %w", path, entity.ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	rep, err := e.ParseReport(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rep, nil
}

// Registry returns the registry codes are resolved against.
func (e *Engine) Registry() *codes.Registry { return e.registry }
