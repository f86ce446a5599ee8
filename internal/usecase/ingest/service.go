package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"djnml-feed/internal/domain/entity"
	"djnml-feed/internal/observability/logging"
	"djnml-feed/internal/observability/metrics"
	"djnml-feed/internal/observability/tracing"
	"djnml-feed/internal/repository"
	"djnml-feed/internal/usecase/parse"
)

const defaultParallelism = 4

// Config controls parallelism and where handled files are moved.
type Config struct {
	// Parallelism bounds concurrent parses. Actions are applied in input order.
	Parallelism int
	// ArchiveDir receives files that were applied. Empty leaves them in place.
	ArchiveDir string
	// FailedDir receives files that could not be parsed or stored.
	FailedDir string
}

// Service runs ingest over NML files.
type Service struct {
	parser  Parser
	stories repository.StoryRepository
	events  EventPublisher
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires an ingest service. A nil events publisher disables
// change events.
func NewService(parser Parser, stories repository.StoryRepository, events EventPublisher, cfg Config, logger *slog.Logger) *Service {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = defaultParallelism
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		parser:  parser,
		stories: stories,
		events:  events,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// IngestStats contains statistics about an ingest run.
type IngestStats struct {
	RunID    string
	Files    int
	Parsed   int64
	Failed   int64
	Stored   int64
	Deleted  int64
	Modified int64
	// Skipped counts deletes and patches whose story is not stored.
	Skipped int64

	// Published and Unpublished count change events by delivery outcome.
	Published   int64
	Unpublished int64

	Duration time.Duration
}

// FileResult is the outcome of one file.
type FileResult struct {
	Path string
	Err  error
}

type parsed struct {
	report *parse.Report
	err    error
}

// IngestFiles parses paths concurrently and applies the documents in input
// order. Files that fail are counted and reported, the run continues. Only
// context cancellation aborts the run.
func (s *Service) IngestFiles(ctx context.Context, paths []string) (*IngestStats, error) {
	stats, _, err := s.ingest(ctx, paths)
	return stats, err
}

// IngestDir ingests every *.nml file in dir in name order, then moves each
// file to ArchiveDir or FailedDir when those are configured.
func (s *Service) IngestDir(ctx context.Context, dir string) (*IngestStats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read inbox %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".nml") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	stats, results, err := s.ingest(ctx, paths)
	if err != nil {
		return stats, err
	}

	for _, r := range results {
		target := s.cfg.ArchiveDir
		if r.Err != nil {
			target = s.cfg.FailedDir
		}
		if target == "" {
			continue
		}
		if err := moveInto(r.Path, target); err != nil {
			s.logger.WarnContext(ctx, "failed to move handled file",
				slog.String("path", r.Path),
				slog.String("target", target),
				slog.Any("error", err))
		}
	}
	return stats, nil
}

func (s *Service) ingest(ctx context.Context, paths []string) (*IngestStats, []FileResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithRunIDField(ctx, s.logger)
	ctx = logging.WithLogger(ctx, logger)
	stats := &IngestStats{RunID: runID, Files: len(paths)}

	docs := make([]parsed, len(paths))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.cfg.Parallelism)
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			fileCtx, span := tracing.StartSpan(egCtx, "djnml.ingest.file")
			span.SetAttributes(attribute.String("djnml.path", path))
			rep, err := s.parser.LoadFileReport(fileCtx, path)
			tracing.EndSpan(span, err)

			if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
				return err
			}
			docs[i] = parsed{report: rep, err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return stats, nil, fmt.Errorf("ingest aborted: %w", err)
	}

	results := make([]FileResult, len(paths))
	for i, path := range paths {
		results[i] = FileResult{Path: path}
		if err := docs[i].err; err != nil {
			stats.Failed++
			metrics.RecordIngestFile(false)
			results[i].Err = fmt.Errorf("%w: %w", ErrParseFailed, err)
			logger.WarnContext(ctx, "failed to parse file",
				slog.String("path", path),
				slog.Any("error", err))
			continue
		}

		stats.Parsed++
		metrics.RecordIngestFile(true)
		rep := docs[i].report
		if len(rep.Misses) > 0 {
			logger.DebugContext(ctx, "document parsed with field misses",
				slog.String("path", path),
				slog.Int("misses", len(rep.Misses)))
		}

		if err := s.apply(ctx, runID, rep.Document, stats); err != nil {
			if ctx.Err() != nil {
				return stats, results, fmt.Errorf("ingest aborted: %w", ctx.Err())
			}
			stats.Failed++
			results[i].Err = err
			logger.ErrorContext(ctx, "failed to apply document",
				slog.String("path", path),
				slog.Any("error", err))
		}
	}

	stats.Duration = time.Since(start)
	metrics.RecordIngestRun(stats.Duration)
	logger.InfoContext(ctx, "ingest run completed",
		slog.Int("files", stats.Files),
		slog.Int64("parsed", stats.Parsed),
		slog.Int64("failed", stats.Failed),
		slog.Int64("stored", stats.Stored),
		slog.Int64("deleted", stats.Deleted),
		slog.Int64("modified", stats.Modified),
		slog.Int64("skipped", stats.Skipped),
		slog.Duration("duration", stats.Duration),
	)
	return stats, results, nil
}

// apply stores one document's actions and publishes their events. When a
// later action fails, the events of the actions already stored are still
// published.
func (s *Service) apply(ctx context.Context, runID string, doc *entity.Document, stats *IngestStats) (err error) {
	ctx, span := tracing.StartSpan(ctx, "djnml.ingest.apply")
	defer func() { tracing.EndSpan(span, err) }()

	logger := logging.WithRunIDField(ctx, s.logger)
	var events []Event
	defer func() {
		span.SetAttributes(attribute.Int("djnml.events", len(events)))
		s.publish(ctx, events, stats)
	}()

	if doc.HasContent() {
		key, err := doc.Key()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStoreFailed, err)
		}
		if err := s.stories.Upsert(ctx, doc); err != nil {
			return fmt.Errorf("%w: upsert %s: %w", ErrStoreFailed, key, err)
		}
		stats.Stored++
		metrics.RecordIngestAction(string(ActionUpsert))

		ev := newEvent(runID, ActionUpsert, key, s.now())
		ev.Headline = doc.Headline
		urgency := doc.Urgency
		ev.Urgency = &urgency
		events = append(events, ev)
	}

	for _, notice := range doc.Deletes {
		key, err := notice.Key()
		if err != nil {
			logger.WarnContext(ctx, "skipping delete notice without a complete key", slog.Any("error", err))
			stats.Skipped++
			continue
		}
		removed, err := s.stories.Delete(ctx, key)
		if err != nil {
			return fmt.Errorf("%w: delete %s: %w", ErrStoreFailed, key, err)
		}
		if !removed {
			stats.Skipped++
			continue
		}
		stats.Deleted++
		metrics.RecordIngestAction(string(ActionDelete))

		ev := newEvent(runID, ActionDelete, key, s.now())
		ev.Reason = notice.Reason
		events = append(events, ev)
	}

	for _, mod := range doc.Modifications {
		key, err := mod.Key()
		if err != nil {
			logger.WarnContext(ctx, "skipping modification without a complete key", slog.Any("error", err))
			stats.Skipped++
			continue
		}
		applied, err := s.stories.ApplyModification(ctx, key, mod)
		if err != nil {
			return fmt.Errorf("%w: modify %s: %w", ErrStoreFailed, key, err)
		}
		if !applied {
			stats.Skipped++
			continue
		}
		stats.Modified++
		metrics.RecordIngestAction(string(ActionModify))

		ev := newEvent(runID, ActionModify, key, s.now())
		ev.Fields = mod.FieldsToModify()
		record := parse.RecordOf(mod)
		ev.Patch = &record
		events = append(events, ev)
	}
	return nil
}

// publish delivers events. Failures are logged and counted only.
func (s *Service) publish(ctx context.Context, events []Event, stats *IngestStats) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		for range events {
			metrics.RecordEventPublished(false)
		}
		stats.Unpublished += int64(len(events))
		logging.WithRunIDField(ctx, s.logger).WarnContext(ctx, "failed to publish change events",
			slog.Int("events", len(events)),
			slog.Any("error", fmt.Errorf("%w: %w", ErrPublishFailed, err)))
		return
	}
	for range events {
		metrics.RecordEventPublished(true)
	}
	stats.Published += int64(len(events))
}

func moveInto(path, dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.Rename(path, filepath.Join(dir, filepath.Base(path)))
}
