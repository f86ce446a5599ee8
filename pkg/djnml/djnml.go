// Package djnml is the public entry point for reading Dow Jones NML files.
//
// Load uses the built-in code vocabulary and language detection:
//
//	doc, err := djnml.Load("story.nml")
//	if errors.Is(err, djnml.ErrNotFound) {
//	    ...
//	}
//
// New and NewWithRegistry return a reusable Loader.
package djnml

import (
	"context"
	"io"
	"log/slog"

	"djnml-feed/internal/domain/codes"
	"djnml-feed/internal/domain/entity"
	"djnml-feed/internal/infra/langdetect"
	"djnml-feed/internal/infra/timeparse"
	"djnml-feed/internal/infra/xmltree"
	"djnml-feed/internal/usecase/parse"
)

// Document is a parsed NML document.
type Document = entity.Document

// Modification is a single patch carried by an administrative document.
type Modification = entity.Modification

// DeleteNotice is a single retraction carried by an administrative document.
type DeleteNotice = entity.DeleteNotice

// Record is the structured form of a Document.
type Record = parse.DocumentRecord

var (
	// ErrNotFound is returned when the input path does not exist.
	ErrNotFound = entity.ErrNotFound
	// ErrInvalidCode is returned when a document references an unknown code.
	ErrInvalidCode = codes.ErrInvalidCode
)

// Loader parses NML files. It is safe for concurrent use.
type Loader struct {
	engine *parse.Engine
}

// New returns a Loader backed by the built-in vocabulary.
func New() *Loader {
	return NewWithRegistry(codes.Default())
}

// NewWithRegistry returns a Loader resolving codes against reg.
func NewWithRegistry(reg *codes.Registry) *Loader {
	return &Loader{
		engine: parse.NewEngine(
			xmltree.NewParser(),
			timeparse.New(),
			reg,
			parse.WithLanguageDetector(langdetect.New(0)),
			parse.WithLogger(slog.Default()),
		),
	}
}

// Load parses the file at path.
func (l *Loader) Load(path string) (*Document, error) {
	return l.LoadContext(context.Background(), path)
}

// LoadContext is Load with a caller-supplied context for tracing.
func (l *Loader) LoadContext(ctx context.Context, path string) (*Document, error) {
	return l.engine.LoadFile(ctx, path)
}

// Read parses a document from r.
func (l *Loader) Read(ctx context.Context, r io.Reader) (*Document, error) {
	return l.engine.Parse(ctx, r)
}

// RecordOf returns the structured form of doc.
func RecordOf(doc *Document) Record {
	return parse.DocumentRecordOf(doc)
}

// FromRecord rebuilds a Document from its structured form, resolving its
// codes against the Loader's registry.
func (l *Loader) FromRecord(ctx context.Context, rec Record) (*Document, error) {
	rep, err := l.engine.BuildDocument(ctx, rec)
	if err != nil {
		return nil, err
	}
	return rep.Document, nil
}

// Load parses the file at path with a default Loader.
func Load(path string) (*Document, error) {
	return New().Load(path)
}
