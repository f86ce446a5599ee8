package parse

import (
	"io"
	"time"

	"djnml-feed/internal/domain/markup"
)

// TreeParser turns raw input into a queryable markup tree.
type TreeParser interface {
	Parse(r io.Reader) (markup.Node, error)
}

// LanguageDetector identifies the dominant language of a text.
type LanguageDetector interface {
	Detect(text string) (string, error)
}

// TimeParser converts attribute timestamps.
type TimeParser interface {
	Parse(value string) (time.Time, error)
}
