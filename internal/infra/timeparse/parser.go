// Package timeparse reads the compact timestamps used in DJNML attributes.
package timeparse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrEmpty is returned for blank input.
var ErrEmpty = errors.New("empty timestamp")

// layouts are tried before the general-purpose fallback. The feed writes
// transmission dates as 20080506T053501Z, display dates as 20080506T0535Z
// and docdates as 20080506.
var layouts = []string{
	"20060102T150405Z",
	"20060102T1504Z",
	"20060102T150405",
	"20060102",
}

// Parser converts attribute values to UTC times.
type Parser struct{}

// New returns a Parser.
func New() Parser { return Parser{} }

// Parse accepts the compact feed layouts and anything dateparse understands.
// Zone-less values are read as UTC.
func (Parser) Parse(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, ErrEmpty
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
