// Package langdetect guesses the language of story text.
package langdetect

import (
	"errors"
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// ErrUndetermined is returned when no language can be assigned.
var ErrUndetermined = errors.New("language undetermined")

// Detector wraps whatlanggo trigram detection.
type Detector struct {
	minConfidence float64
}

// New returns a detector that rejects guesses below minConfidence (0..1).
// Pass 0 to accept every guess.
func New(minConfidence float64) *Detector {
	return &Detector{minConfidence: minConfidence}
}

// Detect returns the ISO 639-1 base code of the dominant language of text.
func (d *Detector) Detect(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrUndetermined
	}
	info := whatlanggo.Detect(text)
	if info.Confidence < d.minConfidence {
		return "", ErrUndetermined
	}
	iso := info.Lang.Iso6391()
	if iso == "" {
		return "", ErrUndetermined
	}
	tag, err := language.Parse(iso)
	if err != nil {
		return "", ErrUndetermined
	}
	base, _ := tag.Base()
	return base.String(), nil
}
