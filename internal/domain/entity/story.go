package entity

import (
	"fmt"
	"time"
)

// StoryKey identifies a story across the feed. Delete and modify notices
// address stories by the same four attributes the djnml element carries.
type StoryKey struct {
	Publisher string
	Product   string
	DocDate   time.Time
	Seq       int
}

// NewStoryKey builds a key from optional parts. Every part is required.
func NewStoryKey(publisher, product *string, docDate *time.Time, seq *int) (StoryKey, error) {
	switch {
	case publisher == nil || *publisher == "":
		return StoryKey{}, &ValidationError{Field: "publisher", Message: "publisher is required"}
	case product == nil || *product == "":
		return StoryKey{}, &ValidationError{Field: "product", Message: "product is required"}
	case docDate == nil:
		return StoryKey{}, &ValidationError{Field: "docdate", Message: "docdate is required"}
	case seq == nil:
		return StoryKey{}, &ValidationError{Field: "seq", Message: "seq is required"}
	}
	d := docDate.UTC()
	return StoryKey{
		Publisher: *publisher,
		Product:   *product,
		DocDate:   time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
		Seq:       *seq,
	}, nil
}

func (k StoryKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%d", k.Publisher, k.Product, k.DocDate.Format("20060102"), k.Seq)
}
